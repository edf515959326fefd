package core

// Sentinel notes stand in for empty sections throughout the report.
// Downstream rendering special-cases them instead of treating the
// section as a populated collection.
const (
	NoInitiatedActions = "This user has not performed any action."
	NoTargetActions    = "No operations have been performed on this user."
	NoSignInLogs       = "No logs"
	NoSignIns          = "This user has not logged in."
	NoRoles            = "This user has no roles."
	NoEligibleRoles    = "This user is not eligible to any role."
	NoOwnedObjects     = "This user does not own any objects."
	NoOwnedDevices     = "This user does not own any devices."
	NoMFA              = "This user does not have any MFA configured."
	NoGroups           = "This user is not a member of any group."
	NoSuspiciousEvents = "No suspicious events."

	// NotRelevant marks audit events that fall inside the window but
	// outside the category/activity allow-lists.
	NotRelevant = "Not relevant"
)

// SubjectProfile holds the fixed field set requested for the audited user.
type SubjectProfile struct {
	ID                           string `json:"id"`
	UserPrincipalName            string `json:"userPrincipalName"`
	DisplayName                  string `json:"displayName"`
	OnPremisesDistinguishedName  string `json:"onPremisesDistinguishedName"`
	OnPremisesSyncEnabled        bool   `json:"onPremisesSyncEnabled"`
	OnPremisesUserPrincipalName  string `json:"onPremisesUserPrincipalName"`
	OnPremisesSecurityIdentifier string `json:"onPremisesSecurityIdentifier"`
	CreatedDateTime              string `json:"createdDateTime"`
	UserType                     string `json:"userType"`
	LastPasswordChangeDateTime   string `json:"lastPasswordChangeDateTime"`
}

// GroupFact is one group membership of the subject. AdminRoles holds the
// concatenated directory-role names of the group itself, resolved through
// the per-group memberOf fan-out.
type GroupFact struct {
	Name        string
	Description string
	ID          string
	AdminRoles  string
	Transitive  bool
}

// OwnedObject is a directory object owned by the subject. Type is the
// last segment of the object's @odata.type. Owned groups additionally
// carry their own admin roles.
type OwnedObject struct {
	Type        string
	ID          string
	DisplayName string
	GroupRoles  string
}

type OwnedDevice struct {
	DeviceID    string
	ObjectID    string
	DisplayName string
	IsCompliant string
}

// ReportFacts is the aggregate handed to the renderer. All collections
// are scoped to a single run; nothing here is persisted.
type ReportFacts struct {
	ReportID string
	Subject  string
	Window   TimeWindow

	Profile *SubjectProfile

	Groups     []GroupFact
	GroupsNote string

	Roles     []string
	RolesNote string

	EligibleRoles     []string
	EligibleRolesNote string

	OwnedObjects     []OwnedObject
	OwnedObjectsNote string

	OwnedDevices     []OwnedDevice
	OwnedDevicesNote string

	MFAMethods []string
	MFANote    string

	Initiated     []ClassifiedEvent
	InitiatedNote string

	Targeted     []ClassifiedEvent
	TargetedNote string

	SignIns     []ClassifiedSignIn
	SignInsNote string

	IPs map[string]*IPAggregate

	HighRisk     []FailedSignIn
	HighRiskNote string

	// Failures lists sub-pipelines that could not complete. A partial
	// report is preferable to none.
	Failures []string
}
