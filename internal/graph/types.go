package graph

// Me is the signed-in caller, used for the startup greeting.
type Me struct {
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
}

// AuditEvent is a raw directory audit record. Immutable once fetched.
type AuditEvent struct {
	ID                  string           `json:"id"`
	Category            string           `json:"category"`
	ActivityDisplayName string           `json:"activityDisplayName"`
	ActivityDateTime    string           `json:"activityDateTime"`
	Result              string           `json:"result"`
	TargetResources     []TargetResource `json:"targetResources"`
	InitiatedBy         InitiatedBy      `json:"initiatedBy"`
}

type TargetResource struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Type        string `json:"type"`

	// UserPrincipalName is present only when Type is "User".
	UserPrincipalName string `json:"userPrincipalName"`
}

type InitiatedBy struct {
	User *InitiatorUser `json:"user"`
	App  *InitiatorApp  `json:"app"`
}

type InitiatorUser struct {
	UserPrincipalName string `json:"userPrincipalName"`
}

type InitiatorApp struct {
	DisplayName        string `json:"displayName"`
	ServicePrincipalID string `json:"servicePrincipalId"`
}

// SignInEvent is a raw sign-in record.
type SignInEvent struct {
	CreatedDateTime     string       `json:"createdDateTime"`
	ResourceDisplayName string       `json:"resourceDisplayName"`
	IsInteractive       bool         `json:"isInteractive"`
	IPAddress           string       `json:"ipAddress"`
	ClientAppUsed       string       `json:"clientAppUsed"`
	Status              SignInStatus `json:"status"`
}

type SignInStatus struct {
	ErrorCode         int    `json:"errorCode"`
	FailureReason     string `json:"failureReason"`
	AdditionalDetails string `json:"additionalDetails"`
}

type Group struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
}

type RoleAssignment struct {
	RoleDefinitionID string `json:"roleDefinitionId"`
}

// RegistrationDetail is one record of the credential registration report.
type RegistrationDetail struct {
	AuthMethods []string `json:"authMethods"`
}
