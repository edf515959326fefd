package graph

import (
	"fmt"
	"net/url"
	"strings"
)

// The beta endpoints mirror the original tool: ownedObjects, ownedDevices
// and the credential registration report are not available on v1.0.
const (
	v1Prefix   = "/v1.0"
	betaPrefix = "/beta"
)

const subjectSelect = "id,userPrincipalName,displayName,onPremisesDistinguishedName," +
	"onPremisesSyncEnabled,onPremisesUserPrincipalName,onPremisesSecurityIdentifier," +
	"createdDateTime,userType,lastPasswordChangeDateTime"

const groupSelect = "id,displayName,description"

func (c *Client) buildURL(prefix, path string, query url.Values) string {
	u := c.baseURL + prefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) MeURL() string {
	return c.buildURL(v1Prefix, "/me", url.Values{
		"$select": {"displayName,mail,userPrincipalName"},
	})
}

func (c *Client) SubjectURL(upn string) string {
	return c.buildURL(v1Prefix, "/users/"+url.PathEscape(upn), url.Values{
		"$select": {subjectSelect},
	})
}

func (c *Client) AuditInitiatedURL(upn string) string {
	return c.buildURL(v1Prefix, "/auditLogs/directoryAudits", url.Values{
		"$filter": {fmt.Sprintf("initiatedBy/user/userPrincipalName eq '%s'", upn)},
	})
}

func (c *Client) AuditTargetURL(upn string) string {
	return c.buildURL(v1Prefix, "/auditLogs/directoryAudits", url.Values{
		"$filter": {fmt.Sprintf("targetResources/any(t:t/userPrincipalName eq '%s')", upn)},
	})
}

// SignInsURL filters by outcome: errorCode eq 0 selects successes,
// ne 0 selects failures. The UPN is lower-cased to match sign-in logs.
func (c *Client) SignInsURL(upn string, success bool) string {
	op := "ne"
	if success {
		op = "eq"
	}
	return c.buildURL(v1Prefix, "/auditLogs/signIns", url.Values{
		"$filter": {fmt.Sprintf("userPrincipalName eq '%s' and status/errorCode %s 0", strings.ToLower(upn), op)},
	})
}

func (c *Client) RoleAssignmentsURL(principalID string) string {
	return c.buildURL(v1Prefix, "/roleManagement/directory/roleAssignments", url.Values{
		"$filter": {fmt.Sprintf("principalId eq '%s'", principalID)},
	})
}

func (c *Client) RoleEligibilityURL(principalID string) string {
	return c.buildURL(v1Prefix, "/roleManagement/directory/roleEligibilityScheduleInstances", url.Values{
		"$filter": {fmt.Sprintf("principalId eq '%s'", principalID)},
	})
}

func (c *Client) GroupsURL(upn string, transitive bool) string {
	rel := "/memberOf/microsoft.graph.group"
	if transitive {
		rel = "/transitiveMemberOf/microsoft.graph.group"
	}
	return c.buildURL(v1Prefix, "/users/"+url.PathEscape(upn)+rel, url.Values{
		"$select": {groupSelect},
	})
}

func (c *Client) GroupMemberOfURL(groupID string) string {
	return c.buildURL(v1Prefix, "/groups/"+url.PathEscape(groupID)+"/memberOf", nil)
}

func (c *Client) OwnedObjectsURL(upn string) string {
	return c.buildURL(betaPrefix, "/users/"+url.PathEscape(upn)+"/ownedObjects", nil)
}

func (c *Client) OwnedDevicesURL(upn string) string {
	return c.buildURL(betaPrefix, "/users/"+url.PathEscape(upn)+"/ownedDevices", nil)
}

func (c *Client) MFAURL(upn string) string {
	return c.buildURL(betaPrefix, "/reports/credentialUserRegistrationDetails", url.Values{
		"$filter": {fmt.Sprintf("userPrincipalName eq '%s'", upn)},
	})
}
