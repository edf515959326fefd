package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/sap8899/reportly/internal/core"
	"github.com/sap8899/reportly/internal/graph"
	"github.com/sap8899/reportly/internal/logging"
	"github.com/sap8899/reportly/internal/roles"
)

const odataTypeDirectoryRole = "#microsoft.graph.directoryRole"

// adminFanOutWorkers bounds the per-group memberOf lookups running at once.
const adminFanOutWorkers = 4

// Collector gathers the subject's directory facts: profile, group
// memberships, role assignments, owned objects and devices, and MFA
// registration. Extended enables the sections the basic variant leaves
// out (transitive groups, eligible roles, owned objects/devices, MFA).
type Collector struct {
	Client   *graph.Client
	Roles    *roles.Table
	Log      logging.InternalLogger
	Extended bool
}

func (c *Collector) Profile(ctx context.Context, subject string) (*core.SubjectProfile, error) {
	var profile core.SubjectProfile
	if err := c.Client.GetObject(ctx, c.Client.SubjectURL(subject), &profile); err != nil {
		return nil, fmt.Errorf("fetching subject profile: %w", err)
	}
	return &profile, nil
}

// Groups collects the subject's direct or transitive group memberships.
// Every group additionally resolves its own admin roles through a
// per-group memberOf lookup; the fan-out runs on a small bounded worker
// pool since the lookups are read-only and independent.
func (c *Collector) Groups(ctx context.Context, subject string, transitive bool) ([]core.GroupFact, error) {
	groups, err := graph.FetchAllAs[graph.Group](ctx, c.Client, c.Client.GroupsURL(subject, transitive))
	if err != nil {
		return nil, fmt.Errorf("fetching groups (transitive=%t): %w", transitive, err)
	}

	facts := make([]core.GroupFact, len(groups))
	sem := make(chan struct{}, adminFanOutWorkers)
	var wg sync.WaitGroup
	for i, g := range groups {
		facts[i] = core.GroupFact{
			Name:        g.DisplayName,
			Description: g.Description,
			ID:          g.ID,
			Transitive:  transitive,
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, groupID string) {
			defer wg.Done()
			defer func() { <-sem }()
			adminRoles, err := c.groupAdminRoles(ctx, groupID)
			if err != nil {
				c.Log.Warn("Resolving admin roles of group %s failed: %v", groupID, err)
				return
			}
			facts[i].AdminRoles = adminRoles
		}(i, g.ID)
	}
	wg.Wait()

	return facts, nil
}

// groupAdminRoles concatenates the display names of the directory roles
// the group itself is a member of.
func (c *Collector) groupAdminRoles(ctx context.Context, groupID string) (string, error) {
	members, err := graph.FetchAllAs[map[string]any](ctx, c.Client, c.Client.GroupMemberOfURL(groupID))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, m := range members {
		if t, _ := m["@odata.type"].(string); t != odataTypeDirectoryRole {
			continue
		}
		if name, _ := m["displayName"].(string); name != "" {
			b.WriteString(name)
			b.WriteString(" ;")
		}
	}
	return b.String(), nil
}

// AssignedRoles resolves the subject's role assignments through the
// static table. An unmapped role id is a hard error, never a blank entry.
func (c *Collector) AssignedRoles(ctx context.Context, principalID string) ([]string, error) {
	return c.resolveRoles(ctx, c.Client.RoleAssignmentsURL(principalID))
}

// EligibleRoles resolves the subject's role eligibility schedules.
func (c *Collector) EligibleRoles(ctx context.Context, principalID string) ([]string, error) {
	return c.resolveRoles(ctx, c.Client.RoleEligibilityURL(principalID))
}

func (c *Collector) resolveRoles(ctx context.Context, url string) ([]string, error) {
	assignments, err := graph.FetchAllAs[graph.RoleAssignment](ctx, c.Client, url)
	if err != nil {
		return nil, fmt.Errorf("fetching role assignments: %w", err)
	}
	names := make([]string, 0, len(assignments))
	for _, a := range assignments {
		name, err := c.Roles.Resolve(a.RoleDefinitionID)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

type ownedObjectRecord struct {
	ID          string `mapstructure:"id"`
	DisplayName string `mapstructure:"displayName"`
}

// OwnedObjects collects the directory objects the subject owns. Owned
// groups additionally resolve their own admin roles.
func (c *Collector) OwnedObjects(ctx context.Context, subject string) ([]core.OwnedObject, error) {
	records, err := graph.FetchAllAs[map[string]any](ctx, c.Client, c.Client.OwnedObjectsURL(subject))
	if err != nil {
		return nil, fmt.Errorf("fetching owned objects: %w", err)
	}

	out := make([]core.OwnedObject, 0, len(records))
	for _, m := range records {
		rec := ownedObjectRecord{ID: "None.", DisplayName: "None."}
		if err := mapstructure.Decode(m, &rec); err != nil {
			return nil, fmt.Errorf("decoding owned object: %w", err)
		}

		objType := "None."
		if t, _ := m["@odata.type"].(string); t != "" {
			parts := strings.Split(t, ".")
			objType = parts[len(parts)-1]
		}

		var groupRoles string
		if objType == "group" {
			groupRoles, err = c.groupAdminRoles(ctx, rec.ID)
			if err != nil {
				c.Log.Warn("Resolving admin roles of owned group %s failed: %v", rec.ID, err)
			}
		}

		out = append(out, core.OwnedObject{
			Type:        objType,
			ID:          rec.ID,
			DisplayName: rec.DisplayName,
			GroupRoles:  groupRoles,
		})
	}
	return out, nil
}

type ownedDeviceRecord struct {
	ID          string `mapstructure:"id"`
	DeviceID    string `mapstructure:"deviceId"`
	DisplayName string `mapstructure:"displayName"`
	IsCompliant *bool  `mapstructure:"isCompliant"`
}

func (c *Collector) OwnedDevices(ctx context.Context, subject string) ([]core.OwnedDevice, error) {
	records, err := graph.FetchAllAs[map[string]any](ctx, c.Client, c.Client.OwnedDevicesURL(subject))
	if err != nil {
		return nil, fmt.Errorf("fetching owned devices: %w", err)
	}

	out := make([]core.OwnedDevice, 0, len(records))
	for _, m := range records {
		rec := ownedDeviceRecord{ID: "None.", DeviceID: "None.", DisplayName: "None."}
		if err := mapstructure.Decode(m, &rec); err != nil {
			return nil, fmt.Errorf("decoding owned device: %w", err)
		}
		compliant := "None."
		if rec.IsCompliant != nil {
			compliant = strconv.FormatBool(*rec.IsCompliant)
		}
		out = append(out, core.OwnedDevice{
			DeviceID:    rec.DeviceID,
			ObjectID:    rec.ID,
			DisplayName: rec.DisplayName,
			IsCompliant: compliant,
		})
	}
	return out, nil
}

// MFAMethods returns the subject's registered authentication methods,
// or nil when none are registered.
func (c *Collector) MFAMethods(ctx context.Context, upn string) ([]string, error) {
	details, err := graph.FetchAllAs[graph.RegistrationDetail](ctx, c.Client, c.Client.MFAURL(upn))
	if err != nil {
		return nil, fmt.Errorf("fetching MFA registration: %w", err)
	}
	if len(details) == 0 {
		return nil, nil
	}
	return details[0].AuthMethods, nil
}
