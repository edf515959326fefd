package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sap8899/reportly/internal/core"
)

func sampleFacts(t *testing.T) *core.ReportFacts {
	t.Helper()
	window, err := core.ParseWindow("2023-03-01", "2023-03-31")
	if err != nil {
		t.Fatal(err)
	}

	ip := core.NewIPAggregate()
	ip.Fold("Browser", "Office 365")
	ip.Geo = &core.GeoInfo{City: "Haifa", Region: "Haifa District", Country: "Israel"}

	return &core.ReportFacts{
		ReportID: "run-1",
		Subject:  "alice@contoso.com",
		Window:   window,
		Profile: &core.SubjectProfile{
			ID:                           "subject-id-1",
			UserPrincipalName:            "alice@contoso.com",
			DisplayName:                  "Alice <Admin>",
			OnPremisesSyncEnabled:        true,
			OnPremisesSecurityIdentifier: "S-1-5-21-1",
			OnPremisesUserPrincipalName:  "alice@corp.local",
		},
		Groups: []core.GroupFact{
			{Name: "Staff", Description: "everyone", ID: "g-1"},
		},
		RolesNote:         core.NoRoles,
		EligibleRolesNote: core.NoEligibleRoles,
		OwnedObjectsNote:  core.NoOwnedObjects,
		OwnedDevicesNote:  core.NoOwnedDevices,
		MFANote:           core.NoMFA,
		Initiated: []core.ClassifiedEvent{
			{
				ID: "a-1", Category: "UserManagement", Activity: "Update user",
				Created: "2023-03-10T09:00:00Z", Result: "success",
				Information: "Targets:\nType: User, Id: u-2, DisplayName: Bob ;",
			},
		},
		TargetedNote: core.NoTargetActions,
		SignInsNote:  core.NoSignIns,
		IPs:          map[string]*core.IPAggregate{"203.0.113.7": ip},
		HighRiskNote: core.NoSuspiciousEvents,
	}
}

func TestRenderer_Render(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, sampleFacts(t)); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"alice@contoso.com",
		"SID: S-1-5-21-1",
		"Staff",
		core.NoRoles,
		core.NoTargetActions,
		core.NoSuspiciousEvents,
		core.NoMFA,
		"203.0.113.7",
		"Haifa",
		"run-1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}

	// markup in directory data must be escaped
	if strings.Contains(out, "Alice <Admin>") {
		t.Error("profile display name not escaped")
	}
	if !strings.Contains(out, "Alice &lt;Admin&gt;") {
		t.Error("escaped display name missing")
	}

	// the Information summary renders its newlines as line breaks
	if !strings.Contains(out, "Targets:<br>Type: User, Id: u-2, DisplayName: Bob ;") {
		t.Error("information newlines not converted")
	}
}

func TestRenderer_Render_UnsyncedUser(t *testing.T) {
	facts := sampleFacts(t)
	facts.Profile.OnPremisesSyncEnabled = false

	r, err := New()
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, facts); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(buf.String(), "User is not synced.") {
		t.Error("unsynced marker missing")
	}
}
