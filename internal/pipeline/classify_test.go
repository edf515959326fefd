package pipeline

import (
	"strings"
	"testing"

	"github.com/sap8899/reportly/internal/core"
	"github.com/sap8899/reportly/internal/graph"
)

func testWindow(t *testing.T) core.TimeWindow {
	t.Helper()
	w, err := core.ParseWindow("2023-03-01", "2023-03-31")
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func auditEvent(category, activity, created string) graph.AuditEvent {
	return graph.AuditEvent{
		ID:                  "event-1",
		Category:            category,
		ActivityDisplayName: activity,
		ActivityDateTime:    created,
		Result:              "success",
		TargetResources: []graph.TargetResource{
			{ID: "target-1", DisplayName: "Some Target", Type: "Group"},
		},
	}
}

func TestClassifier_Relevant(t *testing.T) {
	cls := NewClassifier()

	tests := []struct {
		name     string
		category string
		activity string
		want     bool
	}{
		{name: "Normal Category", category: "UserManagement", activity: "Update user", want: true},
		{name: "Excluded Category", category: "GroupManagement", activity: "Update group", want: false},
		{name: "Excluded Category With Override", category: "GroupManagement", activity: "Add member to group", want: true},
		{name: "Override Remove Owner", category: "GroupManagement", activity: "Remove owner from group", want: true},
		{name: "Override Add Member To Role", category: "GroupManagement", activity: "Add member to role", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := auditEvent(tt.category, tt.activity, "2023-03-15T10:00:00.123Z")
			if got := cls.Relevant(ev); got != tt.want {
				t.Fatalf("Relevant() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifier_Classify_WindowControlsInclusion(t *testing.T) {
	cls := NewClassifier()
	w := testWindow(t)

	tests := []struct {
		name    string
		created string
		want    bool
	}{
		{name: "Inside", created: "2023-03-15T10:00:00.123Z", want: true},
		{name: "On Start", created: "2023-03-01T00:00:01.123Z", want: false},
		{name: "On End", created: "2023-03-31T23:59:59.123Z", want: false},
		{name: "Before", created: "2023-02-01T10:00:00.123Z", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := cls.Classify(auditEvent("UserManagement", "Update user", tt.created), RoleInitiated, w)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if ok != tt.want {
				t.Fatalf("Classify() ok = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestClassifier_Classify_IrrelevantInsideWindowIsEmitted(t *testing.T) {
	cls := NewClassifier()
	ev := auditEvent("GroupManagement", "Update group", "2023-03-15T10:00:00.123Z")

	classified, ok, err := cls.Classify(ev, RoleInitiated, testWindow(t))
	if err != nil || !ok {
		t.Fatalf("Classify() ok = %v, err = %v", ok, err)
	}
	if classified.Information != core.NotRelevant {
		t.Fatalf("Information = %q, want %q", classified.Information, core.NotRelevant)
	}
}

func TestClassifier_Classify_Information(t *testing.T) {
	cls := NewClassifier()
	ev := graph.AuditEvent{
		ID:                  "event-9",
		Category:            "RoleManagement",
		ActivityDisplayName: "Add member to role",
		ActivityDateTime:    "2023-03-15T10:00:00.123Z",
		Result:              "success",
		TargetResources: []graph.TargetResource{
			{ID: "u-1", DisplayName: "Alice", Type: "User", UserPrincipalName: "alice@contoso.com"},
			{ID: "r-1", DisplayName: "Helpdesk Administrator", Type: "Role"},
		},
		InitiatedBy: graph.InitiatedBy{
			User: &graph.InitiatorUser{UserPrincipalName: "mallory@contoso.com"},
			App:  &graph.InitiatorApp{DisplayName: "Sync App", ServicePrincipalID: "sp-1"},
		},
	}

	t.Run("Initiated Role Omits Initiator", func(t *testing.T) {
		classified, ok, err := cls.Classify(ev, RoleInitiated, testWindow(t))
		if err != nil || !ok {
			t.Fatalf("Classify() ok = %v, err = %v", ok, err)
		}
		info := classified.Information
		if !strings.Contains(info, "Type: User, Id: u-1, DisplayName: Alice, UPN: alice@contoso.com") {
			t.Errorf("missing user target line: %q", info)
		}
		if !strings.Contains(info, "Type: Role, Id: r-1, DisplayName: Helpdesk Administrator ;") {
			t.Errorf("missing role target line: %q", info)
		}
		if strings.Contains(info, "InitiatedBy") {
			t.Errorf("initiated view must not name the initiator: %q", info)
		}
	})

	t.Run("Target Role Appends Initiator", func(t *testing.T) {
		classified, ok, err := cls.Classify(ev, RoleTarget, testWindow(t))
		if err != nil || !ok {
			t.Fatalf("Classify() ok = %v, err = %v", ok, err)
		}
		info := classified.Information
		if !strings.Contains(info, "InitiatedBy:") {
			t.Fatalf("missing initiator section: %q", info)
		}
		if !strings.Contains(info, "User: userPrincipalName: mallory@contoso.com ;") {
			t.Errorf("missing initiator user: %q", info)
		}
		if !strings.Contains(info, "App: displayName: Sync App, servicePrincipalId: sp-1 ;") {
			t.Errorf("missing initiator app: %q", info)
		}
	})
}

func TestClassifier_ClassifyAll_SkipsMalformedAndKeepsOrder(t *testing.T) {
	cls := NewClassifier()
	events := []graph.AuditEvent{
		auditEvent("UserManagement", "First", "2023-03-10T10:00:00.123Z"),
		auditEvent("UserManagement", "Broken", "not-a-timestamp"),
		auditEvent("UserManagement", "Second", "2023-03-11T10:00:00.123Z"),
	}

	out := cls.ClassifyAll(events, RoleInitiated, testWindow(t), nopLogger{})
	if len(out) != 2 {
		t.Fatalf("ClassifyAll() = %d events, want 2", len(out))
	}
	if out[0].Activity != "First" || out[1].Activity != "Second" {
		t.Fatalf("order not preserved: %+v", out)
	}
}
