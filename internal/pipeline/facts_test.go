package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/sap8899/reportly/internal/roles"
)

const testProfile = `{
	"id": "subject-id-1",
	"userPrincipalName": "alice@contoso.com",
	"displayName": "Alice",
	"onPremisesSyncEnabled": true,
	"onPremisesSecurityIdentifier": "S-1-5-21-1",
	"createdDateTime": "2020-01-01T00:00:00Z",
	"userType": "Member",
	"lastPasswordChangeDateTime": "2023-01-01T00:00:00Z"
}`

func testCollector(t *testing.T, fake *fakeDirectory, table *roles.Table) *Collector {
	t.Helper()
	if table == nil {
		table = roles.NewTable(map[string]string{})
	}
	return &Collector{
		Client:   fake.start(t),
		Roles:    table,
		Log:      nopLogger{},
		Extended: true,
	}
}

func TestCollector_Profile(t *testing.T) {
	col := testCollector(t, &fakeDirectory{profile: testProfile}, nil)

	profile, err := col.Profile(context.Background(), "alice@contoso.com")
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if profile.ID != "subject-id-1" || !profile.OnPremisesSyncEnabled {
		t.Fatalf("Profile() = %+v", profile)
	}
}

func TestCollector_Groups_AdminFanOut(t *testing.T) {
	fake := &fakeDirectory{
		groupsDirect: `[
			{"id": "g-1", "displayName": "Admins", "description": "admin group"},
			{"id": "g-2", "displayName": "Staff", "description": "everyone"}
		]`,
		groupMemberOf: map[string]string{
			"g-1": `[
				{"@odata.type": "#microsoft.graph.directoryRole", "displayName": "User Administrator"},
				{"@odata.type": "#microsoft.graph.group", "displayName": "Nested"},
				{"@odata.type": "#microsoft.graph.directoryRole", "displayName": "Helpdesk Administrator"}
			]`,
		},
	}
	col := testCollector(t, fake, nil)

	groups, err := col.Groups(context.Background(), "alice@contoso.com", false)
	if err != nil {
		t.Fatalf("Groups() error = %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("Groups() = %d, want 2", len(groups))
	}
	if groups[0].AdminRoles != "User Administrator ;Helpdesk Administrator ;" {
		t.Errorf("AdminRoles = %q", groups[0].AdminRoles)
	}
	if groups[1].AdminRoles != "" {
		t.Errorf("Staff AdminRoles = %q, want empty", groups[1].AdminRoles)
	}
	if groups[0].Transitive {
		t.Error("direct groups must not be flagged transitive")
	}
}

func TestCollector_AssignedRoles(t *testing.T) {
	fake := &fakeDirectory{
		roleAssignments: `[{"roleDefinitionId": "role-a"}, {"roleDefinitionId": "role-b"}]`,
	}
	table := roles.NewTable(map[string]string{
		"role-a": "Global Administrator",
		"role-b": "Security Reader",
	})
	col := testCollector(t, fake, table)

	names, err := col.AssignedRoles(context.Background(), "subject-id-1")
	if err != nil {
		t.Fatalf("AssignedRoles() error = %v", err)
	}
	if len(names) != 2 || names[0] != "Global Administrator" || names[1] != "Security Reader" {
		t.Fatalf("AssignedRoles() = %v", names)
	}
}

func TestCollector_AssignedRoles_UnmappedIDIsHardError(t *testing.T) {
	fake := &fakeDirectory{
		roleAssignments: `[{"roleDefinitionId": "role-unknown"}]`,
	}
	col := testCollector(t, fake, roles.NewTable(map[string]string{"other": "Other"}))

	_, err := col.AssignedRoles(context.Background(), "subject-id-1")
	if !errors.Is(err, roles.ErrRoleNotMapped) {
		t.Fatalf("AssignedRoles() error = %v, want ErrRoleNotMapped", err)
	}
}

func TestCollector_OwnedObjects(t *testing.T) {
	fake := &fakeDirectory{
		ownedObjects: `[
			{"@odata.type": "#microsoft.graph.group", "id": "g-9", "displayName": "Owned Group"},
			{"@odata.type": "#microsoft.graph.application", "id": "app-1", "displayName": "Owned App"},
			{"id": "mystery-1"}
		]`,
		groupMemberOf: map[string]string{
			"g-9": `[{"@odata.type": "#microsoft.graph.directoryRole", "displayName": "Groups Administrator"}]`,
		},
	}
	col := testCollector(t, fake, nil)

	objects, err := col.OwnedObjects(context.Background(), "alice@contoso.com")
	if err != nil {
		t.Fatalf("OwnedObjects() error = %v", err)
	}
	if len(objects) != 3 {
		t.Fatalf("OwnedObjects() = %d, want 3", len(objects))
	}
	if objects[0].Type != "group" || objects[0].GroupRoles != "Groups Administrator ;" {
		t.Errorf("objects[0] = %+v", objects[0])
	}
	if objects[1].Type != "application" || objects[1].GroupRoles != "" {
		t.Errorf("objects[1] = %+v", objects[1])
	}
	if objects[2].Type != "None." || objects[2].DisplayName != "None." {
		t.Errorf("objects[2] = %+v", objects[2])
	}
}

func TestCollector_OwnedDevices(t *testing.T) {
	fake := &fakeDirectory{
		ownedDevices: `[
			{"id": "obj-1", "deviceId": "dev-1", "displayName": "Workstation", "isCompliant": true},
			{"id": "obj-2", "deviceId": "dev-2", "displayName": "Laptop", "isCompliant": false},
			{"id": "obj-3"}
		]`,
	}
	col := testCollector(t, fake, nil)

	devices, err := col.OwnedDevices(context.Background(), "alice@contoso.com")
	if err != nil {
		t.Fatalf("OwnedDevices() error = %v", err)
	}
	if len(devices) != 3 {
		t.Fatalf("OwnedDevices() = %d, want 3", len(devices))
	}
	if devices[0].IsCompliant != "true" || devices[1].IsCompliant != "false" {
		t.Errorf("compliance = %q, %q", devices[0].IsCompliant, devices[1].IsCompliant)
	}
	if devices[2].DeviceID != "None." || devices[2].IsCompliant != "None." {
		t.Errorf("devices[2] = %+v", devices[2])
	}
}

func TestCollector_MFAMethods(t *testing.T) {
	t.Run("Registered", func(t *testing.T) {
		fake := &fakeDirectory{
			mfa: `[{"authMethods": ["mobilePhone", "appNotification"]}]`,
		}
		col := testCollector(t, fake, nil)
		methods, err := col.MFAMethods(context.Background(), "alice@contoso.com")
		if err != nil {
			t.Fatalf("MFAMethods() error = %v", err)
		}
		if len(methods) != 2 || methods[0] != "mobilePhone" {
			t.Fatalf("MFAMethods() = %v", methods)
		}
	})

	t.Run("None Registered", func(t *testing.T) {
		col := testCollector(t, &fakeDirectory{}, nil)
		methods, err := col.MFAMethods(context.Background(), "alice@contoso.com")
		if err != nil {
			t.Fatalf("MFAMethods() error = %v", err)
		}
		if methods != nil {
			t.Fatalf("MFAMethods() = %v, want nil", methods)
		}
	})
}
