// Package roles resolves directory role-definition ids to their
// human-readable names via a static table loaded once per run.
package roles

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

var ErrRoleNotMapped = fmt.Errorf("role definition not in table")

type Table struct {
	names map[string]string
}

// Load reads the role-definition-id to name mapping from a JSON file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roles map: %w", err)
	}
	var names map[string]string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("parsing roles map: %w", err)
	}
	return &Table{names: names}, nil
}

func NewTable(names map[string]string) *Table {
	return &Table{names: names}
}

// Resolve maps a role-definition id to its display name. A missing id is
// a hard error: the table is expected to be complete, and a silently
// blank role would hide a privileged assignment from the report.
func (t *Table) Resolve(roleDefinitionID string) (string, error) {
	name, ok := t.names[roleDefinitionID]
	if !ok {
		return "", fmt.Errorf("resolving role %q: %w", roleDefinitionID, ErrRoleNotMapped)
	}
	return name, nil
}
