// Package pipeline reduces raw directory records into the report-ready
// facts and anomaly signals of one audit run.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/sap8899/reportly/internal/core"
	"github.com/sap8899/reportly/internal/graph"
	"github.com/sap8899/reportly/internal/logging"
)

// Role distinguishes which side of an audit event the subject is on.
type Role string

const (
	RoleInitiated Role = "initiated"
	RoleTarget    Role = "target"
)

// Classifier decides whether an audit event deserves full detail and
// renders its Information summary.
type Classifier struct {
	ExcludedCategories map[string]struct{}
	AlwaysInclude      map[string]struct{}
}

// NewClassifier returns a classifier with the default allow-lists:
// GroupManagement events are excluded unless their activity is one of
// the five high-value management operations.
func NewClassifier() *Classifier {
	return &Classifier{
		ExcludedCategories: map[string]struct{}{
			"GroupManagement": {},
		},
		AlwaysInclude: map[string]struct{}{
			"Remove owner from group":  {},
			"Remove member from group": {},
			"Add owner to group":       {},
			"Add member to role":       {},
			"Add member to group":      {},
		},
	}
}

// Relevant reports whether the event deserves full detail. An activity
// on the always-include list surfaces even when its category is excluded.
func (c *Classifier) Relevant(ev graph.AuditEvent) bool {
	if _, excluded := c.ExcludedCategories[ev.Category]; !excluded {
		return true
	}
	_, always := c.AlwaysInclude[ev.ActivityDisplayName]
	return always
}

// Classify reduces one audit event. The window controls inclusion (the
// second return is false for events outside it); relevance only controls
// the Information content. A malformed timestamp is returned as an error
// for the caller's skip policy.
func (c *Classifier) Classify(ev graph.AuditEvent, role Role, window core.TimeWindow) (core.ClassifiedEvent, bool, error) {
	day, err := core.EventDate(ev.ActivityDateTime)
	if err != nil {
		return core.ClassifiedEvent{}, false, err
	}
	if !window.Contains(day) {
		return core.ClassifiedEvent{}, false, nil
	}

	info := core.NotRelevant
	if c.Relevant(ev) {
		info = c.information(ev, role)
	}
	return core.ClassifiedEvent{
		ID:          ev.ID,
		Category:    ev.Category,
		Activity:    ev.ActivityDisplayName,
		Created:     ev.ActivityDateTime,
		Result:      ev.Result,
		Information: info,
	}, true, nil
}

// ClassifyAll classifies a fetched batch, preserving page order. Records
// with malformed timestamps are skipped and logged.
func (c *Classifier) ClassifyAll(events []graph.AuditEvent, role Role, window core.TimeWindow, log logging.InternalLogger) []core.ClassifiedEvent {
	out := make([]core.ClassifiedEvent, 0, len(events))
	for _, ev := range events {
		classified, ok, err := c.Classify(ev, role, window)
		if err != nil {
			log.Warn("Skipping audit event %s: %v", ev.ID, err)
			continue
		}
		if ok {
			out = append(out, classified)
		}
	}
	return out
}

func (c *Classifier) information(ev graph.AuditEvent, role Role) string {
	var b strings.Builder
	b.WriteString("Targets:\n")
	for _, target := range ev.TargetResources {
		fmt.Fprintf(&b, "Type: %s, Id: %s, DisplayName: %s", target.Type, target.ID, target.DisplayName)
		if target.Type == "User" {
			fmt.Fprintf(&b, ", UPN: %s", target.UserPrincipalName)
		}
		b.WriteString(" ;\n")
	}

	// only the target-side view names the initiator; the initiated-side
	// view is already about the subject
	if role == RoleTarget {
		b.WriteString("InitiatedBy:\n")
		if u := ev.InitiatedBy.User; u != nil {
			fmt.Fprintf(&b, "User: userPrincipalName: %s ; ", u.UserPrincipalName)
		}
		if a := ev.InitiatedBy.App; a != nil {
			fmt.Fprintf(&b, "App: displayName: %s, servicePrincipalId: %s ;", a.DisplayName, a.ServicePrincipalID)
		}
	}
	return strings.TrimRight(b.String(), " \n")
}
