package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/xid"

	"github.com/sap8899/reportly/internal/core"
	"github.com/sap8899/reportly/internal/graph"
	"github.com/sap8899/reportly/internal/logging"
	"github.com/sap8899/reportly/internal/roles"
)

// Builder runs the three independent collection pipelines (directory
// facts, audit events, sign-ins) for one subject and merges their
// results into a ReportFacts. The pipelines share no mutable state, so
// they run concurrently; one pipeline's transport failure never aborts
// the others, a partial report is preferable to none.
type Builder struct {
	Graph *graph.Client
	Roles *roles.Table

	// Geo is optional; nil disables IP enrichment.
	Geo GeoLookup

	Log logging.InternalLogger

	// Extended enables the full fact set. The basic variant collects
	// only profile, direct groups and assigned roles, and skips
	// geo/anomaly enrichment of addresses.
	Extended bool
}

type auditResult struct {
	initiated    []core.ClassifiedEvent
	targeted     []core.ClassifiedEvent
	errInitiated error
	errTarget    error
}

type signinResult struct {
	signIns    []core.ClassifiedSignIn
	ips        map[string]*core.IPAggregate
	highRisk   []core.FailedSignIn
	errSuccess error
	errFailed  error
}

type factsResult struct {
	profile       *core.SubjectProfile
	groups        []core.GroupFact
	rolesAssigned []string
	rolesEligible []string
	ownedObjects  []core.OwnedObject
	ownedDevices  []core.OwnedDevice
	mfa           []string

	errProfile      error
	errGroups       error
	errRoles        error
	errEligible     error
	errOwnedObjects error
	errOwnedDevices error
	errMFA          error
}

// Build produces the report aggregate for one subject and window.
// It only fails outright when every pipeline failed.
func (b *Builder) Build(ctx context.Context, subject string, window core.TimeWindow) (*core.ReportFacts, error) {
	facts := &core.ReportFacts{
		ReportID: xid.New().String(),
		Subject:  subject,
		Window:   window,
	}

	var (
		wg sync.WaitGroup
		ar auditResult
		sr signinResult
		fr factsResult
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		ar = b.collectAudit(ctx, subject, window)
	}()
	go func() {
		defer wg.Done()
		sr = b.collectSignIns(ctx, subject, window)
	}()
	go func() {
		defer wg.Done()
		fr = b.collectFacts(ctx, subject)
	}()
	wg.Wait()

	fail := func(stage string, err error) {
		if err == nil {
			return
		}
		b.Log.Error("%s failed: %v", stage, err)
		facts.Failures = append(facts.Failures, fmt.Sprintf("%s: %v", stage, err))
	}

	facts.Initiated = ar.initiated
	if len(ar.initiated) == 0 && ar.errInitiated == nil {
		facts.InitiatedNote = core.NoInitiatedActions
	}
	fail("initiated-audit collection", ar.errInitiated)

	facts.Targeted = ar.targeted
	if len(ar.targeted) == 0 && ar.errTarget == nil {
		facts.TargetedNote = core.NoTargetActions
	}
	fail("target-audit collection", ar.errTarget)

	facts.SignIns = sr.signIns
	facts.IPs = sr.ips
	facts.HighRisk = sr.highRisk
	if len(sr.signIns) == 0 && sr.errSuccess == nil && sr.errFailed == nil {
		facts.SignInsNote = core.NoSignIns
	}
	if len(sr.highRisk) == 0 {
		facts.HighRiskNote = core.NoSuspiciousEvents
	}
	fail("successful sign-in collection", sr.errSuccess)
	fail("failed sign-in collection", sr.errFailed)

	facts.Profile = fr.profile
	fail("profile collection", fr.errProfile)

	facts.Groups = fr.groups
	if len(fr.groups) == 0 && fr.errGroups == nil && fr.errProfile == nil {
		facts.GroupsNote = core.NoGroups
	}
	fail("group collection", fr.errGroups)

	facts.Roles = fr.rolesAssigned
	if len(fr.rolesAssigned) == 0 && fr.errRoles == nil && fr.errProfile == nil {
		facts.RolesNote = core.NoRoles
	}
	fail("role collection", fr.errRoles)

	if b.Extended {
		facts.EligibleRoles = fr.rolesEligible
		if len(fr.rolesEligible) == 0 && fr.errEligible == nil && fr.errProfile == nil {
			facts.EligibleRolesNote = core.NoEligibleRoles
		}
		fail("eligible-role collection", fr.errEligible)

		facts.OwnedObjects = fr.ownedObjects
		if len(fr.ownedObjects) == 0 && fr.errOwnedObjects == nil && fr.errProfile == nil {
			facts.OwnedObjectsNote = core.NoOwnedObjects
		}
		fail("owned-object collection", fr.errOwnedObjects)

		facts.OwnedDevices = fr.ownedDevices
		if len(fr.ownedDevices) == 0 && fr.errOwnedDevices == nil && fr.errProfile == nil {
			facts.OwnedDevicesNote = core.NoOwnedDevices
		}
		fail("owned-device collection", fr.errOwnedDevices)

		facts.MFAMethods = fr.mfa
		if len(fr.mfa) == 0 && fr.errMFA == nil && fr.errProfile == nil {
			facts.MFANote = core.NoMFA
		}
		fail("MFA collection", fr.errMFA)
	}

	if ar.errInitiated != nil && ar.errTarget != nil &&
		sr.errSuccess != nil && sr.errFailed != nil && fr.errProfile != nil {
		return nil, fmt.Errorf("all collection pipelines failed for %s", subject)
	}
	return facts, nil
}

func (b *Builder) collectAudit(ctx context.Context, subject string, window core.TimeWindow) auditResult {
	var r auditResult
	cls := NewClassifier()

	initiated, err := graph.FetchAllAs[graph.AuditEvent](ctx, b.Graph, b.Graph.AuditInitiatedURL(subject))
	if err != nil {
		r.errInitiated = err
	} else {
		r.initiated = cls.ClassifyAll(initiated, RoleInitiated, window, b.Log)
	}

	targeted, err := graph.FetchAllAs[graph.AuditEvent](ctx, b.Graph, b.Graph.AuditTargetURL(subject))
	if err != nil {
		r.errTarget = err
	} else {
		r.targeted = cls.ClassifyAll(targeted, RoleTarget, window, b.Log)
	}
	return r
}

func (b *Builder) collectSignIns(ctx context.Context, subject string, window core.TimeWindow) signinResult {
	agg := NewAggregator(window, b.Log)
	var r signinResult

	success, err := graph.FetchAllAs[graph.SignInEvent](ctx, b.Graph, b.Graph.SignInsURL(subject, true))
	if err != nil {
		r.errSuccess = err
	} else {
		agg.Fold(success, core.OutcomeSuccess)
	}

	failed, err := graph.FetchAllAs[graph.SignInEvent](ctx, b.Graph, b.Graph.SignInsURL(subject, false))
	if err != nil {
		r.errFailed = err
	} else {
		agg.Fold(failed, core.OutcomeFailed)
	}

	r.signIns = agg.SignIns
	r.ips = agg.IPs
	r.highRisk = FlagHighRisk(agg.Failed)

	if b.Geo != nil && b.Extended {
		EnrichGeo(ctx, r.ips, b.Geo, b.Log)
	}
	return r
}

func (b *Builder) collectFacts(ctx context.Context, subject string) factsResult {
	col := &Collector{Client: b.Graph, Roles: b.Roles, Log: b.Log, Extended: b.Extended}
	var r factsResult

	r.profile, r.errProfile = col.Profile(ctx, subject)
	if r.errProfile != nil {
		// everything below keys off the resolved profile
		return r
	}

	r.groups, r.errGroups = col.Groups(ctx, subject, false)
	if b.Extended {
		transitive, err := col.Groups(ctx, subject, true)
		if err != nil {
			r.errGroups = errors.Join(r.errGroups, err)
		} else {
			r.groups = append(r.groups, transitive...)
		}
	}

	r.rolesAssigned, r.errRoles = col.AssignedRoles(ctx, r.profile.ID)

	if b.Extended {
		r.rolesEligible, r.errEligible = col.EligibleRoles(ctx, r.profile.ID)
		r.ownedObjects, r.errOwnedObjects = col.OwnedObjects(ctx, subject)
		r.ownedDevices, r.errOwnedDevices = col.OwnedDevices(ctx, subject)
		r.mfa, r.errMFA = col.MFAMethods(ctx, r.profile.UserPrincipalName)
	}
	return r
}
