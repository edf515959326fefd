package pipeline

import (
	"fmt"

	"github.com/sap8899/reportly/internal/core"
	"github.com/sap8899/reportly/internal/graph"
	"github.com/sap8899/reportly/internal/logging"
)

// Aggregator folds sign-in events into display records, per-address
// statistics and the failed-sign-in list. It is an explicit accumulator:
// both the success and the failure stream must be folded before the
// aggregate is complete, since address counts mix outcomes. Fold order
// does not affect the result.
type Aggregator struct {
	window core.TimeWindow
	log    logging.InternalLogger

	SignIns []core.ClassifiedSignIn
	IPs     map[string]*core.IPAggregate
	Failed  []core.FailedSignIn
}

func NewAggregator(window core.TimeWindow, log logging.InternalLogger) *Aggregator {
	return &Aggregator{
		window: window,
		log:    log,
		IPs:    make(map[string]*core.IPAggregate),
	}
}

// Fold processes one fetched batch of sign-ins with the given outcome
// ("success" or "failed"). Events outside the window are dropped;
// malformed timestamps are skipped and logged.
func (a *Aggregator) Fold(events []graph.SignInEvent, outcome string) {
	for _, ev := range events {
		day, err := core.EventDate(ev.CreatedDateTime)
		if err != nil {
			a.log.Warn("Skipping sign-in at %s: %v", ev.IPAddress, err)
			continue
		}
		if !a.window.Contains(day) {
			continue
		}

		info := fmt.Sprintf("Interactive: %t\nip: %s\napp used: %s",
			ev.IsInteractive, ev.IPAddress, ev.ClientAppUsed)
		if outcome == core.OutcomeFailed {
			info += fmt.Sprintf("\ncode: %d ; reason: %s ; details: %s",
				ev.Status.ErrorCode, ev.Status.FailureReason, ev.Status.AdditionalDetails)
		}

		a.SignIns = append(a.SignIns, core.ClassifiedSignIn{
			Type:        outcome,
			Created:     ev.CreatedDateTime,
			Resource:    ev.ResourceDisplayName,
			Information: info,
		})

		agg, ok := a.IPs[ev.IPAddress]
		if !ok {
			agg = core.NewIPAggregate()
			a.IPs[ev.IPAddress] = agg
		}
		agg.Fold(ev.ClientAppUsed, ev.ResourceDisplayName)

		if outcome == core.OutcomeFailed {
			a.Failed = append(a.Failed, core.FailedSignIn{
				Created:  ev.CreatedDateTime,
				Resource: ev.ResourceDisplayName,
				IP:       ev.IPAddress,
				AppUsed:  ev.ClientAppUsed,
				Code:     ev.Status.ErrorCode,
				Reason:   ev.Status.FailureReason,
				Details:  ev.Status.AdditionalDetails,
			})
		}
	}
}
