package pipeline

import (
	"context"

	"github.com/sap8899/reportly/internal/core"
	"github.com/sap8899/reportly/internal/logging"
)

// highRiskCodes are the sign-in error codes treated as indicators of
// credential stuffing, password guessing or locked-out accounts.
// The list is carried over verbatim from the original tooling.
var highRiskCodes = map[int]struct{}{
	50088:  {},
	50131:  {},
	500021: {},
	500022: {},
	50053:  {},
	50135:  {},
	53011:  {},
	530034: {},
	53010:  {},
	530032: {},
}

// FlagHighRisk filters the failure list down to the high-risk codes.
// Membership is binary; there is no scoring weight.
func FlagHighRisk(failed []core.FailedSignIn) []core.FailedSignIn {
	var out []core.FailedSignIn
	for _, f := range failed {
		if _, ok := highRiskCodes[f.Code]; ok {
			out = append(out, f)
		}
	}
	return out
}

// GeoLookup is the geo-IP collaborator.
type GeoLookup interface {
	Lookup(ctx context.Context, ip string) (core.GeoInfo, error)
}

// EnrichGeo resolves the location of every aggregated address, one
// lookup per distinct address. A failed lookup leaves that address's
// geo fields absent and logs a warning; it never aborts the run.
func EnrichGeo(ctx context.Context, ips map[string]*core.IPAggregate, lookup GeoLookup, log logging.InternalLogger) {
	for ip, agg := range ips {
		geo, err := lookup.Lookup(ctx, ip)
		if err != nil {
			log.Warn("Geo lookup for %s failed: %v", ip, err)
			continue
		}
		g := geo
		agg.Geo = &g
	}
}
