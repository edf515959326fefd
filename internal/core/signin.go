package core

import "sort"

// Sign-in outcomes as rendered in the report.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// ClassifiedSignIn is a sign-in event reduced to report form.
type ClassifiedSignIn struct {
	Type        string `json:"type"`
	Created     string `json:"created"`
	Resource    string `json:"resource"`
	Information string `json:"information"`
}

// FailedSignIn is the flat failure record consumed by the anomaly scorer.
type FailedSignIn struct {
	Created  string `json:"created"`
	Resource string `json:"resource"`
	IP       string `json:"ip"`
	AppUsed  string `json:"app_used"`
	Code     int    `json:"code"`
	Reason   string `json:"reason"`
	Details  string `json:"details"`
}

// GeoInfo is the (possibly partial) location of a source address.
type GeoInfo struct {
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

// IPAggregate collects per-source-address sign-in statistics. One
// aggregate exists per distinct address; counts mix successes and
// failures.
type IPAggregate struct {
	Count     int
	AppsUsed  map[string]struct{}
	Resources map[string]struct{}
	Geo       *GeoInfo
}

func NewIPAggregate() *IPAggregate {
	return &IPAggregate{
		AppsUsed:  make(map[string]struct{}),
		Resources: make(map[string]struct{}),
	}
}

// Fold records one sign-in from this address.
func (a *IPAggregate) Fold(app, resource string) {
	a.Count++
	a.AppsUsed[app] = struct{}{}
	a.Resources[resource] = struct{}{}
}

// AppList returns the client apps seen from this address, sorted.
func (a *IPAggregate) AppList() []string {
	return sortedKeys(a.AppsUsed)
}

// ResourceList returns the resources accessed from this address, sorted.
func (a *IPAggregate) ResourceList() []string {
	return sortedKeys(a.Resources)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
