package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/sap8899/reportly/internal/core"
)

func TestFlagHighRisk(t *testing.T) {
	failed := []core.FailedSignIn{
		{IP: "203.0.113.1", Code: 53011},
		{IP: "203.0.113.2", Code: 12345},
		{IP: "203.0.113.3", Code: 50053},
		{IP: "203.0.113.4", Code: 500021},
		{IP: "203.0.113.5", Code: 0},
	}

	flagged := FlagHighRisk(failed)
	if len(flagged) != 3 {
		t.Fatalf("FlagHighRisk() = %d entries, want 3", len(flagged))
	}
	want := []int{53011, 50053, 500021}
	for i, f := range flagged {
		if f.Code != want[i] {
			t.Errorf("flagged[%d].Code = %d, want %d", i, f.Code, want[i])
		}
	}
}

func TestFlagHighRisk_Empty(t *testing.T) {
	if got := FlagHighRisk(nil); len(got) != 0 {
		t.Fatalf("FlagHighRisk(nil) = %v", got)
	}
}

type fakeGeo struct {
	failFor map[string]bool
}

func (f fakeGeo) Lookup(_ context.Context, ip string) (core.GeoInfo, error) {
	if f.failFor[ip] {
		return core.GeoInfo{}, fmt.Errorf("lookup refused")
	}
	return core.GeoInfo{City: "City of " + ip, Country: "Testland"}, nil
}

func TestEnrichGeo_DegradesPerAddress(t *testing.T) {
	ips := map[string]*core.IPAggregate{
		"203.0.113.1": core.NewIPAggregate(),
		"203.0.113.2": core.NewIPAggregate(),
	}

	EnrichGeo(context.Background(), ips, fakeGeo{failFor: map[string]bool{"203.0.113.2": true}}, nopLogger{})

	if geo := ips["203.0.113.1"].Geo; geo == nil || geo.City != "City of 203.0.113.1" {
		t.Fatalf("Geo for .1 = %+v", ips["203.0.113.1"].Geo)
	}
	if ips["203.0.113.2"].Geo != nil {
		t.Fatalf("Geo for failed lookup must stay absent, got %+v", ips["203.0.113.2"].Geo)
	}
}
