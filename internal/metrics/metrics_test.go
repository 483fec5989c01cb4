package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInit(t *testing.T) {
	// Call Init multiple times to test idempotency.
	Init()
	Init()

	if venuesScannedTotal == nil || candidatesTotal == nil ||
		crawlRequestsTotal == nil || crawlBudgetRemaining == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}

	ObserveVenueScanned()
	if val := testutil.ToFloat64(venuesScannedTotal); val != 1 {
		t.Errorf("expected venuesScannedTotal to be 1, got %f", val)
	}

	ObserveCrawl(5)
	if val := testutil.ToFloat64(crawlRequestsTotal); val != 1 {
		t.Errorf("expected crawlRequestsTotal to be 1, got %f", val)
	}
	if val := testutil.ToFloat64(crawlLinksTotal); val != 5 {
		t.Errorf("expected crawlLinksTotal to be 5, got %f", val)
	}

	ObserveCandidate("approved")
	ObserveCandidate("approved")
	if val := testutil.ToFloat64(candidatesTotal.WithLabelValues("approved")); val != 2 {
		t.Errorf("expected approved candidates to be 2, got %f", val)
	}

	SetBudgetRemaining(42)
	if val := testutil.ToFloat64(crawlBudgetRemaining); val != 42 {
		t.Errorf("expected budget gauge 42, got %f", val)
	}
}

func TestObserveGuards(t *testing.T) {
	Init()

	before := testutil.ToFloat64(candidatesUpsertedTot)
	ObserveUpserted(0)
	ObserveUpserted(-3)
	if after := testutil.ToFloat64(candidatesUpsertedTot); after != before {
		t.Errorf("non-positive counts must not move the counter: %f -> %f", before, after)
	}

	ObserveUpserted(7)
	if after := testutil.ToFloat64(candidatesUpsertedTot); after != before+7 {
		t.Errorf("expected +7, got %f -> %f", before, after)
	}
}
