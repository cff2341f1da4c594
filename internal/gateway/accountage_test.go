package gateway

import (
	"testing"
	"time"
)

func TestEstimateCreationMonotonic(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	prev := time.Time{}
	for _, id := range []int64{1, 5000000, 150000000, 500000000, 1000000000, 2000000000, 4000000000, 9000000000} {
		got := EstimateCreation(id, now)
		if got.Before(prev) {
			t.Errorf("EstimateCreation(%d) = %v, earlier than estimate for a smaller id (%v)", id, got, prev)
		}
		if got.After(now) {
			t.Errorf("EstimateCreation(%d) = %v, after now", id, got)
		}
		prev = got
	}
}

func TestEstimateCreationReferencePoints(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	// Exact reference ids map to their reference dates.
	got := EstimateCreation(200000000, now)
	want := time.Date(2017, 8, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("EstimateCreation(200000000) = %v, want %v", got, want)
	}

	// Ids predating the table clamp to the earliest known date.
	got = EstimateCreation(1, now)
	want = time.Date(2013, 8, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("EstimateCreation(1) = %v, want %v", got, want)
	}
}

func TestEstimateCreationExtrapolationClamped(t *testing.T) {
	// Very high id: the extrapolated date exceeds the current time and
	// must clamp to it, so a brand-new account evaluates as zero age.
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	got := EstimateCreation(100000000000, now)
	if !got.Equal(now) {
		t.Errorf("EstimateCreation(high id) = %v, want clamped to %v", got, now)
	}
}
