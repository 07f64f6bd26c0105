package metrics_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/awilkes/msgchan/metrics"
)

func TestNilCollector(t *testing.T) {
	var m *metrics.M

	// Verify the methods of a nil collector do not panic.
	m.Count("whatever", 5)
	m.SetMax("whatever", 10)
	if got := m.Counter("whatever"); got != 0 {
		t.Errorf("Counter on nil collector: got %d, want 0", got)
	}
	m.Snapshot(map[string]int64{}, nil)
}

func TestCollection(t *testing.T) {
	m := metrics.New()
	m.Count("apples", 1)
	m.Count("apples", 2)
	m.Count("pears", -3)
	m.SetMax("depth", 7)
	m.SetMax("depth", 4) // no effect; smaller than current

	if got := m.Counter("apples"); got != 3 {
		t.Errorf("Counter(apples): got %d, want 3", got)
	}

	counters := make(map[string]int64)
	maxes := make(map[string]int64)
	m.Snapshot(counters, maxes)

	wantCounters := map[string]int64{"apples": 3, "pears": -3}
	if diff := cmp.Diff(wantCounters, counters); diff != "" {
		t.Errorf("Counters: (-want, +got)\n%s", diff)
	}
	wantMaxes := map[string]int64{"depth": 7}
	if diff := cmp.Diff(wantMaxes, maxes); diff != "" {
		t.Errorf("Max values: (-want, +got)\n%s", diff)
	}
}
