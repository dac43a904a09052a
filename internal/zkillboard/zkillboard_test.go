package zkillboard

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestKillMessage_UnmarshalJSON(t *testing.T) {
	// A killstream frame carries far more than we read; extra fields are ignored.
	raw := `{"attackers":[{"ship_type_id":17738}],"killmail_id":90000001,"killmail_time":"2026-08-24T12:00:00Z","solar_system_id":30002813,"victim":{"ship_type_id":587},"zkb":{"totalValue":2e9,"hash":"abc"}}`
	var m killMessage
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if m.KillmailID != 90000001 || m.SolarSystemID != 30002813 {
		t.Errorf("killMessage = %+v", m)
	}
}

// fixedClock gives a killstream a controllable time source.
func fixedClock(k *Killstream, at time.Time) func(time.Time) {
	k.now = func() time.Time { return at }
	return func(newAt time.Time) {
		at = newAt
		k.now = func() time.Time { return at }
	}
}

func TestKillstream_ThresholdFiltersQuietSystems(t *testing.T) {
	k := NewKillstream(time.Hour, 3)
	fixedClock(k, time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 3; i++ {
		k.record(100)
	}
	k.record(200)
	k.record(200)

	got := k.HazardSystems()
	if !reflect.DeepEqual(got, []int32{100}) {
		t.Errorf("HazardSystems = %v, want [100] (200 is below threshold)", got)
	}
}

func TestKillstream_WindowExpiry(t *testing.T) {
	k := NewKillstream(time.Hour, 2)
	start := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	advance := fixedClock(k, start)

	k.record(100)
	k.record(100)
	if got := k.HazardSystems(); !reflect.DeepEqual(got, []int32{100}) {
		t.Fatalf("HazardSystems = %v, want [100]", got)
	}

	// 45 minutes later: one more kill, all three still in window.
	advance(start.Add(45 * time.Minute))
	k.record(100)
	if got := k.HazardSystems(); !reflect.DeepEqual(got, []int32{100}) {
		t.Fatalf("HazardSystems at +45m = %v, want [100]", got)
	}

	// 75 minutes: the first two kills aged out, one remains, below threshold.
	advance(start.Add(75 * time.Minute))
	if got := k.HazardSystems(); len(got) != 0 {
		t.Errorf("HazardSystems at +75m = %v, want empty", got)
	}

	// Aged-out systems are pruned from the map entirely.
	k.mu.Lock()
	times := k.kills[100]
	k.mu.Unlock()
	if len(times) != 1 {
		t.Errorf("kills[100] has %d entries after prune, want 1", len(times))
	}
}

func TestKillstream_SortedOutput(t *testing.T) {
	k := NewKillstream(time.Hour, 1)
	fixedClock(k, time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC))

	for _, id := range []int32{300, 100, 200} {
		k.record(id)
	}
	got := k.HazardSystems()
	if !reflect.DeepEqual(got, []int32{100, 200, 300}) {
		t.Errorf("HazardSystems = %v, want sorted [100 200 300]", got)
	}
	if k.Name() != "killstream" {
		t.Errorf("Name = %q", k.Name())
	}
}

func TestKillstream_EmptyByDefault(t *testing.T) {
	k := NewKillstream(time.Hour, 1)
	if got := k.HazardSystems(); len(got) != 0 {
		t.Errorf("HazardSystems on fresh stream = %v, want empty", got)
	}
}
