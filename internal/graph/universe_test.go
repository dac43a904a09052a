package graph

import "testing"

func TestRoundSecurity(t *testing.T) {
	tests := []struct {
		raw  float64
		want float64
	}{
		{0.9458, 0.9},
		{0.45, 0.5},
		{0.449, 0.4},
		{0.05, 0.1},
		{0.04, 0.0},
		{0.0, 0.0},
		{-0.0987, -0.1},
		{-1.0, -1.0},
	}
	for _, tt := range tests {
		if got := RoundSecurity(tt.raw); got != tt.want {
			t.Errorf("RoundSecurity(%v) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestBandOf(t *testing.T) {
	tests := []struct {
		name string
		raw  float64
		want Band
	}{
		{name: "deep highsec", raw: 1.0, want: BandHighsec},
		{name: "highsec boundary", raw: 0.45, want: BandHighsec},
		{name: "just below boundary", raw: 0.449, want: BandLowsec},
		{name: "mid lowsec", raw: 0.2, want: BandLowsec},
		{name: "rounds down to zero", raw: 0.04, want: BandNullsec},
		{name: "rounds up into lowsec", raw: 0.05, want: BandLowsec},
		{name: "exactly zero", raw: 0.0, want: BandNullsec},
		{name: "negative", raw: -0.43, want: BandNullsec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BandOf(tt.raw); got != tt.want {
				t.Fatalf("BandOf(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestAddGate_BidirectionalAndDeduped(t *testing.T) {
	u := NewUniverse()
	u.AddGate(1, 2)
	u.AddGate(2, 1) // the data export lists each gate once per side
	u.AddGate(1, 2)
	u.AddGate(3, 3) // self-loop must be ignored

	if got := u.Adj[1]; len(got) != 1 || got[0] != 2 {
		t.Errorf("Adj[1] = %v, want [2]", got)
	}
	if got := u.Adj[2]; len(got) != 1 || got[0] != 1 {
		t.Errorf("Adj[2] = %v, want [1]", got)
	}
	if got := u.Adj[3]; len(got) != 0 {
		t.Errorf("Adj[3] = %v, want empty", got)
	}
}

func TestGateCount(t *testing.T) {
	u := NewUniverse()
	u.AddGate(1, 2)
	u.AddGate(2, 3)
	u.AddGate(2, 3) // duplicate record
	if got := u.GateCount(); got != 2 {
		t.Errorf("GateCount() = %d, want 2", got)
	}
}

func TestUniverseBand_UnknownSystemIsNullsec(t *testing.T) {
	u := NewUniverse()
	u.SetSecurity(30000142, 0.9458)
	if got := u.Band(30000142); got != BandHighsec {
		t.Errorf("Band(30000142) = %v, want %v", got, BandHighsec)
	}
	if got := u.Band(99); got != BandNullsec {
		t.Errorf("Band(unknown) = %v, want %v", got, BandNullsec)
	}
}
