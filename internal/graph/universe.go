package graph

import "math"

// HighsecThreshold is the rounded security at or above which a system
// counts as highsec. The game client displays security rounded to one
// decimal, so raw 0.45 shows as 0.5 and is treated as highsec.
const HighsecThreshold = 0.45

// Band is the security classification of a solar system.
type Band int

const (
	// BandHighsec is rounded security >= HighsecThreshold.
	BandHighsec Band = iota
	// BandLowsec is rounded security in (0, HighsecThreshold).
	BandLowsec
	// BandNullsec is rounded security <= 0.
	BandNullsec
)

func (b Band) String() string {
	switch b {
	case BandHighsec:
		return "highsec"
	case BandLowsec:
		return "lowsec"
	default:
		return "nullsec"
	}
}

// RoundSecurity rounds a raw security status to the one-decimal value the
// game client displays.
func RoundSecurity(security float64) float64 {
	return math.Round(security*10) / 10
}

// BandOf classifies a raw security status into its display band.
func BandOf(security float64) Band {
	rounded := RoundSecurity(security)
	switch {
	case rounded >= HighsecThreshold:
		return BandHighsec
	case rounded > 0:
		return BandLowsec
	default:
		return BandNullsec
	}
}

// Universe holds the static stargate topology of the cluster, plus
// per-system region and security lookups. It is populated once from the
// static data export and read-only afterwards.
type Universe struct {
	// Adj maps systemID -> neighboring systemIDs reachable by stargate.
	Adj map[int32][]int32
	// SystemRegion maps systemID -> regionID
	SystemRegion map[int32]int32
	// SystemSecurity maps systemID -> raw security status (-1.0 to 1.0)
	SystemSecurity map[int32]float64
}

// NewUniverse creates an empty Universe with initialized maps.
func NewUniverse() *Universe {
	return &Universe{
		Adj:            make(map[int32][]int32),
		SystemRegion:   make(map[int32]int32),
		SystemSecurity: make(map[int32]float64),
	}
}

// AddGate records a stargate between a and b, traversable in both
// directions. Duplicate records and self-loops are ignored, so feeding it
// source data that lists each gate once per side is fine.
func (u *Universe) AddGate(a, b int32) {
	if a == b {
		return
	}
	u.addGateDir(a, b)
	u.addGateDir(b, a)
}

func (u *Universe) addGateDir(from, to int32) {
	for _, n := range u.Adj[from] {
		if n == to {
			return
		}
	}
	u.Adj[from] = append(u.Adj[from], to)
}

// SetRegion associates a system with a region.
func (u *Universe) SetRegion(systemID, regionID int32) {
	u.SystemRegion[systemID] = regionID
}

// SetSecurity sets the raw security status for a system. Systems are
// routable only once their security is known; Build takes its node set
// from SystemSecurity.
func (u *Universe) SetSecurity(systemID int32, security float64) {
	u.SystemSecurity[systemID] = security
}

// Band returns the security band of a known system. Unknown systems
// classify as nullsec.
func (u *Universe) Band(systemID int32) Band {
	return BandOf(u.SystemSecurity[systemID])
}

// GateCount returns the number of distinct stargate connections
// (undirected pairs).
func (u *Universe) GateCount() int {
	total := 0
	for _, neighbors := range u.Adj {
		total += len(neighbors)
	}
	return total / 2
}
