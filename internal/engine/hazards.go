package engine

import "sort"

// HazardSource reports systems that are currently dangerous to travel
// through. Implementations refresh themselves in the background and must be
// safe for concurrent use; HazardSystems returns a snapshot the caller owns.
type HazardSource interface {
	Name() string
	HazardSystems() []int32
}

// HazardReport is the current hazard list of one source.
type HazardReport struct {
	Source  string  `json:"source"`
	Systems []int32 `json:"systems"`
}

// AddHazardSource registers a hazard source. Call during startup wiring,
// before the planner starts serving requests.
func (p *Planner) AddHazardSource(src HazardSource) {
	p.mu.Lock()
	p.hazards = append(p.hazards, src)
	p.mu.Unlock()
}

// Hazards returns the current hazard systems of every registered source,
// sorted by source name.
func (p *Planner) Hazards() []HazardReport {
	p.mu.RLock()
	sources := p.hazards
	p.mu.RUnlock()

	out := make([]HazardReport, 0, len(sources))
	for _, src := range sources {
		ids := src.HazardSystems()
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		out = append(out, HazardReport{Source: src.Name(), Systems: ids})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

func (p *Planner) hazardIDs() []int32 {
	p.mu.RLock()
	sources := p.hazards
	p.mu.RUnlock()

	var ids []int32
	for _, src := range sources {
		ids = append(ids, src.HazardSystems()...)
	}
	return ids
}
