package esi

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"eve-atlas/internal/logger"
)

const incursionRefreshInterval = 10 * time.Minute

// Incursion is one active Sansha incursion from ESI.
type Incursion struct {
	ConstellationID int32   `json:"constellation_id"`
	StagingSystemID int32   `json:"staging_solar_system_id"`
	State           string  `json:"state"`
	InfestedSystems []int32 `json:"infested_solar_systems"`
}

// IncursionFeed polls ESI for active incursions and exposes the infested
// systems as a hazard source for route planning.
type IncursionFeed struct {
	client  *Client
	mu      sync.RWMutex
	systems []int32 // sorted, deduped
}

// NewIncursionFeed creates a feed. Nothing is fetched until Run.
func NewIncursionFeed(client *Client) *IncursionFeed {
	return &IncursionFeed{client: client}
}

// Run fetches incursions immediately, then every 10 minutes until stop closes.
func (f *IncursionFeed) Run(stop <-chan struct{}) {
	f.refresh()
	ticker := time.NewTicker(incursionRefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			f.refresh()
		case <-stop:
			return
		}
	}
}

func (f *IncursionFeed) refresh() {
	var incursions []Incursion
	url := f.client.base + "/incursions/?datasource=tranquility"
	if err := f.client.GetJSON(url, &incursions); err != nil {
		logger.Warn("ESI", fmt.Sprintf("Incursion fetch failed: %v", err))
		return
	}

	var systems []int32
	for _, inc := range incursions {
		systems = append(systems, inc.InfestedSystems...)
		if inc.StagingSystemID != 0 {
			systems = append(systems, inc.StagingSystemID)
		}
	}
	sort.Slice(systems, func(i, j int) bool { return systems[i] < systems[j] })
	dedup := systems[:0]
	for i, id := range systems {
		if i == 0 || id != systems[i-1] {
			dedup = append(dedup, id)
		}
	}

	f.mu.Lock()
	f.systems = dedup
	f.mu.Unlock()
	log.Printf("[ESI] Incursions: %d active, %d infested systems", len(incursions), len(dedup))
}

// Name identifies this hazard source.
func (f *IncursionFeed) Name() string { return "incursions" }

// HazardSystems returns a copy of the currently infested systems.
func (f *IncursionFeed) HazardSystems() []int32 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]int32(nil), f.systems...)
}
