package engine

import (
	"eve-atlas/internal/graph"
	"eve-atlas/internal/starmap"
)

// SystemInfo is a solar system enriched for API responses.
type SystemInfo struct {
	ID       int32         `json:"id"`
	Name     string        `json:"name"`
	RegionID int32         `json:"region_id"`
	Region   string        `json:"region"`
	Security float64       `json:"security"`
	Band     string        `json:"band"`
	Pos      starmap.Point `json:"pos"` // canvas position
}

// RoutePlan is a computed route with per-system detail. JumpCount counts
// stargate hops; ShortcutCount counts Ansiblex hops.
type RoutePlan struct {
	Systems       []SystemInfo `json:"systems"`
	JumpCount     int          `json:"jump_count"`
	ShortcutCount int          `json:"shortcut_count"`
}

// RouteRequest holds the input parameters for route planning.
type RouteRequest struct {
	Origin       int32
	Destination  int32
	Preference   graph.Preference
	Avoid        []int32          // manually avoided systems
	Shortcuts    []graph.Shortcut // Ansiblex edges to include
	AvoidHazards bool             // also avoid systems flagged by hazard sources
}
