package engine

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"eve-atlas/internal/graph"
	"eve-atlas/internal/sde"
	"eve-atlas/internal/starmap"
)

// maxCachedGraphs bounds the route graph cache. Each distinct avoidance and
// shortcut combination builds its own graph; when the cache fills it is
// cleared wholesale rather than evicted entry by entry.
const maxCachedGraphs = 32

// Planner answers routing and map queries against the loaded universe.
// Route graphs are memoized per avoidance/shortcut combination and rebuilt
// lazily; a singleflight.Group coalesces concurrent builds of the same graph.
type Planner struct {
	mu        sync.RWMutex
	data      *sde.Data
	index     *starmap.Index
	positions map[int32]starmap.Point // systemID -> canvas position
	viewport  starmap.Size
	padding   float64
	weights   graph.Weights
	hazards   []HazardSource
	graphs    map[string]*graph.Graph
	group     singleflight.Group
}

// NewPlanner creates a planner with default weights and no universe loaded.
func NewPlanner() *Planner {
	return &Planner{
		weights: graph.DefaultWeights(),
		graphs:  make(map[string]*graph.Graph),
	}
}

// SetData installs the parsed universe, projects every system onto the
// canvas and builds the spatial index. Cached graphs are dropped.
func (p *Planner) SetData(data *sde.Data, viewport starmap.Size, padding float64) {
	ids := make([]int32, 0, len(data.Systems))
	world := make([]starmap.Point, 0, len(data.Systems))
	for id, s := range data.Systems {
		ids = append(ids, id)
		world = append(world, s.World)
	}
	// Index construction order follows system id so centroids come out
	// identical across restarts.
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	bounds := starmap.WorldBounds(world)
	positions := make(map[int32]starmap.Point, len(ids))
	systems := make([]starmap.System, 0, len(ids))
	for _, id := range ids {
		s := data.Systems[id]
		pos := starmap.ProjectToCanvas(s.World, bounds, viewport, padding)
		positions[id] = pos
		systems = append(systems, starmap.System{ID: id, RegionID: s.RegionID, Pos: pos})
	}
	index := starmap.BuildIndex(systems)

	p.mu.Lock()
	p.data = data
	p.index = index
	p.positions = positions
	p.viewport = viewport
	p.padding = padding
	p.graphs = make(map[string]*graph.Graph)
	p.mu.Unlock()
}

// SetWeights replaces the routing weights. Cached graphs stay valid since
// weights only affect traversal, not construction.
func (p *Planner) SetWeights(w graph.Weights) {
	p.mu.Lock()
	p.weights = w
	p.mu.Unlock()
}

// Ready reports whether a universe has been loaded.
func (p *Planner) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data != nil
}

// PlanRoute computes a route for the given request. An unreachable
// destination returns (nil, nil); unknown endpoints return an error.
func (p *Planner) PlanRoute(req RouteRequest) (*RoutePlan, error) {
	p.mu.RLock()
	data, positions, w := p.data, p.positions, p.weights
	p.mu.RUnlock()
	if data == nil {
		return nil, fmt.Errorf("universe not loaded")
	}

	avoid := make(map[int32]struct{}, len(req.Avoid))
	for _, id := range req.Avoid {
		avoid[id] = struct{}{}
	}
	if req.AvoidHazards {
		for _, id := range p.hazardIDs() {
			avoid[id] = struct{}{}
		}
	}
	// A route must be able to leave its own endpoints.
	delete(avoid, req.Origin)
	delete(avoid, req.Destination)

	g, err := p.graphFor(data, req.Shortcuts, avoid)
	if err != nil {
		return nil, err
	}

	route, err := g.FindRouteWeights(req.Origin, req.Destination, req.Preference, w)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, nil
	}

	plan := &RoutePlan{
		Systems:       make([]SystemInfo, 0, len(route.Path)),
		JumpCount:     route.JumpCount,
		ShortcutCount: route.ShortcutCount,
	}
	for _, id := range route.Path {
		plan.Systems = append(plan.Systems, systemInfo(data, positions, id))
	}
	return plan, nil
}

// System returns enriched info for a system id.
func (p *Planner) System(id int32) (SystemInfo, bool) {
	p.mu.RLock()
	data, positions := p.data, p.positions
	p.mu.RUnlock()
	if data == nil {
		return SystemInfo{}, false
	}
	if _, ok := data.Systems[id]; !ok {
		return SystemInfo{}, false
	}
	return systemInfo(data, positions, id), true
}

// Nearest returns the system closest to a canvas point within maxRadius.
func (p *Planner) Nearest(pt starmap.Point, maxRadius float64) (SystemInfo, bool) {
	p.mu.RLock()
	data, positions, index := p.data, p.positions, p.index
	p.mu.RUnlock()
	if index == nil {
		return SystemInfo{}, false
	}
	s, ok := index.FindNearest(pt, maxRadius)
	if !ok {
		return SystemInfo{}, false
	}
	return systemInfo(data, positions, s.ID), true
}

// RegionCenter returns the canvas centroid of a region's systems.
func (p *Planner) RegionCenter(regionID int32) (starmap.Point, bool) {
	p.mu.RLock()
	index := p.index
	p.mu.RUnlock()
	if index == nil {
		return starmap.Point{}, false
	}
	return index.RegionCentroid(regionID)
}

// graphFor returns the memoized graph for an avoidance/shortcut combination,
// building it on first use.
func (p *Planner) graphFor(data *sde.Data, shortcuts []graph.Shortcut, avoid map[int32]struct{}) (*graph.Graph, error) {
	key := graphKey(shortcuts, avoid)

	p.mu.RLock()
	g, ok := p.graphs[key]
	p.mu.RUnlock()
	if ok {
		return g, nil
	}

	v, err, _ := p.group.Do(key, func() (interface{}, error) {
		p.mu.RLock()
		cached, ok := p.graphs[key]
		p.mu.RUnlock()
		if ok {
			return cached, nil
		}

		built := graph.Build(data.Universe, shortcuts, avoid)

		p.mu.Lock()
		if len(p.graphs) >= maxCachedGraphs {
			p.graphs = make(map[string]*graph.Graph)
		}
		p.graphs[key] = built
		p.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*graph.Graph), nil
}

// graphKey builds a deterministic cache key from the avoidance set and the
// shortcut list. Shortcut pairs are normalized low-id-first so A-B and B-A
// hit the same graph.
func graphKey(shortcuts []graph.Shortcut, avoid map[int32]struct{}) string {
	ids := make([]int32, 0, len(avoid))
	for id := range avoid {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	pairs := make([][2]int32, 0, len(shortcuts))
	for _, s := range shortcuts {
		a, b := s.From, s.To
		if a > b {
			a, b = b, a
		}
		pairs = append(pairs, [2]int32{a, b})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})

	var sb strings.Builder
	sb.WriteString("a:")
	for _, id := range ids {
		fmt.Fprintf(&sb, "%d,", id)
	}
	sb.WriteString("s:")
	for _, pr := range pairs {
		fmt.Fprintf(&sb, "%d-%d,", pr[0], pr[1])
	}
	return sb.String()
}

func systemInfo(data *sde.Data, positions map[int32]starmap.Point, id int32) SystemInfo {
	info := SystemInfo{ID: id, Pos: positions[id]}
	if s, ok := data.Systems[id]; ok {
		info.Name = s.Name
		info.RegionID = s.RegionID
		info.Security = s.Security
		info.Band = graph.BandOf(s.Security).String()
		if r, ok := data.Regions[s.RegionID]; ok {
			info.Region = r.Name
		}
	}
	return info
}
