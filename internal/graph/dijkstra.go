package graph

import (
	"container/heap"
	"fmt"
)

// Preference selects how edge weights are assigned during route finding.
type Preference int

const (
	// PrefShortest minimizes the number of jumps.
	PrefShortest Preference = iota
	// PrefSafer penalizes edges into lowsec/nullsec so routes stay in
	// highsec whenever a highsec path exists, however long.
	PrefSafer
	// PrefLessSecure penalizes edges into highsec, biasing routes toward
	// lowsec/nullsec space.
	PrefLessSecure
)

func (p Preference) String() string {
	switch p {
	case PrefSafer:
		return "safer"
	case PrefLessSecure:
		return "less-secure"
	default:
		return "shortest"
	}
}

// ParsePreference maps the wire names "shortest", "safer" and
// "less-secure" to a Preference.
func ParsePreference(s string) (Preference, error) {
	switch s {
	case "shortest", "":
		return PrefShortest, nil
	case "safer":
		return PrefSafer, nil
	case "less-secure":
		return PrefLessSecure, nil
	}
	return PrefShortest, fmt.Errorf("unknown route preference %q", s)
}

// Weights are the tunable cost parameters for route finding.
type Weights struct {
	// SecurityPenalty is the cost of an edge that goes against the active
	// preference's security bias. It must dwarf any realistic jump-count
	// difference for the bias to dominate; the longest sane routes are
	// well under 100 jumps.
	SecurityPenalty float64
	// Shortcut is the cost of any Ansiblex edge. At or below 1 it is never
	// more expensive than the cheapest stargate edge under any preference,
	// so enabled shortcuts are always preferred.
	Shortcut float64
}

// DefaultWeights returns the standard route-finding weights.
func DefaultWeights() Weights {
	return Weights{SecurityPenalty: 500, Shortcut: 0.5}
}

// Route is a computed path between two systems.
type Route struct {
	// Path lists system ids from origin to destination inclusive.
	Path []int32
	// JumpCount is the number of stargate edges traversed.
	JumpCount int
	// ShortcutCount is the number of Ansiblex edges traversed.
	ShortcutCount int
}

// FindRoute runs FindRouteWeights with DefaultWeights.
func (g *Graph) FindRoute(origin, dest int32, pref Preference) (*Route, error) {
	return g.FindRouteWeights(origin, dest, pref, DefaultWeights())
}

// FindRouteWeights finds the cheapest path from origin to dest under the
// given preference using Dijkstra's algorithm. An unreachable destination
// returns (nil, nil); that is an expected outcome, not an error. An origin
// or destination that is not a node of the graph returns an error, since
// it means the caller is holding stale inputs. Ties resolve toward lower
// system ids, so identical inputs always return the identical route.
func (g *Graph) FindRouteWeights(origin, dest int32, pref Preference, w Weights) (*Route, error) {
	if !g.Contains(origin) {
		return nil, fmt.Errorf("origin system %d not in graph", origin)
	}
	if !g.Contains(dest) {
		return nil, fmt.Errorf("destination system %d not in graph", dest)
	}
	if origin == dest {
		return &Route{Path: []int32{origin}}, nil
	}

	dist := map[int32]float64{origin: 0}
	parent := make(map[int32]hop)

	pq := &priorityQueue{{systemID: origin, cost: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(pqItem)
		if item.systemID == dest {
			return g.reconstruct(origin, dest, parent), nil
		}
		if d, ok := dist[item.systemID]; ok && item.cost > d {
			continue
		}
		for _, n := range g.adj[item.systemID] {
			nd := item.cost + g.edgeCost(n, pref, w)
			if d, ok := dist[n.ID]; !ok || nd < d {
				dist[n.ID] = nd
				parent[n.ID] = hop{from: item.systemID, shortcut: n.Shortcut}
				heap.Push(pq, pqItem{systemID: n.ID, cost: nd})
			}
		}
	}
	return nil, nil
}

// edgeCost prices the edge arriving at neighbor n. Only the destination
// system's security band matters; the side being left is already paid for.
func (g *Graph) edgeCost(n Neighbor, pref Preference, w Weights) float64 {
	if n.Shortcut {
		return w.Shortcut
	}
	switch pref {
	case PrefSafer:
		if BandOf(g.security[n.ID]) != BandHighsec {
			return w.SecurityPenalty
		}
	case PrefLessSecure:
		if BandOf(g.security[n.ID]) == BandHighsec {
			return w.SecurityPenalty
		}
	}
	return 1
}

// reconstruct walks the parent links from dest back to origin, counting
// stargate and shortcut hops, and returns the forward path.
func (g *Graph) reconstruct(origin, dest int32, parent map[int32]hop) *Route {
	route := &Route{Path: []int32{dest}}
	for at := dest; at != origin; {
		h := parent[at]
		if h.shortcut {
			route.ShortcutCount++
		} else {
			route.JumpCount++
		}
		at = h.from
		route.Path = append(route.Path, at)
	}
	for i, j := 0, len(route.Path)-1; i < j; i, j = i+1, j-1 {
		route.Path[i], route.Path[j] = route.Path[j], route.Path[i]
	}
	return route
}

// hop records how a system was first reached during the search.
type hop struct {
	from     int32
	shortcut bool
}

// Priority queue for Dijkstra. Equal costs order by system id so the
// search, and with it tie-breaking, is deterministic.
type pqItem struct {
	systemID int32
	cost     float64
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].cost != pq[j].cost {
		return pq[i].cost < pq[j].cost
	}
	return pq[i].systemID < pq[j].systemID
}
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
