package graph

import "sort"

// Neighbor is one adjacency entry: the neighboring system and whether the
// connecting edge is an Ansiblex shortcut rather than a stargate.
type Neighbor struct {
	ID       int32
	Shortcut bool
}

// Shortcut is a player-supplied Ansiblex jump bridge. Like stargates,
// shortcuts are traversable in both directions.
type Shortcut struct {
	From int32 `json:"from"`
	To   int32 `json:"to"`
}

// Graph is a routing graph built for one avoidance set and one shortcut
// set. It is immutable after Build and safe for concurrent readers.
type Graph struct {
	adj      map[int32][]Neighbor
	security map[int32]float64
}

// Build constructs a routing graph from the universe's stargates plus the
// given shortcut edges, excluding every system in avoid. Exclusion is a
// hard filter: an avoided system contributes no edges in either direction,
// so no route can pass through it. Edges whose endpoints are not known
// systems are dropped. Build is pure; identical inputs always produce a
// structurally identical graph.
func Build(u *Universe, shortcuts []Shortcut, avoid map[int32]struct{}) *Graph {
	g := &Graph{
		adj:      make(map[int32][]Neighbor, len(u.SystemSecurity)),
		security: make(map[int32]float64, len(u.SystemSecurity)),
	}

	for id, sec := range u.SystemSecurity {
		if _, excluded := avoid[id]; excluded {
			continue
		}
		g.security[id] = sec
		g.adj[id] = nil
	}

	for from, neighbors := range u.Adj {
		if _, ok := g.adj[from]; !ok {
			continue
		}
		for _, to := range neighbors {
			if _, ok := g.adj[to]; !ok {
				continue
			}
			g.adj[from] = append(g.adj[from], Neighbor{ID: to})
		}
	}

	for _, sc := range shortcuts {
		if sc.From == sc.To {
			continue
		}
		if _, ok := g.adj[sc.From]; !ok {
			continue
		}
		if _, ok := g.adj[sc.To]; !ok {
			continue
		}
		g.adj[sc.From] = append(g.adj[sc.From], Neighbor{ID: sc.To, Shortcut: true})
		g.adj[sc.To] = append(g.adj[sc.To], Neighbor{ID: sc.From, Shortcut: true})
	}

	// Sort and dedup every adjacency list so traversal order, and with it
	// route tie-breaking, is deterministic. Gates sort before shortcuts on
	// equal neighbor id; a gate and a shortcut between the same pair both
	// survive.
	for id, neighbors := range g.adj {
		sort.Slice(neighbors, func(i, j int) bool {
			if neighbors[i].ID != neighbors[j].ID {
				return neighbors[i].ID < neighbors[j].ID
			}
			return !neighbors[i].Shortcut && neighbors[j].Shortcut
		})
		g.adj[id] = dedupNeighbors(neighbors)
	}

	return g
}

func dedupNeighbors(sorted []Neighbor) []Neighbor {
	if len(sorted) < 2 {
		return sorted
	}
	out := sorted[:1]
	for _, n := range sorted[1:] {
		if last := out[len(out)-1]; n.ID == last.ID && n.Shortcut == last.Shortcut {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Contains reports whether systemID is a node of this graph. Avoided and
// unknown systems are not.
func (g *Graph) Contains(systemID int32) bool {
	_, ok := g.adj[systemID]
	return ok
}

// Neighbors returns the adjacency list of a system in ascending id order.
// The returned slice is shared; callers must not modify it.
func (g *Graph) Neighbors(systemID int32) []Neighbor {
	return g.adj[systemID]
}

// NodeCount returns the number of routable systems.
func (g *Graph) NodeCount() int {
	return len(g.adj)
}

// EdgeCount returns the number of directed adjacency entries.
func (g *Graph) EdgeCount() int {
	total := 0
	for _, neighbors := range g.adj {
		total += len(neighbors)
	}
	return total
}
