package starmap

import (
	"math"
	"sort"
)

// DefaultCellSize is the grid cell edge in canvas units. With a few
// thousand systems on a ~2000 unit canvas this keeps average occupancy at
// a handful of systems per cell. Cell size affects query cost only, never
// results.
const DefaultCellSize = 50.0

// System is one indexed star system: its id, owning region and canvas
// position.
type System struct {
	ID       int32
	RegionID int32
	Pos      Point
}

// Index is a uniform-grid spatial index over system canvas positions.
// Build it once per system set; it is read-only afterwards.
type Index struct {
	cellSize  float64
	minX      float64
	minY      float64
	cols      int
	rows      int
	cells     [][]System
	centroids map[int32]Point
	count     int
}

// BuildIndex builds an index with DefaultCellSize.
func BuildIndex(systems []System) *Index {
	return BuildIndexCellSize(systems, DefaultCellSize)
}

// BuildIndexCellSize buckets every system into a uniform grid over the
// canvas bounding box and precomputes per-region centroids. One O(N) pass.
func BuildIndexCellSize(systems []System, cellSize float64) *Index {
	idx := &Index{
		cellSize:  cellSize,
		cols:      1,
		rows:      1,
		centroids: make(map[int32]Point),
	}
	if len(systems) == 0 {
		idx.cells = make([][]System, 1)
		return idx
	}

	minX, minY := systems[0].Pos.X, systems[0].Pos.Y
	maxX, maxY := minX, minY
	for _, s := range systems[1:] {
		minX = math.Min(minX, s.Pos.X)
		minY = math.Min(minY, s.Pos.Y)
		maxX = math.Max(maxX, s.Pos.X)
		maxY = math.Max(maxY, s.Pos.Y)
	}
	idx.minX, idx.minY = minX, minY
	idx.cols = int((maxX-minX)/cellSize) + 1
	idx.rows = int((maxY-minY)/cellSize) + 1
	idx.cells = make([][]System, idx.cols*idx.rows)

	type acc struct {
		sum Point
		n   int
	}
	regions := make(map[int32]*acc)

	for _, s := range systems {
		cx, cy := idx.cellCoords(s.Pos)
		i := cy*idx.cols + cx
		idx.cells[i] = append(idx.cells[i], s)

		a := regions[s.RegionID]
		if a == nil {
			a = &acc{}
			regions[s.RegionID] = a
		}
		a.sum.X += s.Pos.X
		a.sum.Y += s.Pos.Y
		a.n++
	}
	for id, a := range regions {
		idx.centroids[id] = Point{X: a.sum.X / float64(a.n), Y: a.sum.Y / float64(a.n)}
	}
	idx.count = len(systems)
	return idx
}

// cellCoords returns the grid cell containing p, clamped to the grid so
// out-of-bounds queries start at the nearest edge cell.
func (idx *Index) cellCoords(p Point) (int, int) {
	cx := int((p.X - idx.minX) / idx.cellSize)
	cy := int((p.Y - idx.minY) / idx.cellSize)
	if cx < 0 {
		cx = 0
	}
	if cx >= idx.cols {
		cx = idx.cols - 1
	}
	if cy < 0 {
		cy = 0
	}
	if cy >= idx.rows {
		cy = idx.rows - 1
	}
	return cx, cy
}

// Count returns the number of indexed systems.
func (idx *Index) Count() int {
	return idx.count
}

// FindNearest returns the indexed system closest to p within maxRadius.
// Cells are examined in expanding square rings from the query cell; the
// scan stops once no unexamined ring can hold anything closer than the
// best hit or the radius. Equal distances resolve to the lowest system
// id. ok is false when nothing lies within the radius; that is an
// expected outcome, not an error.
func (idx *Index) FindNearest(p Point, maxRadius float64) (System, bool) {
	if idx.count == 0 || maxRadius < 0 {
		return System{}, false
	}
	ccx, ccy := idx.cellCoords(p)

	maxRing := idx.cols
	if idx.rows > maxRing {
		maxRing = idx.rows
	}
	if r := maxRadius / idx.cellSize; r < float64(maxRing) {
		maxRing = int(r) + 1
	}

	var best System
	bestDist := math.Inf(1)
	found := false

	for ring := 0; ring <= maxRing; ring++ {
		// Cells in this ring are at least (ring-1)*cellSize away from any
		// point inside the center cell.
		if found && float64(ring-1)*idx.cellSize > bestDist {
			break
		}
		idx.scanRing(ccx, ccy, ring, func(s System) {
			d := math.Hypot(s.Pos.X-p.X, s.Pos.Y-p.Y)
			if d > maxRadius {
				return
			}
			if d < bestDist || (d == bestDist && s.ID < best.ID) {
				best = s
				bestDist = d
				found = true
			}
		})
	}
	if !found {
		return System{}, false
	}
	return best, true
}

// scanRing visits every system in the square ring of cells at the given
// cell radius around (ccx, ccy).
func (idx *Index) scanRing(ccx, ccy, ring int, visit func(System)) {
	if ring == 0 {
		idx.scanCell(ccx, ccy, visit)
		return
	}
	for cx := ccx - ring; cx <= ccx+ring; cx++ {
		idx.scanCell(cx, ccy-ring, visit)
		idx.scanCell(cx, ccy+ring, visit)
	}
	for cy := ccy - ring + 1; cy <= ccy+ring-1; cy++ {
		idx.scanCell(ccx-ring, cy, visit)
		idx.scanCell(ccx+ring, cy, visit)
	}
}

func (idx *Index) scanCell(cx, cy int, visit func(System)) {
	if cx < 0 || cx >= idx.cols || cy < 0 || cy >= idx.rows {
		return
	}
	for _, s := range idx.cells[cy*idx.cols+cx] {
		visit(s)
	}
}

// QueryRect returns the systems whose canvas position lies inside the
// rectangle [min, max], in ascending id order. Used for viewport culling.
func (idx *Index) QueryRect(min, max Point) []System {
	if idx.count == 0 || min.X > max.X || min.Y > max.Y {
		return nil
	}
	minCX, minCY := idx.cellCoords(min)
	maxCX, maxCY := idx.cellCoords(max)

	var out []System
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			for _, s := range idx.cells[cy*idx.cols+cx] {
				if s.Pos.X >= min.X && s.Pos.X <= max.X && s.Pos.Y >= min.Y && s.Pos.Y <= max.Y {
					out = append(out, s)
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RegionCentroid returns the arithmetic mean canvas position of a
// region's systems. ok is false for regions with no indexed systems.
func (idx *Index) RegionCentroid(regionID int32) (Point, bool) {
	p, ok := idx.centroids[regionID]
	return p, ok
}
