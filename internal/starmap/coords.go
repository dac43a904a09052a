// Package starmap provides the 2D projection, camera transforms and
// spatial index behind the interactive star map. Everything here is pure
// computation over value types; built indexes are immutable and safe for
// concurrent readers.
package starmap

import "math"

// Point is a 2D position in world or canvas space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a viewport or canvas extent.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bounds is an axis-aligned bounding box in world space.
type Bounds struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// WorldBounds returns the bounding box of the given points. An empty
// input yields a zero box.
func WorldBounds(points []Point) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{MinX: points[0].X, MinY: points[0].Y, MaxX: points[0].X, MaxY: points[0].Y}
	for _, p := range points[1:] {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b
}

// Camera is the pan/zoom state of the map view: X and Y are the canvas
// point shown at the viewport center, Zoom scales canvas units to screen
// pixels. It is a plain value the caller owns and passes in per call.
type Camera struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// ProjectToCanvas maps a world position into canvas space. The world
// bounding box is scaled by a single uniform factor, min of the per-axis
// factors, so the whole box fits inside the viewport minus padding with
// no distortion; slack on the non-limiting axis centers the map. The Y
// axis flips because canvas Y grows downward while world Y grows upward.
func ProjectToCanvas(world Point, b Bounds, viewport Size, padding float64) Point {
	w := b.MaxX - b.MinX
	h := b.MaxY - b.MinY
	availW := viewport.Width - 2*padding
	availH := viewport.Height - 2*padding
	scale := uniformScale(w, h, availW, availH)
	offsetX := padding + (availW-w*scale)/2
	offsetY := padding + (availH-h*scale)/2
	return Point{
		X: offsetX + (world.X-b.MinX)*scale,
		Y: viewport.Height - offsetY - (world.Y-b.MinY)*scale,
	}
}

// uniformScale picks min(scaleX, scaleY), treating zero-extent axes as
// unconstrained so degenerate bounds cannot produce Inf or NaN.
func uniformScale(w, h, availW, availH float64) float64 {
	sx := math.Inf(1)
	sy := math.Inf(1)
	if w > 0 {
		sx = availW / w
	}
	if h > 0 {
		sy = availH / h
	}
	s := math.Min(sx, sy)
	if math.IsInf(s, 1) {
		return 1
	}
	return s
}

// CanvasToScreen maps a canvas point to screen pixels under the camera.
func CanvasToScreen(p Point, cam Camera, viewport Size) Point {
	return Point{
		X: (p.X-cam.X)*cam.Zoom + viewport.Width/2,
		Y: (p.Y-cam.Y)*cam.Zoom + viewport.Height/2,
	}
}

// ScreenToCanvas maps a screen pixel back to canvas space. It is the
// inverse of CanvasToScreen: composing the two returns the input up to
// floating-point error.
func ScreenToCanvas(p Point, cam Camera, viewport Size) Point {
	return Point{
		X: (p.X-viewport.Width/2)/cam.Zoom + cam.X,
		Y: (p.Y-viewport.Height/2)/cam.Zoom + cam.Y,
	}
}
