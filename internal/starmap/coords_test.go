package starmap

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestWorldBounds(t *testing.T) {
	if got := WorldBounds(nil); got != (Bounds{}) {
		t.Errorf("WorldBounds(nil) = %+v, want zero box", got)
	}
	pts := []Point{{X: 3, Y: -2}, {X: -7, Y: 5}, {X: 1, Y: 1}}
	want := Bounds{MinX: -7, MinY: -2, MaxX: 3, MaxY: 5}
	if got := WorldBounds(pts); got != want {
		t.Errorf("WorldBounds = %+v, want %+v", got, want)
	}
}

func TestProjectToCanvas_SquareWorld(t *testing.T) {
	b := Bounds{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}
	viewport := Size{Width: 200, Height: 200}

	tests := []struct {
		name  string
		world Point
		want  Point
	}{
		{name: "bottom-left lands at padded bottom-left", world: Point{0, 0}, want: Point{20, 180}},
		{name: "top-right lands at padded top-right", world: Point{100, 100}, want: Point{180, 20}},
		{name: "center stays centered", world: Point{50, 50}, want: Point{100, 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProjectToCanvas(tt.world, b, viewport, 20)
			if !almostEqual(got.X, tt.want.X) || !almostEqual(got.Y, tt.want.Y) {
				t.Fatalf("ProjectToCanvas(%+v) = %+v, want %+v", tt.world, got, tt.want)
			}
		})
	}
}

func TestProjectToCanvas_UniformScaleCentersShortAxis(t *testing.T) {
	// World twice as wide as tall in a square viewport: X fills the
	// viewport, Y is centered, and distances keep their aspect ratio.
	b := Bounds{MinX: 0, MinY: 0, MaxX: 200, MaxY: 100}
	viewport := Size{Width: 200, Height: 200}

	bl := ProjectToCanvas(Point{0, 0}, b, viewport, 0)
	tr := ProjectToCanvas(Point{200, 100}, b, viewport, 0)

	if !almostEqual(bl.X, 0) || !almostEqual(tr.X, 200) {
		t.Errorf("X span = [%v, %v], want [0, 200]", bl.X, tr.X)
	}
	if !almostEqual(bl.Y, 150) || !almostEqual(tr.Y, 50) {
		t.Errorf("Y span = [%v, %v], want centered [150, 50]", bl.Y, tr.Y)
	}
	// 200 world units horizontally and 100 vertically must project 2:1.
	dx := tr.X - bl.X
	dy := bl.Y - tr.Y
	if !almostEqual(dx, 2*dy) {
		t.Errorf("projected spans %v x %v, want 2:1 aspect preserved", dx, dy)
	}
}

func TestProjectToCanvas_DegenerateBounds(t *testing.T) {
	viewport := Size{Width: 100, Height: 100}

	// A single point centers in the viewport.
	b := Bounds{MinX: 5, MinY: 5, MaxX: 5, MaxY: 5}
	got := ProjectToCanvas(Point{5, 5}, b, viewport, 10)
	if !almostEqual(got.X, 50) || !almostEqual(got.Y, 50) {
		t.Errorf("single point projects to %+v, want viewport center", got)
	}
	if math.IsNaN(got.X) || math.IsInf(got.X, 0) {
		t.Errorf("degenerate bounds produced %v", got.X)
	}

	// A vertical line of systems centers horizontally.
	b = Bounds{MinX: 7, MinY: 0, MaxX: 7, MaxY: 100}
	got = ProjectToCanvas(Point{7, 0}, b, viewport, 10)
	if !almostEqual(got.X, 50) {
		t.Errorf("zero-width bounds: X = %v, want centered 50", got.X)
	}
}

func TestScreenCanvasRoundTrip(t *testing.T) {
	viewport := Size{Width: 1280, Height: 800}
	cameras := []Camera{
		{X: 0, Y: 0, Zoom: 1},
		{X: 512, Y: 512, Zoom: 0.5},
		{X: -130.5, Y: 77.25, Zoom: 2.7},
		{X: 1e6, Y: -1e6, Zoom: 13},
	}
	points := []Point{
		{X: 0, Y: 0},
		{X: 640, Y: 400},
		{X: -17.3, Y: 912.8},
		{X: 1e5, Y: -3.5},
	}
	for _, cam := range cameras {
		for _, p := range points {
			rt := CanvasToScreen(ScreenToCanvas(p, cam, viewport), cam, viewport)
			if !almostEqual(rt.X, p.X) || !almostEqual(rt.Y, p.Y) {
				t.Errorf("cam %+v: round trip of %+v = %+v", cam, p, rt)
			}
			rt = ScreenToCanvas(CanvasToScreen(p, cam, viewport), cam, viewport)
			if !almostEqual(rt.X, p.X) || !almostEqual(rt.Y, p.Y) {
				t.Errorf("cam %+v: inverse round trip of %+v = %+v", cam, p, rt)
			}
		}
	}
}

func TestCanvasToScreen_CameraCenterMapsToViewportCenter(t *testing.T) {
	viewport := Size{Width: 1920, Height: 1080}
	cam := Camera{X: 333.25, Y: -41.5, Zoom: 1.75}

	got := CanvasToScreen(Point{X: cam.X, Y: cam.Y}, cam, viewport)
	if !almostEqual(got.X, 960) || !almostEqual(got.Y, 540) {
		t.Errorf("camera center projects to %+v, want viewport center", got)
	}
}

func TestCanvasToScreen_ZoomScalesAroundCenter(t *testing.T) {
	viewport := Size{Width: 200, Height: 200}
	cam := Camera{X: 0, Y: 0, Zoom: 2}

	got := CanvasToScreen(Point{X: 10, Y: -5}, cam, viewport)
	if !almostEqual(got.X, 120) || !almostEqual(got.Y, 90) {
		t.Errorf("zoomed point = %+v, want {120 90}", got)
	}
}
