package geometry

import (
	"math"
	"testing"
)

func quad(xy ...float64) [4]Point {
	var q [4]Point
	for i := range q {
		q[i] = Point{X: xy[2*i], Y: xy[2*i+1]}
	}
	return q
}

func TestSignedArea(t *testing.T) {
	tests := []struct {
		name string
		poly []Point
		want float64
	}{
		{name: "empty", poly: nil, want: 0},
		{name: "two points", poly: []Point{{0, 0}, {1, 1}}, want: 0},
		{name: "unit square screen clockwise", poly: []Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}, want: -1},
		{name: "unit square reversed", poly: []Point{{0, 0}, {0, 1}, {1, 1}, {1, 0}}, want: 1},
		{name: "triangle", poly: []Point{{0, 0}, {4, 0}, {0, 3}}, want: -6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SignedArea(tt.poly); got != tt.want {
				t.Errorf("SignedArea() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsClockwise(t *testing.T) {
	// Right, down, left: clockwise on a Y-down screen.
	if !IsClockwise([]Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}) {
		t.Error("screen-clockwise polygon not reported clockwise")
	}
	if IsClockwise([]Point{{0, 0}, {0, 1}, {1, 1}, {1, 0}}) {
		t.Error("screen-counter-clockwise polygon reported clockwise")
	}
}

func TestNormalizeClockwise(t *testing.T) {
	tests := []struct {
		name string
		in   [4]Point
	}{
		{name: "square in order", in: quad(0, 0, 10, 0, 10, 10, 0, 10)},
		{name: "square reversed", in: quad(0, 0, 0, 10, 10, 10, 10, 0)},
		{name: "bow tie", in: quad(0, 0, 10, 10, 10, 0, 0, 10)},
		{name: "skewed", in: quad(120, 40, 300, 55, 280, 200, 90, 180)},
		{name: "dart", in: quad(0, 0, 10, 5, 0, 10, 3, 5)},
		{name: "dart reversed", in: quad(0, 0, 3, 5, 0, 10, 10, 5)},
		{name: "dart shuffled", in: quad(3, 5, 10, 5, 0, 0, 0, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeClockwise(tt.in)
			if !IsClockwise(got[:]) {
				t.Errorf("NormalizeClockwise() = %v, area %v not clockwise", got, SignedArea(got[:]))
			}
			again := NormalizeClockwise(got)
			if again != got {
				t.Errorf("not idempotent: %v then %v", got, again)
			}
			// Same vertex set.
			for _, p := range tt.in {
				found := false
				for _, q := range got {
					if p == q {
						found = true
					}
				}
				if !found {
					t.Errorf("vertex %v lost", p)
				}
			}
		})
	}
}

func TestNormalizeClockwise_ConcaveKeepsNotch(t *testing.T) {
	// The notch vertex (3,5) must stay between the two tips it joins.
	want := quad(0, 0, 10, 5, 0, 10, 3, 5)
	for _, in := range [][4]Point{want, quad(0, 0, 3, 5, 0, 10, 10, 5)} {
		got := NormalizeClockwise(in)
		if got != want {
			t.Errorf("NormalizeClockwise(%v) = %v, want %v", in, got, want)
		}
		if a := SignedArea(got[:]); a != -35 {
			t.Errorf("area = %v, want -35", a)
		}
	}
}

func TestNormalizeClockwise_AlreadyClockwiseUnchanged(t *testing.T) {
	q := quad(0, 0, 10, 0, 10, 10, 0, 10)
	if got := NormalizeClockwise(q); got != q {
		t.Errorf("NormalizeClockwise(%v) = %v, want unchanged", q, got)
	}
}

func TestNormalizeClockwise_SameResultForAnyInputOrder(t *testing.T) {
	a := NormalizeClockwise(quad(0, 0, 10, 0, 10, 10, 0, 10))
	b := NormalizeClockwise(quad(10, 10, 0, 10, 0, 0, 10, 0))
	if a != b {
		t.Errorf("orderings differ: %v vs %v", a, b)
	}
}

func TestNormalizeClockwise_Degenerate(t *testing.T) {
	same := quad(5, 5, 5, 5, 5, 5, 5, 5)
	got := NormalizeClockwise(same)
	if got != same {
		t.Errorf("coincident points = %v, want %v", got, same)
	}

	line := quad(0, 0, 1, 1, 2, 2, 3, 3)
	got = NormalizeClockwise(line)
	for _, p := range got {
		if !p.Finite() {
			t.Fatalf("collinear input produced %v", got)
		}
	}
}

func TestNormalizeClockwiseOrder_Permutation(t *testing.T) {
	q := quad(0, 0, 10, 0, 10, 10, 0, 10)
	order := NormalizeClockwiseOrder(q)
	seen := map[int]bool{}
	for _, i := range order {
		seen[i] = true
	}
	if len(seen) != 4 {
		t.Fatalf("order %v is not a permutation", order)
	}
	got := NormalizeClockwise(q)
	for i, src := range order {
		if got[i] != q[src] {
			t.Errorf("vertex %d = %v, want q[%d] = %v", i, got[i], src, q[src])
		}
	}
}

func TestNearestVertex(t *testing.T) {
	poly := []Point{{0, 0}, {100, 0}, {100, 100}, {0, 100}}

	tests := []struct {
		name   string
		x, y   float64
		radius float64
		want   int
	}{
		{name: "exact hit", x: 100, y: 0, radius: 8, want: 1},
		{name: "within radius", x: 3, y: 4, radius: 8, want: 0},
		{name: "on the radius", x: 8, y: 0, radius: 8, want: 0},
		{name: "outside radius", x: 50, y: 50, radius: 8, want: NoVertex},
		{name: "just outside", x: 0, y: 9, radius: 8, want: NoVertex},
		{name: "closest wins", x: 96, y: 98, radius: 200, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NearestVertex(poly, tt.x, tt.y, tt.radius); got != tt.want {
				t.Errorf("NearestVertex(%v, %v) = %d, want %d", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestNearestVertex_TieKeepsLowestIndex(t *testing.T) {
	poly := []Point{{10, 0}, {0, 10}, {-10, 0}}
	if got := NearestVertex(poly, 0, 0, 20); got != 0 {
		t.Errorf("NearestVertex() = %d, want 0", got)
	}
}

func TestWithin(t *testing.T) {
	if !Within(Point{0, 0}, Point{6, 8}, 10) {
		t.Error("distance 10 should be within radius 10")
	}
	if Within(Point{0, 0}, Point{6, 8.1}, 10) {
		t.Error("distance > 10 should not be within radius 10")
	}
}

func TestContains(t *testing.T) {
	sq := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	tests := []struct {
		p    Point
		want bool
	}{
		{Point{5, 5}, true},
		{Point{-1, 5}, false},
		{Point{5, 11}, false},
		{Point{9.9, 0.1}, true},
	}
	for _, tt := range tests {
		if got := Contains(sq, tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if Contains(sq[:2], Point{5, 0}) {
		t.Error("two-point polygon cannot contain anything")
	}
}

func TestCentroid(t *testing.T) {
	c := Centroid([]Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}})
	if math.Abs(c.X-5) > 1e-9 || math.Abs(c.Y-5) > 1e-9 {
		t.Errorf("Centroid() = %v, want (5, 5)", c)
	}
	if got := Centroid(nil); got != (Point{}) {
		t.Errorf("Centroid(nil) = %v, want zero", got)
	}
}
