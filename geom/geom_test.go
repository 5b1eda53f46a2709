package geom

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestSignedAreaCCWPositive(t *testing.T) {
	p1, p2, p3 := Point{0, 0}, Point{1, 0}, Point{0, 1}
	area := SignedArea(p1, p2, p3)
	if area <= 0 {
		t.Fatalf("expected positive area for CCW triangle, got %v", area)
	}
	if !almostEqual(area, 0.5, 1e-12) {
		t.Fatalf("expected area 0.5, got %v", area)
	}
}

func TestSignedAreaCWNegative(t *testing.T) {
	p1, p2, p3 := Point{0, 0}, Point{0, 1}, Point{1, 0}
	area := SignedArea(p1, p2, p3)
	if area >= 0 {
		t.Fatalf("expected negative area for CW triangle, got %v", area)
	}
}

func TestQualityFactorEquilateralIsOne(t *testing.T) {
	// equilateral triangle with side length 1, CCW wound
	p1 := Point{0, 0}
	p2 := Point{1, 0}
	p3 := Point{0.5, math.Sqrt(3) / 2}
	q := QualityFactor(p1, p2, p3)
	if !almostEqual(q, 1, 1e-9) {
		t.Fatalf("expected quality ~1 for equilateral triangle, got %v", q)
	}
}

func TestQualityFactorDegenerateIsZero(t *testing.T) {
	p1, p2, p3 := Point{0, 0}, Point{1, 0}, Point{2, 0}
	q := QualityFactor(p1, p2, p3)
	if !almostEqual(q, 0, 1e-9) {
		t.Fatalf("expected quality 0 for collinear triangle, got %v", q)
	}
}

func TestBarycentricSumsToOne(t *testing.T) {
	p1, p2, p3 := Point{0, 0}, Point{4, 0}, Point{0, 4}
	p := Point{1, 1}
	w1, w2, w3, ok := Barycentric(p, p1, p2, p3)
	if !ok {
		t.Fatal("expected ok=true for non-degenerate triangle")
	}
	if !almostEqual(w1+w2+w3, 1, 1e-12) {
		t.Fatalf("expected weights to sum to 1, got %v", w1+w2+w3)
	}
}

func TestInTriangle(t *testing.T) {
	p1, p2, p3 := Point{0, 0}, Point{4, 0}, Point{0, 4}
	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"center", Point{1, 1}, true},
		{"vertex", Point{0, 0}, true},
		{"outside", Point{5, 5}, false},
		{"on edge", Point{2, 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InTriangle(tt.p, p1, p2, p3); got != tt.want {
				t.Errorf("InTriangle(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestBarycentricDegenerateNotOK(t *testing.T) {
	p1, p2, p3 := Point{0, 0}, Point{1, 0}, Point{2, 0}
	_, _, _, ok := Barycentric(Point{0.5, 0}, p1, p2, p3)
	if ok {
		t.Fatal("expected ok=false for degenerate triangle")
	}
}

func TestMidpointAndCentroid(t *testing.T) {
	a, b := Point{0, 0}, Point{2, 4}
	if m := Midpoint(a, b); m != (Point{1, 2}) {
		t.Fatalf("Midpoint = %v, want {1 2}", m)
	}
	c := Centroid(Point{0, 0}, Point{3, 0}, Point{0, 3})
	if !almostEqual(c[0], 1, 1e-12) || !almostEqual(c[1], 1, 1e-12) {
		t.Fatalf("Centroid = %v, want {1 1}", c)
	}
}
