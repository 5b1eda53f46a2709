package meshmodel

import (
	"testing"

	"github.com/google/uuid"

	"github.com/lattice2d/springmesh/geom"
)

func TestCloneIsIndependent(t *testing.T) {
	m := Mesh{
		P: []Point{{ID: uuid.New(), Pos: geom.Point{0, 0}, Class: ClassCorner, L0: 1}},
		T: []Triangle{{0, 1, 2}},
		B: []Bar{{0, 1}},
	}
	clone := m.Clone()
	clone.P[0].Pos = geom.Point{9, 9}
	clone.T[0][0] = 99

	if m.P[0].Pos != (geom.Point{0, 0}) {
		t.Fatal("mutating the clone's points mutated the original")
	}
	if m.T[0][0] != 0 {
		t.Fatal("mutating the clone's triangles mutated the original")
	}
}

func TestPositions(t *testing.T) {
	m := Mesh{P: []Point{{Pos: geom.Point{1, 2}}, {Pos: geom.Point{3, 4}}}}
	pos := m.Positions()
	if pos[0] != (geom.Point{1, 2}) || pos[1] != (geom.Point{3, 4}) {
		t.Fatalf("unexpected positions: %v", pos)
	}
}

func TestClassPredicates(t *testing.T) {
	if !ClassCorner.IsCorner() || !ClassCorner.IsBoundary() {
		t.Fatal("corner should be both corner and boundary")
	}
	if ClassInterior.IsBoundary() {
		t.Fatal("interior should not be boundary")
	}
	if ClassBoundaryLeft.IsCorner() {
		t.Fatal("boundary-left should not be a corner")
	}
}
