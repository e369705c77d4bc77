package ltstar

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/aerialnav/ltstar/logging"
	"github.com/aerialnav/ltstar/octree"
)

var (
	_ Oracle = (*octree.Octree)(nil)
	_ Oracle = (*stubOracle)(nil)
)

// Finest cells of the test scenes are 0.5 wide and centred on multiples of 0.5.
var sceneCenter = [3]float64{-0.25, -0.25, -0.25}

func intPtr(i int) *int {
	return &i
}

func buildScene(t *testing.T, scene octree.Scene) *octree.Octree {
	t.Helper()
	tree, err := scene.Build(logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return tree
}

// emptyScene is a free corridor from x=-1 to x=11, two metres wide and high.
func emptyScene(t *testing.T) *octree.Octree {
	return buildScene(t, octree.Scene{
		Resolution: 0.5,
		Depth:      10,
		Center:     sceneCenter,
		Boxes: []octree.Box{
			{Min: [3]float64{-1, -1, -1}, Max: [3]float64{11, 1, 1}, State: octree.Free},
		},
	})
}

// wallScene adds a one cell thick wall at x=5 with a gap for cell centres 4 <= z <= 6.
func wallScene(t *testing.T, withGap bool) *octree.Octree {
	boxes := []octree.Box{
		{Min: [3]float64{-1, -1, -1}, Max: [3]float64{11, 1, 7}, State: octree.Free},
	}
	if withGap {
		boxes = append(boxes,
			octree.Box{Min: [3]float64{5, -1, -1}, Max: [3]float64{5, 1, 3.5}, State: octree.Occupied},
			octree.Box{Min: [3]float64{5, -1, 6.5}, Max: [3]float64{5, 1, 7}, State: octree.Occupied},
		)
	} else {
		boxes = append(boxes, octree.Box{Min: [3]float64{5, -1, -1}, Max: [3]float64{5, 1, 7}, State: octree.Occupied})
	}
	return buildScene(t, octree.Scene{Resolution: 0.5, Depth: 10, Center: sceneCenter, Boxes: boxes})
}

// windowScene is a pruned 16m cube of unit cells split by an occupied plane at x=10 with a 3x3
// window for 6 <= y, z < 9. Away from the plane the free space collapses into large voxels.
func windowScene(t *testing.T) *octree.Octree {
	plane := func(y0, y1, z0, z1 float64) octree.Box {
		return octree.Box{Min: [3]float64{10.5, y0, z0}, Max: [3]float64{10.5, y1, z1}, State: octree.Occupied}
	}
	return buildScene(t, octree.Scene{
		Resolution: 1,
		Depth:      4,
		Center:     [3]float64{8, 8, 8},
		Prune:      true,
		Boxes: []octree.Box{
			{Min: [3]float64{0, 0, 0}, Max: [3]float64{16, 16, 16}, State: octree.Free, MinDepth: intPtr(0)},
			plane(0, 16, 0, 5.5),
			plane(0, 16, 9.5, 16),
			plane(0, 5.5, 5.5, 9.5),
			plane(9.5, 16, 5.5, 9.5),
		},
	})
}

// stubOracle is a unit grid where every point is free and explored unless listed, rays are
// blocked by a caller supplied predicate and neighbours are given explicitly.
type stubOracle struct {
	occupied  map[r3.Vector]bool
	blocked   func(from, to r3.Vector) bool
	neighbors map[r3.Vector][]r3.Vector
}

func (s *stubOracle) IsExplored(p r3.Vector) bool {
	return true
}

func (s *stubOracle) Occupancy(p r3.Vector) octree.Occupancy {
	if s.occupied[s.VoxelCenter(p, 0)] {
		return octree.Occupied
	}
	return octree.Free
}

func (s *stubOracle) CastRay(origin, direction r3.Vector, maxRange float64, ignoreUnknown bool) bool {
	if s.blocked == nil || direction.Norm() == 0 {
		return false
	}
	return s.blocked(origin, origin.Add(direction.Normalize().Mul(maxRange)))
}

func (s *stubOracle) VoxelDepth(p r3.Vector) int { return 0 }

func (s *stubOracle) VoxelCenter(p r3.Vector, depth int) r3.Vector {
	return r3.Vector{X: math.Round(p.X), Y: math.Round(p.Y), Z: math.Round(p.Z)}
}

func (s *stubOracle) TreeDepth() int { return 0 }

func (s *stubOracle) Resolution() float64 { return 1 }

func (s *stubOracle) EnumerateNeighbors(center r3.Vector, size float64) []r3.Vector {
	return s.neighbors[center]
}

// pillar blocks every ray passing within radius of p.
func pillar(p r3.Vector, radius float64) func(from, to r3.Vector) bool {
	return func(from, to r3.Vector) bool {
		return segmentDistance(p, from, to) < radius
	}
}

func segmentDistance(p, a, b r3.Vector) float64 {
	ab := b.Sub(a)
	l2 := ab.Norm2()
	if l2 == 0 {
		return p.Distance(a)
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/l2))
	return p.Distance(a.Add(ab.Mul(t)))
}

// crossingZ returns the height at which path first crosses the plane x=plane.
func crossingZ(path []r3.Vector, plane float64) (float64, bool) {
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		if (a.X-plane)*(b.X-plane) > 0 || a.X == b.X {
			continue
		}
		t := (plane - a.X) / (b.X - a.X)
		return a.Z + t*(b.Z-a.Z), true
	}
	return 0, false
}
