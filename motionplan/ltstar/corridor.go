package ltstar

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/aerialnav/ltstar/octree"
	"github.com/aerialnav/ltstar/spatialmath"
)

// CorridorChecker tests whether the cylinder of diameter margin around a segment is clear. A set of
// offsets in the plane perpendicular to the segment is computed once; each offset gives a parallel
// segment that must have line of sight in both directions.
//
// The offset set is symmetric under mirroring its first in-plane axis. Reversing a segment mirrors
// that axis of the local frame, so Free(a, b) and Free(b, a) test the same world segments.
//
// A CorridorChecker is not safe for concurrent use.
type CorridorChecker struct {
	oracle  Oracle
	margin  float64
	offsets []r3.Vector
	local   *mat.Dense

	goal          r3.Vector
	hasGoal       bool
	unknownRadius float64

	checks int
	hits   int
}

// NewCorridorChecker builds a checker for the given margin. ringPoints must be even and at least 4.
func NewCorridorChecker(oracle Oracle, margin float64, ringPoints int) (*CorridorChecker, error) {
	if margin <= 0 || math.IsNaN(margin) || math.IsInf(margin, 0) {
		return nil, errors.Errorf("safety margin must be positive, got %v", margin)
	}
	if ringPoints < 4 || ringPoints%2 != 0 {
		return nil, errors.Errorf("ring points must be even and at least 4, got %d", ringPoints)
	}
	offsets := corridorOffsets(margin/2, oracle.Resolution(), ringPoints)
	return &CorridorChecker{
		oracle:        oracle,
		margin:        margin,
		offsets:       offsets,
		local:         spatialmath.OffsetMatrix(offsets),
		unknownRadius: margin / 2,
	}, nil
}

// corridorOffsets returns the local (0, a, b) offsets: the centre, a ring of radius and grid points
// spaced at most step apart strictly inside the ring. Only a >= 0 is generated; the a < 0 half is its
// exact negation.
func corridorOffsets(radius, step float64, ringPoints int) []r3.Vector {
	offsets := []r3.Vector{{}}

	half := ringPoints / 2
	for k := 0; k <= half; k++ {
		theta := math.Pi * float64(k) / float64(half)
		a, b := radius*math.Sin(theta), radius*math.Cos(theta)
		if k == 0 || k == half {
			offsets = append(offsets, r3.Vector{Y: 0, Z: b})
			continue
		}
		offsets = append(offsets, r3.Vector{Y: a, Z: b}, r3.Vector{Y: -a, Z: b})
	}

	n := int(math.Ceil(radius / step))
	spacing := radius / float64(n)
	for i := 0; i <= n; i++ {
		for j := -n; j <= n; j++ {
			if i*i+j*j >= n*n || (i == 0 && j == 0) {
				continue
			}
			a, b := float64(i)*spacing, float64(j)*spacing
			if i == 0 {
				offsets = append(offsets, r3.Vector{Z: b})
				continue
			}
			offsets = append(offsets, r3.Vector{Y: a, Z: b}, r3.Vector{Y: -a, Z: b})
		}
	}
	return offsets
}

// SetGoal enables the unknown-space exemption around goal: a line of sight test whose target lies
// within radius of goal ignores unknown space. A negative radius means half the margin.
func (c *CorridorChecker) SetGoal(goal r3.Vector, radius float64) {
	if radius < 0 {
		radius = c.margin / 2
	}
	c.goal, c.hasGoal, c.unknownRadius = goal, true, radius
}

// Offsets returns the local frame offsets, first component along the segment.
func (c *CorridorChecker) Offsets() []r3.Vector {
	return append([]r3.Vector(nil), c.offsets...)
}

// Checks is the number of Free calls so far.
func (c *CorridorChecker) Checks() int {
	return c.checks
}

// Hits is the number of Free calls that found the corridor blocked.
func (c *CorridorChecker) Hits() int {
	return c.hits
}

// Free reports whether the corridor between a and b is clear.
func (c *CorridorChecker) Free(a, b r3.Vector) bool {
	c.checks++
	if a == b {
		if !c.endpointClear(a) {
			c.hits++
			return false
		}
		return true
	}

	world := spatialmath.RotateOffsets(spatialmath.SegmentFrame(a, b), c.local)
	for _, o := range world {
		pa, pb := a.Add(o), b.Add(o)
		if !c.LineOfSight(pa, pb) || !c.LineOfSight(pb, pa) {
			c.hits++
			return false
		}
	}
	return true
}

// LineOfSight reports whether q is visible from p.
func (c *CorridorChecker) LineOfSight(p, q r3.Vector) bool {
	if !c.endpointClear(q) {
		return false
	}
	d := q.Sub(p)
	return !c.oracle.CastRay(p, d, d.Norm(), c.ignoreUnknown(q))
}

func (c *CorridorChecker) endpointClear(q r3.Vector) bool {
	switch c.oracle.Occupancy(q) {
	case octree.Occupied:
		return false
	case octree.Unknown:
		return c.ignoreUnknown(q)
	default:
		return true
	}
}

func (c *CorridorChecker) ignoreUnknown(q r3.Vector) bool {
	return c.hasGoal && q.Distance(c.goal) <= c.unknownRadius
}
