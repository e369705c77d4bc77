package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// verticalThreshold is the |u.z| above which world Z is too close to the segment direction to serve
// as the reference axis.
const verticalThreshold = 0.9

var (
	worldX = r3.Vector{X: 1}
	worldZ = r3.Vector{Z: 1}
)

// SegmentFrame returns the 3x3 rotation whose columns are the unit vectors u, v and w of a frame
// aligned with the segment a->b: u points along the segment, v and w span the perpendicular plane.
// Reversing the segment negates u and v and leaves w unchanged.
// A zero length segment yields the identity.
func SegmentFrame(a, b r3.Vector) *mat.Dense {
	d := b.Sub(a)
	n := d.Norm()
	if n == 0 {
		return mat.NewDense(3, 3, []float64{
			1, 0, 0,
			0, 1, 0,
			0, 0, 1,
		})
	}
	u := d.Mul(1 / n)
	ref := worldZ
	if math.Abs(u.Dot(worldZ)) > verticalThreshold {
		ref = worldX
	}
	v := ref.Cross(u).Normalize()
	w := u.Cross(v)

	return mat.NewDense(3, 3, []float64{
		u.X, v.X, w.X,
		u.Y, v.Y, w.Y,
		u.Z, v.Z, w.Z,
	})
}

// OffsetMatrix packs local frame offsets into a 3xN matrix, one offset per column.
func OffsetMatrix(offsets []r3.Vector) *mat.Dense {
	if len(offsets) == 0 {
		return nil
	}
	m := mat.NewDense(3, len(offsets), nil)
	for j, o := range offsets {
		m.Set(0, j, o.X)
		m.Set(1, j, o.Y)
		m.Set(2, j, o.Z)
	}
	return m
}

// RotateOffsets maps the local offsets (columns of local) into world coordinates using frame.
func RotateOffsets(frame, local *mat.Dense) []r3.Vector {
	if local == nil {
		return nil
	}
	_, c := local.Dims()
	var world mat.Dense
	world.Mul(frame, local)
	out := make([]r3.Vector, c)
	for j := range out {
		out[j] = r3.Vector{X: world.At(0, j), Y: world.At(1, j), Z: world.At(2, j)}
	}
	return out
}
