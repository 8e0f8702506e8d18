package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// DecodePose splits a device-to-origin transform into its translation and a unit quaternion for
// its rotation block. It is total: degenerate or non-orthonormal blocks are not validated, and no
// component is ever NaN.
//
// The unsigned component magnitudes come from the diagonal, each radicand clamped at zero so that
// rounding near a half turn cannot produce NaN. The x, y and z signs are then copied from the
// antisymmetric off-diagonal differences. w is always non-negative; q and -q describe the same
// rotation so the positive-w half is used.
func DecodePose(m AffineTransform) (r3.Vector, quat.Number) {
	position := m.Translation()

	q := quat.Number{
		Real: math.Sqrt(math.Max(0, 1+m[0][0]+m[1][1]+m[2][2])) / 2,
		Imag: math.Sqrt(math.Max(0, 1+m[0][0]-m[1][1]-m[2][2])) / 2,
		Jmag: math.Sqrt(math.Max(0, 1-m[0][0]+m[1][1]-m[2][2])) / 2,
		Kmag: math.Sqrt(math.Max(0, 1-m[0][0]-m[1][1]+m[2][2])) / 2,
	}

	q.Imag = math.Copysign(q.Imag, m[2][1]-m[1][2])
	q.Jmag = math.Copysign(q.Jmag, m[0][2]-m[2][0])
	q.Kmag = math.Copysign(q.Kmag, m[1][0]-m[0][1])

	return position, q
}
