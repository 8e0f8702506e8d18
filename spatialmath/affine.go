package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// AffineTransform is a row-major 3x4 rigid-body transform as reported by a tracking runtime.
// Columns 0 through 2 hold the rotation block and column 3 holds the translation.
type AffineTransform [3][4]float64

// IdentityTransform is the transform with no rotation and no translation.
var IdentityTransform = AffineTransform{
	{1, 0, 0, 0},
	{0, 1, 0, 0},
	{0, 0, 1, 0},
}

// NewAffineTransform builds a transform from a rotation and a translation.
func NewAffineTransform(rot *RotationMatrix, translation r3.Vector) AffineTransform {
	var m AffineTransform
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			m[row][col] = rot.At(row, col)
		}
	}
	m[0][3] = translation.X
	m[1][3] = translation.Y
	m[2][3] = translation.Z
	return m
}

// Translation returns the translation column.
func (m AffineTransform) Translation() r3.Vector {
	return r3.Vector{X: m[0][3], Y: m[1][3], Z: m[2][3]}
}

// Rotation returns the 3x3 rotation block.
func (m AffineTransform) Rotation() *RotationMatrix {
	rm := &RotationMatrix{}
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			rm.mat[row*3+col] = m[row][col]
		}
	}
	return rm
}

// IsOrthonormal reports whether the rotation block is a proper rotation: R*R^T equals the
// identity and det(R) equals 1, both within tol. This is a diagnostic; decoding never requires it.
func (m AffineTransform) IsOrthonormal(tol float64) bool {
	r := mat.NewDense(3, 3, m.Rotation().mat[:])
	var rrt mat.Dense
	rrt.Mul(r, r.T())
	if !mat.EqualApprox(&rrt, eye3, tol) {
		return false
	}
	det := mat.Det(r)
	return det > 1-tol && det < 1+tol
}

func (m AffineTransform) String() string {
	return fmt.Sprintf("[%.4f %.4f %.4f %.4f; %.4f %.4f %.4f %.4f; %.4f %.4f %.4f %.4f]",
		m[0][0], m[0][1], m[0][2], m[0][3],
		m[1][0], m[1][1], m[1][2], m[1][3],
		m[2][0], m[2][1], m[2][2], m[2][3])
}

var eye3 = mat.NewDiagDense(3, []float64{1, 1, 1})
