package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestAffineTransformParts(t *testing.T) {
	rot := R3ToR4(r3.Vector{X: 0.2, Y: -1, Z: 0.4}, 0.9).RotationMatrix()
	translation := r3.Vector{X: -1, Y: 2, Z: 3}
	m := NewAffineTransform(rot, translation)

	test.That(t, m.Translation(), test.ShouldResemble, translation)
	test.That(t, m.Rotation(), test.ShouldResemble, rot)
	test.That(t, m.Rotation().Transpose().Transpose(), test.ShouldResemble, rot)
	test.That(t, IdentityTransform.String(), test.ShouldEqual,
		"[1.0000 0.0000 0.0000 0.0000; 0.0000 1.0000 0.0000 0.0000; 0.0000 0.0000 1.0000 0.0000]")
}

func TestIsOrthonormal(t *testing.T) {
	test.That(t, IdentityTransform.IsOrthonormal(1e-9), test.ShouldBeTrue)

	m := NewAffineTransform(R3ToR4(r3.Vector{X: 1, Y: 1, Z: -1}, 2.2).RotationMatrix(), r3.Vector{X: 4})
	test.That(t, m.IsOrthonormal(1e-9), test.ShouldBeTrue)

	t.Run("reflection", func(t *testing.T) {
		reflected := IdentityTransform
		reflected[2][2] = -1
		test.That(t, reflected.IsOrthonormal(1e-9), test.ShouldBeFalse)
	})

	t.Run("shear", func(t *testing.T) {
		sheared := IdentityTransform
		sheared[0][1] = 0.1
		test.That(t, sheared.IsOrthonormal(1e-9), test.ShouldBeFalse)
		test.That(t, sheared.IsOrthonormal(0.5), test.ShouldBeTrue)
	})

	t.Run("decoded norm drifts with the input", func(t *testing.T) {
		scaled := IdentityTransform
		scaled[0][0], scaled[1][1] = 1.01, 1.01
		_, q := DecodePose(scaled)
		test.That(t, math.Abs(q.Real-1), test.ShouldBeGreaterThan, 1e-3)
	})
}
