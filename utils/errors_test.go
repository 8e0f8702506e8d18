package utils

import (
	"testing"

	"go.viam.com/test"
)

type (
	someStruct struct{}
	someIfc    interface{ method() }
)

func TestNewUnexpectedTypeError(t *testing.T) {
	test.That(t, NewUnexpectedTypeError[string](1).Error(), test.ShouldEqual, "expected string but got int")
	test.That(t, NewUnexpectedTypeError[someIfc]("x").Error(), test.ShouldEqual, "expected utils.someIfc but got string")
	test.That(t, NewUnexpectedTypeError[*someStruct](nil).Error(), test.ShouldEqual, "expected *utils.someStruct but got <nil>")
	test.That(t, NewUnexpectedTypeError[someStruct](2.5).Error(), test.ShouldEqual, "expected utils.someStruct but got float64")
}
