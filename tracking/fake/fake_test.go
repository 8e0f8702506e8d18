package fake

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"

	"github.com/milou/vrtracker/logging"
	"github.com/milou/vrtracker/resource"
	"github.com/milou/vrtracker/spatialmath"
	"github.com/milou/vrtracker/tracking"
	"github.com/milou/vrtracker/utils"
)

func decodeSlot(t *testing.T, table tracking.PoseTable, index int) (r3.Vector, quat.Number) {
	t.Helper()
	test.That(t, table[index].Valid, test.ShouldBeTrue)
	test.That(t, table[index].Transform.IsOrthonormal(1e-9), test.ShouldBeTrue)
	return spatialmath.DecodePose(table[index].Transform)
}

func requireVectorAlmostEqual(t *testing.T, actual, expected r3.Vector) {
	t.Helper()
	test.That(t, actual.X, test.ShouldAlmostEqual, expected.X, 1e-9)
	test.That(t, actual.Y, test.ShouldAlmostEqual, expected.Y, 1e-9)
	test.That(t, actual.Z, test.ShouldAlmostEqual, expected.Z, 1e-9)
}

func TestDefaultDevices(t *testing.T) {
	ctx := context.Background()
	mockClock := clock.NewMock()
	p, err := NewProvider(nil, mockClock, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.MaxDeviceCount(), test.ShouldEqual, tracking.MaxTrackedDevices)

	table, err := p.DevicePoses(ctx, tracking.OriginStanding)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(table), test.ShouldEqual, 64)
	test.That(t, table.ValidCount(), test.ShouldEqual, 4)

	test.That(t, p.DeviceClass(ctx, 0), test.ShouldEqual, tracking.ClassHMD)
	test.That(t, p.DeviceClass(ctx, 1), test.ShouldEqual, tracking.ClassController)
	test.That(t, p.DeviceClass(ctx, 2), test.ShouldEqual, tracking.ClassController)
	test.That(t, p.DeviceClass(ctx, 3), test.ShouldEqual, tracking.ClassTrackingReference)
	test.That(t, p.DeviceClass(ctx, 4), test.ShouldEqual, tracking.ClassOther)

	position, q := decodeSlot(t, table, 0)
	requireVectorAlmostEqual(t, position, r3.Vector{Y: 1.7})
	test.That(t, spatialmath.QuaternionAlmostEqual(q, quat.Number{Real: 1}, 1e-9), test.ShouldBeTrue)

	position, _ = decodeSlot(t, table, 1)
	requireVectorAlmostEqual(t, position, r3.Vector{X: -0.2, Y: 1.1, Z: -0.3})

	t.Run("motion follows the clock", func(t *testing.T) {
		mockClock.Add(2 * time.Second)
		table, err := p.DevicePoses(ctx, tracking.OriginStanding)
		test.That(t, err, test.ShouldBeNil)

		// 15 deg/s for 2s about +Y
		_, q := decodeSlot(t, table, 0)
		half := utils.DegToRad(30) / 2
		test.That(t, spatialmath.QuaternionAlmostEqual(q, quat.Number{Real: math.Cos(half), Jmag: math.Sin(half)}, 1e-7),
			test.ShouldBeTrue)

		// 45 deg/s for 2s carries the 0.1m orbit offset from +X to -Z
		position, _ := decodeSlot(t, table, 1)
		requireVectorAlmostEqual(t, position, r3.Vector{X: -0.3, Y: 1.1, Z: -0.4})
	})

	t.Run("seated origin", func(t *testing.T) {
		table, err := p.DevicePoses(ctx, tracking.OriginSeated)
		test.That(t, err, test.ShouldBeNil)
		position, _ := decodeSlot(t, table, 0)
		test.That(t, position.Y, test.ShouldAlmostEqual, 1.7-DefaultSeatedHeight, 1e-9)
	})

	test.That(t, p.Close(ctx), test.ShouldBeNil)
	_, err = p.DevicePoses(ctx, tracking.OriginStanding)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestDropout(t *testing.T) {
	ctx := context.Background()
	p, err := NewProvider(&Config{
		MaxDevices: 4,
		Devices: []DeviceConfig{
			{Index: 0, Class: tracking.ClassHMD},
			{Index: 2, Class: tracking.ClassGenericTracker, Axis: []float64{1, 0, 0}, RateDegsPerSec: 90, DropoutEvery: 2},
		},
	}, clock.NewMock(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	var valid []bool
	for i := 0; i < 4; i++ {
		table, err := p.DevicePoses(ctx, tracking.OriginRaw)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(table), test.ShouldEqual, 4)
		test.That(t, table[0].Valid, test.ShouldBeTrue)
		valid = append(valid, table[2].Valid)
	}
	test.That(t, valid, test.ShouldResemble, []bool{true, false, true, false})
}

func TestFailInit(t *testing.T) {
	_, err := NewProvider(&Config{FailInit: int(tracking.InitErrorHmdNotFound)}, clock.NewMock(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldEqual, "Hmd Not Found (108)")
	test.That(t, tracking.IsInitError(err), test.ShouldBeTrue)
}

func TestConfigValidate(t *testing.T) {
	for name, cfg := range map[string]*Config{
		"negative slots":  {MaxDevices: -1},
		"index too large": {MaxDevices: 2, Devices: []DeviceConfig{{Index: 2}}},
		"duplicate index": {Devices: []DeviceConfig{{Index: 1}, {Index: 1}}},
		"short position":  {Devices: []DeviceConfig{{Position: []float64{1, 2}}}},
		"long axis":       {Devices: []DeviceConfig{{Axis: []float64{1, 2, 3, 4}}}},
		"bad dropout":     {Devices: []DeviceConfig{{DropoutEvery: -3}}},
	} {
		t.Run(name, func(t *testing.T) {
			test.That(t, cfg.Validate("provider"), test.ShouldNotBeNil)
		})
	}
	test.That(t, (&Config{}).Validate("provider"), test.ShouldBeNil)
}

func TestRegisteredConstructor(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)

	prov, err := tracking.NewProvider(ctx, resource.Config{
		Type: "fake",
		Attributes: utils.AttributeMap{
			"max_devices":   8.0,
			"seated_height": 1.0,
			"devices": []interface{}{
				map[string]interface{}{"index": 5.0, "class": "generic_tracker", "position": []interface{}{1.0, 2.0, 3.0}},
			},
		},
	}, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, prov.MaxDeviceCount(), test.ShouldEqual, 8)
	test.That(t, prov.DeviceClass(ctx, 5), test.ShouldEqual, tracking.ClassGenericTracker)

	table, err := prov.DevicePoses(ctx, tracking.OriginSeated)
	test.That(t, err, test.ShouldBeNil)
	position, _ := decodeSlot(t, table, 5)
	requireVectorAlmostEqual(t, position, r3.Vector{X: 1, Y: 1, Z: 3})
	test.That(t, prov.Close(ctx), test.ShouldBeNil)

	_, err = tracking.NewProvider(ctx, resource.Config{Type: "fake", Attributes: utils.AttributeMap{"fail_init": 100.0}}, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldEqual, "Installation Not Found (100)")
}
