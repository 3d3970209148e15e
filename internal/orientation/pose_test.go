package orientation

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRawFromGravity(t *testing.T) {
	cases := []struct {
		name string
		g    Gravity
		want RawDevice
	}{
		{"upright", Gravity{0, 1, 0}, RawDevicePortrait},
		{"upside down", Gravity{0, -1, 0}, RawDevicePortraitUpsideDown},
		{"left edge down", Gravity{-1, 0, 0}, RawDeviceLandscapeLeft},
		{"right edge down", Gravity{1, 0, 0}, RawDeviceLandscapeRight},
		{"face up", Gravity{0, 0, 1}, RawDeviceFaceUp},
		{"face down", Gravity{0, 0, -1}, RawDeviceFaceDown},
		{"raw counts", Gravity{120, 16000, 900}, RawDevicePortrait},
		{"slightly tilted flat", Gravity{0.3, 0.3, 0.9}, RawDeviceFaceUp},
		{"diagonal", Gravity{0.7, 0.7, 0}, RawDeviceUnknown},
		{"reclined", Gravity{0.4, 0.4, 0.6}, RawDeviceUnknown},
		{"free fall", Gravity{0, 0, 0}, RawDeviceUnknown},
		{"nan", Gravity{math.NaN(), 0, 1}, RawDeviceUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RawFromGravity(tc.g, 0))
		})
	}
}

func TestRawFromGravityThreshold(t *testing.T) {
	// 45 degrees back: flat under a loose threshold, portrait under a strict one.
	g := Gravity{0, math.Sqrt2 / 2 * 1.1, math.Sqrt2 / 2}
	assert.Equal(t, RawDevicePortrait, RawFromGravity(g, 0.9))
	assert.Equal(t, RawDeviceFaceUp, RawFromGravity(g, 0.6))
}

func TestInterfaceFor(t *testing.T) {
	assert.Equal(t, RawInterfacePortrait, InterfaceFor(RawDevicePortrait, RawInterfaceLandscapeLeft))
	assert.Equal(t, RawInterfaceLandscapeRight, InterfaceFor(RawDeviceLandscapeLeft, RawInterfacePortrait))
	assert.Equal(t, RawInterfaceLandscapeLeft, InterfaceFor(RawDeviceLandscapeRight, RawInterfacePortrait))
	assert.Equal(t, RawInterfaceLandscapeLeft, InterfaceFor(RawDeviceFaceUp, RawInterfaceLandscapeLeft))
	assert.Equal(t, RawInterfacePortrait, InterfaceFor(RawDeviceUnknown, RawInterfacePortrait))
}

func TestComputePoseFromAccel(t *testing.T) {
	p := ComputePoseFromAccel(Gravity{0, 0, 1})
	assert.InDelta(t, 0, p.Roll, 1e-9)
	assert.InDelta(t, 0, p.Pitch, 1e-9)

	p = ComputePoseFromAccel(Gravity{0, 1, 0})
	assert.InDelta(t, 90, p.Roll, 1e-9)
}

func TestMockSourceStartsUpright(t *testing.T) {
	now := time.Unix(1000, 0)
	src := newMockSource(func() time.Time { return now })

	g, err := src.Next()
	assert.NoError(t, err)
	assert.Equal(t, RawDevicePortrait, RawFromGravity(g, 0))

	// Half a tilt period later the device lies face up.
	halfPeriod := math.Pi / 0.2
	now = now.Add(time.Duration(halfPeriod * float64(time.Second)))
	g, err = src.Next()
	assert.NoError(t, err)
	assert.Equal(t, RawDeviceFaceUp, RawFromGravity(g, 0))
}
