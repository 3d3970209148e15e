// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
)

// Pose is a roll/pitch estimate in degrees, logged next to the raw pose.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
}

// Gravity is an accelerometer reading in any consistent unit. The axes
// follow the screen: +Y towards the top edge, +X towards the right edge,
// +Z out of the display.
type Gravity struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// GravitySource is anything that can provide gravity readings over time:
// a mock sweep or a real IMU.
type GravitySource interface {
	Next() (Gravity, error)
}

const (
	// DefaultFlatRatio is the share of gravity on Z above which the device
	// is considered lying flat (about 37 degrees of tilt).
	DefaultFlatRatio = 0.8

	// minEdgeRatio is the share of gravity an in-plane axis needs before
	// the device counts as standing on an edge.
	minEdgeRatio = 0.5

	// dominanceMargin keeps diagonal holds unknown instead of flapping
	// between portrait and landscape.
	dominanceMargin = 0.1
)

// ComputePoseFromAccel computes roll and pitch from accelerometer data only.
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
func ComputePoseFromAccel(g Gravity) Pose {
	rollRad := math.Atan2(g.Y, g.Z)
	pitchRad := math.Atan2(-g.X, math.Sqrt(g.Y*g.Y+g.Z*g.Z))

	return Pose{
		Roll:  rollRad * 180.0 / math.Pi,
		Pitch: pitchRad * 180.0 / math.Pi,
	}
}

// RawFromGravity derives the raw device pose from a gravity vector, the
// way a host platform does before notifying orientation changes. Readings
// that are too weak or too diagonal are unknown. flatRatio <= 0 selects
// DefaultFlatRatio.
func RawFromGravity(g Gravity, flatRatio float64) RawDevice {
	if flatRatio <= 0 || flatRatio > 1 {
		flatRatio = DefaultFlatRatio
	}

	n := math.Sqrt(g.X*g.X + g.Y*g.Y + g.Z*g.Z)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return RawDeviceUnknown
	}
	x, y, z := g.X/n, g.Y/n, g.Z/n

	if math.Abs(z) >= flatRatio {
		if z > 0 {
			return RawDeviceFaceUp
		}
		return RawDeviceFaceDown
	}

	ax, ay := math.Abs(x), math.Abs(y)
	if math.Max(ax, ay) < minEdgeRatio || math.Abs(ax-ay) < dominanceMargin {
		return RawDeviceUnknown
	}

	if ay > ax {
		if y > 0 {
			return RawDevicePortrait
		}
		return RawDevicePortraitUpsideDown
	}
	if x < 0 {
		return RawDeviceLandscapeLeft
	}
	return RawDeviceLandscapeRight
}

// InterfaceFor is the interface orientation a host rotates its UI to for a
// device pose. Flat and unknown poses leave the UI where it was.
func InterfaceFor(dev RawDevice, current RawInterface) RawInterface {
	switch dev {
	case RawDevicePortrait:
		return RawInterfacePortrait
	case RawDevicePortraitUpsideDown:
		return RawInterfacePortraitUpsideDown
	case RawDeviceLandscapeLeft:
		// UI rotates against the device.
		return RawInterfaceLandscapeRight
	case RawDeviceLandscapeRight:
		return RawInterfaceLandscapeLeft
	default:
		return current
	}
}
