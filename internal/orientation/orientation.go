// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import "fmt"

// DeviceClass is the kind of device the process runs on. It is set once
// at startup and never changes.
type DeviceClass int

const (
	Phone DeviceClass = iota
	Tablet
	Desktop
)

var deviceClassNames = [...]string{"phone", "tablet", "desktop"}

func (c DeviceClass) String() string {
	if c < 0 || int(c) >= len(deviceClassNames) {
		return fmt.Sprintf("DeviceClass(%d)", int(c))
	}
	return deviceClassNames[c]
}

func (c DeviceClass) MarshalText() ([]byte, error) {
	if c < 0 || int(c) >= len(deviceClassNames) {
		return nil, fmt.Errorf("invalid device class %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *DeviceClass) UnmarshalText(b []byte) error {
	v, err := ParseDeviceClass(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseDeviceClass parses "phone", "tablet" or "desktop".
func ParseDeviceClass(s string) (DeviceClass, error) {
	for i, n := range deviceClassNames {
		if n == s {
			return DeviceClass(i), nil
		}
	}
	return Phone, fmt.Errorf("unknown device class %q", s)
}

// InterfaceOrientation is the orientation of the presented UI surface,
// independent of how the device is physically held.
type InterfaceOrientation int

const (
	InterfaceUnknown InterfaceOrientation = iota
	InterfacePortrait
	InterfacePortraitUpsideDown
	InterfaceLandscapeLeft
	InterfaceLandscapeRight
	InterfaceNotApplicable
)

var interfaceNames = [...]string{
	"unknown", "portrait", "portraitUpsideDown", "landscapeLeft", "landscapeRight", "notApplicable",
}

func (o InterfaceOrientation) String() string { return enumName(interfaceNames[:], int(o)) }

func (o InterfaceOrientation) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *InterfaceOrientation) UnmarshalText(b []byte) error {
	*o = InterfaceOrientation(enumIndex(interfaceNames[:], string(b), int(InterfaceUnknown)))
	return nil
}

// Coarse is the stability-biased classification of the device pose.
type Coarse int

const (
	CoarsePortrait Coarse = iota
	CoarseLandscape
	CoarseFlat
	CoarseUnknown
	CoarseNotApplicable
)

var coarseNames = [...]string{"portrait", "landscape", "flat", "unknown", "notApplicable"}

func (o Coarse) String() string { return enumName(coarseNames[:], int(o)) }

func (o Coarse) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Coarse) UnmarshalText(b []byte) error {
	*o = Coarse(enumIndex(coarseNames[:], string(b), int(CoarseUnknown)))
	return nil
}

// Detail is the most granular classification of the device pose. It always
// reflects the latest raw signal.
type Detail int

const (
	DetailPortrait Detail = iota
	DetailPortraitUpsideDown
	DetailLandscapeLeft
	DetailLandscapeRight
	DetailFaceUp
	DetailFaceDown
	DetailUnknown
	DetailNotApplicable
)

var detailNames = [...]string{
	"portrait", "portraitUpsideDown", "landscapeLeft", "landscapeRight",
	"faceUp", "faceDown", "unknown", "notApplicable",
}

func (o Detail) String() string { return enumName(detailNames[:], int(o)) }

func (o Detail) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Detail) UnmarshalText(b []byte) error {
	*o = Detail(enumIndex(detailNames[:], string(b), int(DetailUnknown)))
	return nil
}

// RawDevice is the unprocessed device pose reported by a host. Values outside
// the declared constants can arrive from a host and are treated as unknown.
type RawDevice int

const (
	RawDeviceUnknown RawDevice = iota
	RawDevicePortrait
	RawDevicePortraitUpsideDown
	RawDeviceLandscapeLeft
	RawDeviceLandscapeRight
	RawDeviceFaceUp
	RawDeviceFaceDown
)

var rawDeviceNames = [...]string{
	"unknown", "portrait", "portraitUpsideDown", "landscapeLeft", "landscapeRight", "faceUp", "faceDown",
}

func (r RawDevice) String() string { return enumName(rawDeviceNames[:], int(r)) }

func (r RawDevice) IsPortrait() bool {
	return r == RawDevicePortrait || r == RawDevicePortraitUpsideDown
}

func (r RawDevice) IsLandscape() bool {
	return r == RawDeviceLandscapeLeft || r == RawDeviceLandscapeRight
}

func (r RawDevice) IsFlat() bool {
	return r == RawDeviceFaceUp || r == RawDeviceFaceDown
}

// ParseRawDevice maps a wire name to a RawDevice; unrecognized names are unknown.
func ParseRawDevice(s string) RawDevice {
	return RawDevice(enumIndex(rawDeviceNames[:], s, int(RawDeviceUnknown)))
}

// RawInterface is the unprocessed interface orientation reported by a host.
type RawInterface int

const (
	RawInterfaceUnknown RawInterface = iota
	RawInterfacePortrait
	RawInterfacePortraitUpsideDown
	RawInterfaceLandscapeLeft
	RawInterfaceLandscapeRight
)

var rawInterfaceNames = [...]string{
	"unknown", "portrait", "portraitUpsideDown", "landscapeLeft", "landscapeRight",
}

func (r RawInterface) String() string { return enumName(rawInterfaceNames[:], int(r)) }

// ParseRawInterface maps a wire name to a RawInterface; unrecognized names are unknown.
func ParseRawInterface(s string) RawInterface {
	return RawInterface(enumIndex(rawInterfaceNames[:], s, int(RawInterfaceUnknown)))
}

// State is the published view of the device: its class plus the three
// orientation values.
type State struct {
	Device    DeviceClass          `json:"device"`
	Interface InterfaceOrientation `json:"interface"`
	Coarse    Coarse               `json:"orientation"`
	Detail    Detail               `json:"orientation_detail"`
}

// NotApplicableState is the pinned state of a host without an orientation sensor.
func NotApplicableState(class DeviceClass) State {
	return State{
		Device:    class,
		Interface: InterfaceNotApplicable,
		Coarse:    CoarseNotApplicable,
		Detail:    DetailNotApplicable,
	}
}

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return "unknown"
	}
	return names[i]
}

func enumIndex(names []string, s string, fallback int) int {
	for i, n := range names {
		if n == s {
			return i
		}
	}
	return fallback
}
