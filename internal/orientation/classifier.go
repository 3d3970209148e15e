// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import "fmt"

// Family groups raw device poses that share a coarse orientation.
type Family int

const (
	FamilyNone Family = iota
	FamilyPortrait
	FamilyLandscape
	FamilyFlat
)

// Policy selects how coarse orientation reacts to new raw signals.
type Policy int

const (
	// PolicyGated only moves coarse orientation on an unambiguous raw
	// signal; see ApplyUpdate. Ambiguous readings update the detail alone.
	PolicyGated Policy = iota
	// PolicyUngated recomputes coarse orientation from every raw signal,
	// so an unknown reading resets it to unknown.
	PolicyUngated
)

func (p Policy) String() string {
	switch p {
	case PolicyGated:
		return "gated"
	case PolicyUngated:
		return "ungated"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy parses "gated" or "ungated".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "gated":
		return PolicyGated, nil
	case "ungated":
		return PolicyUngated, nil
	}
	return PolicyGated, fmt.Errorf("unknown orientation policy %q", s)
}

// ClassifyDetail maps a raw device pose onto the detail enumeration.
func ClassifyDetail(raw RawDevice) Detail {
	switch raw {
	case RawDevicePortrait:
		return DetailPortrait
	case RawDevicePortraitUpsideDown:
		return DetailPortraitUpsideDown
	case RawDeviceLandscapeLeft:
		return DetailLandscapeLeft
	case RawDeviceLandscapeRight:
		return DetailLandscapeRight
	case RawDeviceFaceUp:
		return DetailFaceUp
	case RawDeviceFaceDown:
		return DetailFaceDown
	default:
		return DetailUnknown
	}
}

// ClassifyCoarseCandidate reports which family the raw pose belongs to and
// the coarse value it proposes. Raw values with no family propose unknown.
func ClassifyCoarseCandidate(raw RawDevice) (Family, Coarse) {
	switch raw {
	case RawDevicePortrait, RawDevicePortraitUpsideDown:
		return FamilyPortrait, CoarsePortrait
	case RawDeviceLandscapeLeft, RawDeviceLandscapeRight:
		return FamilyLandscape, CoarseLandscape
	case RawDeviceFaceUp, RawDeviceFaceDown:
		return FamilyFlat, CoarseFlat
	default:
		return FamilyNone, CoarseUnknown
	}
}

// ApplyUpdate returns the next coarse orientation under the gated rule.
// Portrait and landscape readings always win. A flat reading is ambiguous
// next to an established portrait or landscape orientation and leaves it
// alone; it only settles a coarse value that is flat or unknown. Readings
// with no family never move coarse orientation.
func ApplyUpdate(current Coarse, raw RawDevice) Coarse {
	family, proposed := ClassifyCoarseCandidate(raw)
	switch family {
	case FamilyPortrait, FamilyLandscape:
		return proposed
	case FamilyFlat:
		if current == CoarsePortrait || current == CoarseLandscape {
			return current
		}
		return proposed
	}
	return current
}

// ClassifyInterface maps a raw interface orientation onto the published
// enumeration.
func ClassifyInterface(raw RawInterface) InterfaceOrientation {
	switch raw {
	case RawInterfacePortrait:
		return InterfacePortrait
	case RawInterfacePortraitUpsideDown:
		return InterfacePortraitUpsideDown
	case RawInterfaceLandscapeLeft:
		return InterfaceLandscapeLeft
	case RawInterfaceLandscapeRight:
		return InterfaceLandscapeRight
	default:
		return InterfaceUnknown
	}
}

// ClassifyInitialCoarse is the startup classification, used before any
// previous coarse value exists.
func ClassifyInitialCoarse(raw RawDevice) Coarse {
	switch {
	case raw.IsPortrait():
		return CoarsePortrait
	case raw.IsLandscape():
		return CoarseLandscape
	case raw.IsFlat():
		return CoarseFlat
	default:
		return CoarseUnknown
	}
}

// Classifier turns raw host events into published state.
type Classifier struct {
	Policy Policy
}

// Initial builds the state reported by a one-shot host query.
func (c Classifier) Initial(class DeviceClass, iface RawInterface, dev RawDevice) State {
	return State{
		Device:    class,
		Interface: ClassifyInterface(iface),
		Coarse:    ClassifyInitialCoarse(dev),
		Detail:    ClassifyDetail(dev),
	}
}

// Update returns the state that follows s after one raw event. The detail
// and interface orientations always follow the event.
func (c Classifier) Update(s State, iface RawInterface, dev RawDevice) State {
	next := s
	next.Interface = ClassifyInterface(iface)
	next.Detail = ClassifyDetail(dev)

	switch c.Policy {
	case PolicyUngated:
		next.Coarse = ClassifyInitialCoarse(dev)
	default:
		next.Coarse = ApplyUpdate(s.Coarse, dev)
	}
	return next
}
