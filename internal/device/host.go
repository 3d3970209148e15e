// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package device

import (
	"sync"
	"time"

	"github.com/relabs-tech/deviceinfo/internal/orientation"
)

// Event is one orientation-change notification delivered by a host.
type Event struct {
	Interface orientation.RawInterface
	Device    orientation.RawDevice
	At        time.Time
}

// Subscription is a live registration for host events.
type Subscription interface {
	// Cancel stops delivery. Calling it more than once is a no-op.
	Cancel()
}

// Host is the platform the manager runs on: it answers the one-shot startup
// query and, when it has an orientation sensor, delivers change events.
//
// A host must deliver events for one subscription one at a time and in
// order; the manager never reorders them.
type Host interface {
	Class() orientation.DeviceClass
	HasOrientationSensor() bool

	// Current reports the raw orientations right now. ok is false when the
	// host cannot tell yet.
	Current() (iface orientation.RawInterface, dev orientation.RawDevice, ok bool)

	// BeginNotifications switches on event generation. EndNotifications
	// switches it off again and must tolerate being called after a failed
	// or missing Begin.
	BeginNotifications() error
	EndNotifications()

	Subscribe(fn func(Event)) (Subscription, error)
}

// SubscriptionFunc adapts a plain function to Subscription and guards it so
// the function runs at most once.
func SubscriptionFunc(fn func()) Subscription {
	return &funcSubscription{fn: fn}
}

type funcSubscription struct {
	once sync.Once
	fn   func()
}

func (s *funcSubscription) Cancel() {
	s.once.Do(func() {
		if s.fn != nil {
			s.fn()
		}
	})
}
