// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"time"
)

type mockSource struct {
	start time.Time
	now   func() time.Time
}

// NewMockSource creates a mock gravity source that slowly spins the device
// around the screen normal while tilting it between upright and face up.
// All four edge poses and face up show up within a minute.
func NewMockSource() GravitySource {
	return newMockSource(time.Now)
}

func newMockSource(now func() time.Time) *mockSource {
	return &mockSource{start: now(), now: now}
}

func (m *mockSource) Next() (Gravity, error) {
	elapsed := m.now().Sub(m.start).Seconds()

	spin := elapsed * 0.5
	// pi/2 is standing on an edge, 0 is lying face up.
	tilt := math.Pi / 2 * (0.5 + 0.5*math.Cos(elapsed*0.2))
	edge := math.Sin(tilt)

	return Gravity{
		X: edge * math.Sin(spin),
		Y: edge * math.Cos(spin),
		Z: math.Cos(tilt),
	}, nil
}
