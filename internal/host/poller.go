// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package host

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/relabs-tech/deviceinfo/internal/device"
	"github.com/relabs-tech/deviceinfo/internal/orientation"
)

// Poller is a host built on a gravity source. While notifications are on
// it samples the source on a ticker and emits an event each time the raw
// device pose changes. The interface follows the device the way a phone
// UI rotates.
type Poller struct {
	name      string
	class     orientation.DeviceClass
	src       orientation.GravitySource
	interval  time.Duration
	flatRatio float64

	feed

	mu    sync.Mutex
	iface orientation.RawInterface
	dev   orientation.RawDevice
	stop  chan struct{}
	done  chan struct{}
}

// NewPoller wraps src. flatRatio <= 0 uses orientation.DefaultFlatRatio.
func NewPoller(name string, class orientation.DeviceClass, src orientation.GravitySource, interval time.Duration, flatRatio float64) *Poller {
	return &Poller{
		name:      name,
		class:     class,
		src:       src,
		interval:  interval,
		flatRatio: flatRatio,
		iface:     orientation.RawInterfacePortrait,
		dev:       orientation.RawDeviceUnknown,
	}
}

// NewMock is a poller over the mock gravity sweep.
func NewMock(class orientation.DeviceClass, interval time.Duration) *Poller {
	return NewPoller("mock", class, orientation.NewMockSource(), interval, 0)
}

// NewIMU is a poller over an MPU9250 accelerometer on SPI.
func NewIMU(class orientation.DeviceClass, spiDev, csPin string, interval time.Duration, flatRatio float64) (*Poller, error) {
	src, err := orientation.NewIMUSource("orientation", spiDev, csPin)
	if err != nil {
		return nil, fmt.Errorf("host: %w", err)
	}
	return NewPoller("imu", class, src, interval, flatRatio), nil
}

// Class is the configured device class; a poller always has a sensor.
func (p *Poller) Class() orientation.DeviceClass { return p.class }
func (p *Poller) HasOrientationSensor() bool     { return true }

// Current takes one sample. The interface orientation is derived from it
// unless the pose is flat or unknown.
func (p *Poller) Current() (orientation.RawInterface, orientation.RawDevice, bool) {
	g, err := p.src.Next()
	if err != nil {
		log.Printf("host %s: sample error: %v", p.name, err)
		return orientation.RawInterfaceUnknown, orientation.RawDeviceUnknown, false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.dev = orientation.RawFromGravity(g, p.flatRatio)
	p.iface = orientation.InterfaceFor(p.dev, p.iface)
	return p.iface, p.dev, true
}

// BeginNotifications starts sampling every interval.
func (p *Poller) BeginNotifications() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		return nil
	}
	if p.interval <= 0 {
		return fmt.Errorf("host %s: sample interval must be positive", p.name)
	}
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.loop(p.stop, p.done)
	log.Printf("host %s: sampling every %s", p.name, p.interval)
	return nil
}

// EndNotifications stops sampling and waits for the loop to exit.
func (p *Poller) EndNotifications() {
	p.mu.Lock()
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Subscribe registers the single receiver of change events.
func (p *Poller) Subscribe(fn func(device.Event)) (device.Subscription, error) {
	return p.subscribe(fn, nil)
}

func (p *Poller) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case t := <-ticker.C:
			g, err := p.src.Next()
			if err != nil {
				log.Printf("host %s: sample error: %v", p.name, err)
				continue
			}
			raw := orientation.RawFromGravity(g, p.flatRatio)

			p.mu.Lock()
			changed := raw != p.dev
			p.dev = raw
			p.iface = orientation.InterfaceFor(raw, p.iface)
			ev := device.Event{Interface: p.iface, Device: raw, At: t}
			p.mu.Unlock()

			if changed {
				pose := orientation.ComputePoseFromAccel(g)
				log.Printf("host %s: raw=%s R=%.1f P=%.1f", p.name, raw, pose.Roll, pose.Pitch)
				p.deliver(ev)
			}
		}
	}
}
