// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package host

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/deviceinfo/internal/device"
	"github.com/relabs-tech/deviceinfo/internal/orientation"
)

// TypeDORI is the proprietary sentence a serial sensor hub sends on every
// orientation change:
//
//	$PDORI,<interface>,<device>*hh
//
// with the same orientation names as the MQTT feed.
const TypeDORI = "DORI"

// DORI is a parsed $PDORI sentence.
type DORI struct {
	nmea.BaseSentence
	Interface string
	Device    string
}

func init() {
	if err := nmea.RegisterParser(TypeDORI, parseDORI); err != nil {
		panic(fmt.Sprintf("register %s parser: %v", TypeDORI, err))
	}
}

func parseDORI(s nmea.BaseSentence) (nmea.Sentence, error) {
	p := nmea.NewParser(s)
	return DORI{
		BaseSentence: s,
		Interface:    p.String(0, "interface"),
		Device:       p.String(1, "device"),
	}, p.Err()
}

// ParseHubLine parses one line from the sensor hub. ok is false for
// anything that is not a valid $PDORI sentence.
func ParseHubLine(line string) (ev device.Event, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return device.Event{}, false
	}
	sentence, err := nmea.Parse(line)
	if err != nil {
		return device.Event{}, false
	}
	d, isDORI := sentence.(DORI)
	if !isDORI {
		return device.Event{}, false
	}
	return device.Event{
		Interface: orientation.ParseRawInterface(d.Interface),
		Device:    orientation.ParseRawDevice(d.Device),
		At:        time.Now(),
	}, true
}

// Serial is a host whose sensor hub reports orientation changes over a
// serial line.
type Serial struct {
	class orientation.DeviceClass
	port  string
	open  func() (io.ReadWriteCloser, error)

	feed

	mu   sync.Mutex
	rwc  io.ReadWriteCloser
	stop chan struct{}
	done chan struct{}
}

// readTimeout bounds each read on the port, so the read loop notices
// EndNotifications on a silent hub. go-serial wants a multiple of 100ms.
const readTimeout = 100 // milliseconds

// NewSerial opens portName at baud on BeginNotifications (8N1).
func NewSerial(class orientation.DeviceClass, portName string, baud int) *Serial {
	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              uint(baud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       0,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: readTimeout,
	}
	return &Serial{
		class: class,
		port:  portName,
		open:  func() (io.ReadWriteCloser, error) { return serial.Open(opts) },
	}
}

// Class is the configured device class; the hub is the sensor.
func (s *Serial) Class() orientation.DeviceClass { return s.class }
func (s *Serial) HasOrientationSensor() bool     { return true }

// Current reports unknown: the hub only speaks when something changes.
func (s *Serial) Current() (orientation.RawInterface, orientation.RawDevice, bool) {
	return orientation.RawInterfaceUnknown, orientation.RawDeviceUnknown, false
}

// BeginNotifications opens the port and starts reading sentences.
func (s *Serial) BeginNotifications() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rwc != nil {
		return nil
	}

	rwc, err := s.open()
	if err != nil {
		return fmt.Errorf("host serial: open %s: %w", s.port, err)
	}
	s.rwc = rwc
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.readLoop(rwc, s.stop, s.done)
	log.Printf("host serial: sensor hub opened on %s", s.port)
	return nil
}

// EndNotifications stops the read loop and closes the port. The loop sees
// the stop on its next read timeout at the latest.
func (s *Serial) EndNotifications() {
	s.mu.Lock()
	rwc, stop, done := s.rwc, s.stop, s.done
	s.rwc, s.stop, s.done = nil, nil, nil
	s.mu.Unlock()

	if rwc == nil {
		return
	}
	close(stop)
	if err := rwc.Close(); err != nil {
		log.Printf("host serial: close %s: %v", s.port, err)
	}
	<-done
}

// Subscribe registers the single receiver of hub events.
func (s *Serial) Subscribe(fn func(device.Event)) (device.Subscription, error) {
	return s.subscribe(fn, nil)
}

// readLoop delivers one event per complete $PDORI line. A read timeout
// surfaces as io.EOF; the partial line is kept and reading resumes unless
// stop is closed.
func (s *Serial) readLoop(r io.Reader, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	reader := bufio.NewReader(r)
	var pending strings.Builder
	for {
		select {
		case <-stop:
			return
		default:
		}

		chunk, err := reader.ReadString('\n')
		pending.WriteString(chunk)
		if err == nil {
			if ev, ok := ParseHubLine(pending.String()); ok {
				s.deliver(ev)
			}
			pending.Reset()
			continue
		}
		if errors.Is(err, io.EOF) {
			continue
		}

		select {
		case <-stop:
		default:
			if !errors.Is(err, io.ErrClosedPipe) && !errors.Is(err, os.ErrClosed) {
				log.Printf("host serial: read error: %v", err)
			}
		}
		return
	}
}
