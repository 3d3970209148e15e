// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package device

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/relabs-tech/deviceinfo/internal/orientation"
)

// ErrAlreadyStarted is returned by a second call to Start.
var ErrAlreadyStarted = errors.New("device: manager already started")

// Manager owns the published device state. It queries the host once at
// Start, then applies every host event to the state in delivery order and
// hands the result to its watchers.
type Manager struct {
	host       Host
	classifier orientation.Classifier
	logger     *log.Logger

	mu        sync.RWMutex
	state     orientation.State
	started   bool
	active    bool
	notifying bool
	sub       Subscription

	// deliverMu serializes event handling, watcher callbacks included, so
	// watchers see states in the order events arrived.
	deliverMu sync.Mutex

	watchMu  sync.Mutex
	watchers []watcher
	nextID   uint64
}

type watcher struct {
	id uint64
	fn func(orientation.State)
}

// Option configures a Manager.
type Option func(*Manager)

// WithPolicy selects the coarse orientation update policy.
func WithPolicy(p orientation.Policy) Option {
	return func(m *Manager) { m.classifier.Policy = p }
}

// WithLogger routes manager logs to l.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a manager for host. Nothing touches the host until Start.
func NewManager(host Host, opts ...Option) *Manager {
	m := &Manager{
		host:   host,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start performs the one-shot host query and, on hosts with an orientation
// sensor, turns on notifications and subscribes to them. If anything fails
// after notifications were turned on they are turned off again before Start
// returns.
func (m *Manager) Start() error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true

	class := m.host.Class()
	if !m.host.HasOrientationSensor() {
		m.state = orientation.NotApplicableState(class)
		m.mu.Unlock()
		m.logger.Printf("device: type=%s, no orientation sensor", class)
		return nil
	}

	iface, dev, ok := m.host.Current()
	if !ok {
		iface, dev = orientation.RawInterfaceUnknown, orientation.RawDeviceUnknown
	}
	m.state = m.classifier.Initial(class, iface, dev)
	m.active = true
	m.notifying = true
	initial := m.state
	m.mu.Unlock()

	m.logger.Printf("device: type=%s interface=%s device=%s (%s)",
		initial.Device, initial.Interface, initial.Coarse, initial.Detail)

	if !m.isActive() {
		// Stopped before notifications were turned on.
		return nil
	}
	if err := m.host.BeginNotifications(); err != nil {
		m.release()
		return fmt.Errorf("device: begin orientation notifications: %w", err)
	}
	if !m.isActive() {
		// Stop ran during BeginNotifications and its EndNotifications came
		// too early to count.
		m.host.EndNotifications()
		return nil
	}

	sub, err := m.host.Subscribe(m.handle)
	if err != nil {
		m.release()
		return fmt.Errorf("device: subscribe to orientation changes: %w", err)
	}

	m.mu.Lock()
	if !m.active {
		// Stop ran while we were subscribing.
		m.mu.Unlock()
		sub.Cancel()
		m.host.EndNotifications()
		return nil
	}
	m.sub = sub
	m.mu.Unlock()
	return nil
}

func (m *Manager) isActive() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// Stop cancels the subscription and turns host notifications off. It is a
// no-op when nothing is active, including before Start.
func (m *Manager) Stop() {
	m.release()
}

func (m *Manager) release() {
	m.mu.Lock()
	sub := m.sub
	notifying := m.notifying
	m.sub = nil
	m.notifying = false
	m.active = false
	m.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
	if notifying {
		m.host.EndNotifications()
		m.logger.Printf("device: orientation notifications stopped")
	}
}

// Run starts the manager, blocks until ctx is done and stops it again.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.Start(); err != nil {
		return err
	}
	defer m.Stop()

	<-ctx.Done()
	return nil
}

// State returns the latest published state.
func (m *Manager) State() orientation.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Watch registers fn to be called with the new state after every event.
// Callbacks run on the host's delivery goroutine, one at a time.
func (m *Manager) Watch(fn func(orientation.State)) (cancel func()) {
	m.watchMu.Lock()
	m.nextID++
	id := m.nextID
	m.watchers = append(m.watchers, watcher{id: id, fn: fn})
	m.watchMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.watchMu.Lock()
			defer m.watchMu.Unlock()
			for i, w := range m.watchers {
				if w.id == id {
					m.watchers = append(m.watchers[:i:i], m.watchers[i+1:]...)
					return
				}
			}
		})
	}
}

// handle applies one host event. Events arriving while the manager is not
// active are dropped.
func (m *Manager) handle(ev Event) {
	m.deliverMu.Lock()
	defer m.deliverMu.Unlock()

	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return
	}
	m.state = m.classifier.Update(m.state, ev.Interface, ev.Device)
	next := m.state
	m.mu.Unlock()

	m.logger.Printf("device: interface=%s device=%s (%s)", next.Interface, next.Coarse, next.Detail)

	m.watchMu.Lock()
	ws := make([]watcher, len(m.watchers))
	copy(ws, m.watchers)
	m.watchMu.Unlock()

	for _, w := range ws {
		w.fn(next)
	}
}
