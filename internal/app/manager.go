package app

import (
	"fmt"
	"log"
	"sync"

	"github.com/relabs-tech/deviceinfo/internal/config"
	"github.com/relabs-tech/deviceinfo/internal/device"
	"github.com/relabs-tech/deviceinfo/internal/host"
	"github.com/relabs-tech/deviceinfo/internal/orientation"
)

// startManager builds the configured host and starts a Manager on it.
// Callers own the returned Manager and must Stop it.
func startManager(cfg *config.Config) (*device.Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config not loaded")
	}

	h, err := host.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s host: %w", cfg.HostKind, err)
	}

	m := device.NewManager(h, device.WithPolicy(cfg.Policy))
	if err := m.Start(); err != nil {
		return nil, err
	}
	log.Printf("app: %s host started (%s, policy %s)", cfg.HostKind, h.Class(), cfg.Policy)
	return m, nil
}

// followState calls fn with the current state and then with every change.
// The watcher is registered before the snapshot is read, and the snapshot
// is skipped once a change has been shown, so fn never ends on a stale
// state.
func followState(m *device.Manager, fn func(orientation.State)) (cancel func()) {
	var (
		mu      sync.Mutex
		changed bool
	)
	cancel = m.Watch(func(s orientation.State) {
		mu.Lock()
		defer mu.Unlock()
		changed = true
		fn(s)
	})

	mu.Lock()
	defer mu.Unlock()
	if !changed {
		fn(m.State())
	}
	return cancel
}
