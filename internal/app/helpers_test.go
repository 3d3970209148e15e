package app

import (
	"io"
	"log"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/deviceinfo/internal/device"
	"github.com/relabs-tech/deviceinfo/internal/orientation"
)

// pushHost is a sensor host driven by the test through emit.
type pushHost struct {
	class orientation.DeviceClass

	mu sync.Mutex
	fn func(device.Event)
}

func (h *pushHost) Class() orientation.DeviceClass { return h.class }
func (h *pushHost) HasOrientationSensor() bool     { return true }
func (h *pushHost) Current() (orientation.RawInterface, orientation.RawDevice, bool) {
	return orientation.RawInterfacePortrait, orientation.RawDevicePortrait, true
}
func (h *pushHost) BeginNotifications() error { return nil }
func (h *pushHost) EndNotifications()         {}

func (h *pushHost) Subscribe(fn func(device.Event)) (device.Subscription, error) {
	h.mu.Lock()
	h.fn = fn
	h.mu.Unlock()
	return device.SubscriptionFunc(func() {
		h.mu.Lock()
		h.fn = nil
		h.mu.Unlock()
	}), nil
}

func (h *pushHost) emit(iface orientation.RawInterface, dev orientation.RawDevice) {
	h.mu.Lock()
	fn := h.fn
	h.mu.Unlock()
	if fn != nil {
		fn(device.Event{Interface: iface, Device: dev})
	}
}

func startPushManager(t *testing.T, class orientation.DeviceClass) (*pushHost, *device.Manager) {
	t.Helper()
	h := &pushHost{class: class}
	m := device.NewManager(h, device.WithLogger(log.New(io.Discard, "", 0)))
	require.NoError(t, m.Start())
	t.Cleanup(m.Stop)
	return h, m
}
