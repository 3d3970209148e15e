package host

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/deviceinfo/internal/device"
	"github.com/relabs-tech/deviceinfo/internal/orientation"
)

// scriptSource replays readings and then repeats the last one.
type scriptSource struct {
	mu    sync.Mutex
	steps []orientation.Gravity
	errAt int
	n     int
}

func (s *scriptSource) Next() (orientation.Gravity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	if s.errAt > 0 && s.n == s.errAt {
		return orientation.Gravity{}, errors.New("spi timeout")
	}
	if len(s.steps) == 0 {
		return orientation.Gravity{}, nil
	}
	g := s.steps[0]
	if len(s.steps) > 1 {
		s.steps = s.steps[1:]
	}
	return g, nil
}

type collector struct {
	mu     sync.Mutex
	events []device.Event
}

func (c *collector) add(ev device.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collector) devices() []orientation.RawDevice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]orientation.RawDevice, len(c.events))
	for i, ev := range c.events {
		out[i] = ev.Device
	}
	return out
}

func TestPollerEmitsOnChangeOnly(t *testing.T) {
	src := &scriptSource{steps: []orientation.Gravity{
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
		{X: 0, Y: 0, Z: 1},
		{X: -1, Y: 0, Z: 0},
	}}
	p := NewPoller("test", orientation.Phone, src, time.Millisecond, 0)

	var c collector
	sub, err := p.Subscribe(c.add)
	require.NoError(t, err)
	require.NoError(t, p.BeginNotifications())

	want := []orientation.RawDevice{
		orientation.RawDevicePortrait,
		orientation.RawDeviceFaceUp,
		orientation.RawDeviceLandscapeLeft,
	}
	require.Eventually(t, func() bool { return len(c.devices()) >= len(want) }, time.Second, time.Millisecond)

	p.EndNotifications()
	p.EndNotifications()
	sub.Cancel()

	assert.Equal(t, want, c.devices())

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Equal(t, orientation.RawInterfacePortrait, c.events[1].Interface, "flat keeps the UI where it was")
	assert.Equal(t, orientation.RawInterfaceLandscapeRight, c.events[2].Interface)
}

func TestPollerSkipsSampleErrors(t *testing.T) {
	src := &scriptSource{steps: []orientation.Gravity{{X: 0, Y: -1, Z: 0}}, errAt: 1}
	p := NewPoller("test", orientation.Phone, src, time.Millisecond, 0)

	var c collector
	_, err := p.Subscribe(c.add)
	require.NoError(t, err)
	require.NoError(t, p.BeginNotifications())
	defer p.EndNotifications()

	require.Eventually(t, func() bool { return len(c.devices()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, orientation.RawDevicePortraitUpsideDown, c.devices()[0])
}

func TestPollerCurrent(t *testing.T) {
	src := &scriptSource{steps: []orientation.Gravity{{X: 1, Y: 0, Z: 0}}}
	p := NewPoller("test", orientation.Tablet, src, time.Millisecond, 0)

	iface, dev, ok := p.Current()
	assert.True(t, ok)
	assert.Equal(t, orientation.RawDeviceLandscapeRight, dev)
	assert.Equal(t, orientation.RawInterfaceLandscapeLeft, iface)

	bad := NewPoller("test", orientation.Tablet, &scriptSource{errAt: 1}, time.Millisecond, 0)
	_, _, ok = bad.Current()
	assert.False(t, ok)
}

func TestPollerRejectsSecondSubscriber(t *testing.T) {
	p := NewPoller("test", orientation.Phone, &scriptSource{}, time.Millisecond, 0)
	sub, err := p.Subscribe(func(device.Event) {})
	require.NoError(t, err)

	_, err = p.Subscribe(func(device.Event) {})
	assert.Error(t, err)

	sub.Cancel()
	_, err = p.Subscribe(func(device.Event) {})
	assert.NoError(t, err)
}

func TestPollerWithManager(t *testing.T) {
	src := &scriptSource{steps: []orientation.Gravity{
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: -1},
		{X: 1, Y: 0, Z: 0},
	}}
	p := NewPoller("test", orientation.Phone, src, time.Millisecond, 0)
	m := device.NewManager(p)
	require.NoError(t, m.Start())
	defer m.Stop()

	// Current consumed the portrait reading.
	assert.Equal(t, orientation.CoarsePortrait, m.State().Coarse)

	require.Eventually(t, func() bool {
		return m.State().Detail == orientation.DetailLandscapeRight
	}, time.Second, time.Millisecond)
	assert.Equal(t, orientation.CoarseLandscape, m.State().Coarse)
}

func TestStaticHost(t *testing.T) {
	h := NewStatic(orientation.Desktop)
	m := device.NewManager(h)
	require.NoError(t, m.Start())
	m.Stop()
	m.Stop()
	assert.Equal(t, orientation.NotApplicableState(orientation.Desktop), m.State())
}
