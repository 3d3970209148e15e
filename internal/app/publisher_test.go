package app

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/deviceinfo/internal/device"
	"github.com/relabs-tech/deviceinfo/internal/host"
	"github.com/relabs-tech/deviceinfo/internal/orientation"
)

type doneToken struct{}

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (doneToken) Error() error { return nil }

type published struct {
	topic    string
	retained bool
	payload  []byte
}

// recordingClient records publishes; the rest of mqtt.Client is unused.
type recordingClient struct {
	mqtt.Client

	mu   sync.Mutex
	msgs []published
}

func (c *recordingClient) Publish(topic string, _ byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, published{topic: topic, retained: retained, payload: payload.([]byte)})
	return doneToken{}
}

func (c *recordingClient) sent() []published {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]published(nil), c.msgs...)
}

type fakeMessage struct {
	mqtt.Message
	payload []byte
}

func (m fakeMessage) Payload() []byte { return m.payload }

func TestStatePublisherPublishesEveryChange(t *testing.T) {
	h, m := startPushManager(t, orientation.Phone)
	client := &recordingClient{}
	p := NewStatePublisher(client, "deviceinfo/state")
	unwatch := m.Watch(p.Publish)
	defer unwatch()

	h.emit(orientation.RawInterfacePortrait, orientation.RawDeviceFaceUp)
	h.emit(orientation.RawInterfacePortrait, orientation.RawDeviceFaceUp)
	h.emit(orientation.RawInterfaceLandscapeRight, orientation.RawDeviceLandscapeLeft)

	msgs := client.sent()
	require.Len(t, msgs, 3)
	for _, msg := range msgs {
		assert.Equal(t, "deviceinfo/state", msg.topic)
		assert.True(t, msg.retained)
	}

	var v StateView
	require.NoError(t, json.Unmarshal(msgs[2].payload, &v))
	assert.Equal(t, orientation.CoarseLandscape, v.Coarse)
	assert.Equal(t, "Landscape (landscapeLeft)", v.Label)
}

func TestEventForwarderRoundTrip(t *testing.T) {
	client := &recordingClient{}
	f := NewEventForwarder(client, "deviceinfo/host/orientation")
	f.Forward(device.Event{
		Interface: orientation.RawInterfaceLandscapeLeft,
		Device:    orientation.RawDeviceFaceDown,
		At:        time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
	})

	msgs := client.sent()
	require.Len(t, msgs, 1)
	ev, err := host.DecodeEvent(msgs[0].payload)
	require.NoError(t, err)
	assert.Equal(t, orientation.RawInterfaceLandscapeLeft, ev.Interface)
	assert.Equal(t, orientation.RawDeviceFaceDown, ev.Device)
}

func TestConsoleMQTTHandler(t *testing.T) {
	var lines []string
	handle := stateHandler(func(line string) { lines = append(lines, line) })

	payload, err := json.Marshal(newStateView(orientation.State{
		Device:    orientation.Tablet,
		Interface: orientation.InterfacePortraitUpsideDown,
		Coarse:    orientation.CoarsePortrait,
		Detail:    orientation.DetailPortraitUpsideDown,
	}))
	require.NoError(t, err)

	handle(nil, fakeMessage{payload: payload})
	handle(nil, fakeMessage{payload: []byte("{")})

	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "tablet-icon")
	assert.Contains(t, lines[0], "Portrait (portraitUpsideDown)")
	assert.Contains(t, lines[0], "UI: Portrait Upside Down")
}
