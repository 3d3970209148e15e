// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package host

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/relabs-tech/deviceinfo/internal/device"
	"github.com/relabs-tech/deviceinfo/internal/orientation"
)

// RawEvent is the JSON payload of a host orientation event on MQTT and the
// wire form of device.Event.
type RawEvent struct {
	Interface string    `json:"interface"`
	Device    string    `json:"device"`
	Time      time.Time `json:"time,omitempty"`
}

// DecodeEvent parses a RawEvent payload. Unrecognized orientation names
// become unknown; only malformed JSON is an error.
func DecodeEvent(payload []byte) (device.Event, error) {
	var raw RawEvent
	if err := json.Unmarshal(payload, &raw); err != nil {
		return device.Event{}, fmt.Errorf("decode orientation event: %w", err)
	}
	at := raw.Time
	if at.IsZero() {
		at = time.Now()
	}
	return device.Event{
		Interface: orientation.ParseRawInterface(raw.Interface),
		Device:    orientation.ParseRawDevice(raw.Device),
		At:        at,
	}, nil
}

// EncodeEvent is the inverse of DecodeEvent.
func EncodeEvent(ev device.Event) ([]byte, error) {
	return json.Marshal(RawEvent{
		Interface: ev.Interface.String(),
		Device:    ev.Device.String(),
		Time:      ev.At,
	})
}

// MQTT is a host whose orientation feed arrives on an MQTT topic, e.g. a
// phone or tablet bridging its sensor notifications to a broker.
type MQTT struct {
	class    orientation.DeviceClass
	broker   string
	clientID string
	topic    string

	newClient func(*mqtt.ClientOptions) mqtt.Client

	feed

	mu     sync.Mutex
	client mqtt.Client
}

// NewMQTT returns a host that follows topic on broker. clientID gets a
// random suffix on connect.
func NewMQTT(class orientation.DeviceClass, broker, clientID, topic string) *MQTT {
	return &MQTT{
		class:     class,
		broker:    broker,
		clientID:  clientID,
		topic:     topic,
		newClient: mqtt.NewClient,
	}
}

// Class is the configured device class; an MQTT feed always has a sensor.
func (m *MQTT) Class() orientation.DeviceClass { return m.class }
func (m *MQTT) HasOrientationSensor() bool     { return true }

// Current cannot query a remote feed synchronously, so it reports unknown.
// A retained message on the topic arrives as the first event instead.
func (m *MQTT) Current() (orientation.RawInterface, orientation.RawDevice, bool) {
	return orientation.RawInterfaceUnknown, orientation.RawDeviceUnknown, false
}

// BeginNotifications connects to the broker.
func (m *MQTT) BeginNotifications() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client != nil {
		return nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(m.broker).
		SetClientID(m.clientID + "-" + uuid.NewString()[:8]).
		SetOrderMatters(true)

	client := m.newClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect error: %w", token.Error())
	}
	m.client = client
	log.Printf("host mqtt: connected to MQTT broker at %s", m.broker)
	return nil
}

// EndNotifications disconnects from the broker.
func (m *MQTT) EndNotifications() {
	m.mu.Lock()
	client := m.client
	m.client = nil
	m.mu.Unlock()

	if client != nil {
		client.Disconnect(250)
		log.Printf("host mqtt: disconnected from %s", m.broker)
	}
}

// Subscribe registers fn and subscribes to the feed topic. Cancelling
// unsubscribes from the topic.
func (m *MQTT) Subscribe(fn func(device.Event)) (device.Subscription, error) {
	m.mu.Lock()
	client := m.client
	m.mu.Unlock()
	if client == nil {
		return nil, fmt.Errorf("host mqtt: not connected")
	}

	sub, err := m.subscribe(fn, func() {
		if token := client.Unsubscribe(m.topic); token.Wait() && token.Error() != nil {
			log.Printf("host mqtt: unsubscribe %s: %v", m.topic, token.Error())
		}
	})
	if err != nil {
		return nil, err
	}

	token := client.Subscribe(m.topic, 0, m.onMessage)
	token.Wait()
	if token.Error() != nil {
		sub.Cancel()
		return nil, fmt.Errorf("host mqtt: subscribe %s: %w", m.topic, token.Error())
	}
	log.Printf("host mqtt: subscribed to MQTT topic %s", m.topic)
	return sub, nil
}

func (m *MQTT) onMessage(_ mqtt.Client, msg mqtt.Message) {
	ev, err := DecodeEvent(msg.Payload())
	if err != nil {
		log.Printf("host mqtt: %v", err)
		return
	}
	m.deliver(ev)
}
