package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/relabs-tech/deviceinfo/internal/config"
	"github.com/relabs-tech/deviceinfo/internal/device"
	"github.com/relabs-tech/deviceinfo/internal/host"
	"github.com/relabs-tech/deviceinfo/internal/orientation"
)

// connectMQTT connects to the configured broker. role keeps client ids
// apart when several binaries share a broker.
func connectMQTT(cfg *config.Config, role string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(fmt.Sprintf("%s-%s-%s", cfg.MQTTClientID, role, uuid.NewString()[:8])).
		SetOrderMatters(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect error: %w", token.Error())
	}
	log.Printf("%s: connected to MQTT broker at %s", role, cfg.MQTTBroker)
	return client, nil
}

// StatePublisher publishes every state as a retained StateView.
type StatePublisher struct {
	client mqtt.Client
	topic  string
}

func NewStatePublisher(client mqtt.Client, topic string) *StatePublisher {
	return &StatePublisher{client: client, topic: topic}
}

func (p *StatePublisher) Publish(s orientation.State) {
	payload, err := json.Marshal(newStateView(s))
	if err != nil {
		log.Printf("publisher: json marshal error: %v", err)
		return
	}

	token := p.client.Publish(p.topic, 0, true, payload)
	token.Wait()
	if token.Error() != nil {
		log.Printf("publisher: publish %s: %v", p.topic, token.Error())
		return
	}
	log.Printf("publisher: published %s", payload)
}

// RunPublisher runs the configured host and publishes each state change on
// TOPIC_STATE until ctx is done.
func RunPublisher(ctx context.Context) error {
	cfg := config.Get()
	m, err := startManager(cfg)
	if err != nil {
		return err
	}
	defer m.Stop()

	client, err := connectMQTT(cfg, "publisher")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	p := NewStatePublisher(client, cfg.TopicState)
	unwatch := followState(m, p.Publish)
	defer unwatch()

	<-ctx.Done()
	log.Println("publisher: shutting down")
	return nil
}

// EventForwarder republishes raw host events on the host feed topic, so a
// remote process running HOST_KIND=mqtt classifies this device.
type EventForwarder struct {
	client mqtt.Client
	topic  string
}

func NewEventForwarder(client mqtt.Client, topic string) *EventForwarder {
	return &EventForwarder{client: client, topic: topic}
}

func (f *EventForwarder) Forward(ev device.Event) {
	payload, err := host.EncodeEvent(ev)
	if err != nil {
		log.Printf("event producer: encode error: %v", err)
		return
	}

	token := f.client.Publish(f.topic, 0, true, payload)
	token.Wait()
	if token.Error() != nil {
		log.Printf("event producer: publish %s: %v", f.topic, token.Error())
		return
	}
	log.Printf("event producer: %s interface=%s device=%s", f.topic, ev.Interface, ev.Device)
}

// RunEventProducer drives a local sensor host (mock, imu or serial) and
// forwards its raw events to TOPIC_HOST_EVENTS until ctx is done.
func RunEventProducer(ctx context.Context) error {
	cfg := config.Get()
	if cfg == nil {
		return fmt.Errorf("config not loaded")
	}
	switch cfg.HostKind {
	case config.HostMock, config.HostIMU, config.HostSerial:
	default:
		return fmt.Errorf("event producer needs a local sensor host, got HOST_KIND=%s", cfg.HostKind)
	}

	h, err := host.New(cfg)
	if err != nil {
		return err
	}

	client, err := connectMQTT(cfg, "event-producer")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	f := NewEventForwarder(client, cfg.TopicHostEvents)
	if iface, dev, ok := h.Current(); ok {
		f.Forward(device.Event{Interface: iface, Device: dev})
	}

	if err := h.BeginNotifications(); err != nil {
		return err
	}
	defer h.EndNotifications()

	sub, err := h.Subscribe(f.Forward)
	if err != nil {
		return err
	}
	defer sub.Cancel()

	<-ctx.Done()
	log.Println("event producer: shutting down")
	return nil
}
