package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/deviceinfo/internal/config"
)

func stateHandler(show func(string)) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		var v StateView
		if err := json.Unmarshal(msg.Payload(), &v); err != nil {
			log.Printf("console: state unmarshal error: %v", err)
			return
		}
		show(formatStateLine(v))
	}
}

// RunConsoleMQTT prints the states published on TOPIC_STATE until ctx is
// done.
func RunConsoleMQTT(ctx context.Context) error {
	cfg := config.Get()
	if cfg == nil {
		return fmt.Errorf("config not loaded")
	}

	client, err := connectMQTT(cfg, "console")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	token := client.Subscribe(cfg.TopicState, 0, stateHandler(func(line string) { fmt.Println(line) }))
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicState)

	<-ctx.Done()
	log.Println("console: shutting down")
	return nil
}
