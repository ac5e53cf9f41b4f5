package events

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// Mute transitions are published so signage displays on the same broker can
// show a "prayer in progress" panel. Publishing is optional; when no broker
// is configured every call is a no-op.

var mqttClient mqtt.Client

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

// Connect initializes the package-level MQTT client.
func Connect(brokerURL, clientID string) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	mqttClient = mqtt.NewClient(opts)
	if token := mqttClient.Connect(); token.Wait() && token.Error() != nil {
		mqttClient = nil
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return nil
}

func Enabled() bool {
	return mqttClient != nil
}

func Disconnect() {
	if mqttClient == nil {
		return
	}
	mqttClient.Disconnect(250)
	mqttClient = nil
}

// MuteEvent is the payload published on zones/<zone>/mute.
type MuteEvent struct {
	ZoneID     string    `json:"zone_id"`
	ScheduleID int       `json:"schedule_id"`
	Prayer     string    `json:"prayer"`
	Action     string    `json:"action"` // "mute" or "unmute"
	Volume     int       `json:"volume"`
	At         time.Time `json:"at"`
}

// PublishMuteEvent fires and forgets one transition event.
func PublishMuteEvent(ev MuteEvent) {
	if mqttClient == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal mute event")
		return
	}
	topic := fmt.Sprintf("zones/%s/mute", ev.ZoneID)
	token := mqttClient.Publish(topic, 1, false, payload)
	token.Wait()
	if token.Error() != nil {
		log.Warn().Err(token.Error()).Str("topic", topic).Msg("failed to publish mute event")
	}
}
