// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/weather_station/internal/env"
)

// MQTT publishes each reading as JSON on one topic (QoS 1, not retained).
type MQTT struct {
	client mqtt.Client
	topic  string
}

// NewMQTT starts connecting to broker in the background. The client keeps
// retrying, so a broker that is down at startup only fails deliveries.
func NewMQTT(broker, clientID, topic string) *MQTT {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOnConnectHandler(func(mqtt.Client) {
			log.Printf("upload: mqtt connected to %s", broker)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Printf("upload: mqtt connection lost: %v", err)
		})

	client := mqtt.NewClient(opts)
	client.Connect()
	return newMQTT(client, topic)
}

func newMQTT(client mqtt.Client, topic string) *MQTT {
	return &MQTT{client: client, topic: topic}
}

func (m *MQTT) Name() string { return "mqtt" }

func (m *MQTT) Deliver(ctx context.Context, r env.Reading) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("mqtt: marshal: %w", err)
	}

	token := m.client.Publish(m.topic, 1, false, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt: publish %s: %w", m.topic, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mqtt: publish %s: %w", m.topic, ctx.Err())
	}
}

func (m *MQTT) Close(context.Context) error {
	m.client.Disconnect(250)
	return nil
}
