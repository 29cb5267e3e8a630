package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/weather_station/internal/env"
)

// FormatReading renders one reading as a console line.
func FormatReading(r env.Reading) string {
	line := fmt.Sprintf("[%s] %s  T=%5.1fC (%5.1fF)  P=%7.1f hPa  H=%5.1f%%  heading=%5.1f°",
		r.UploadedAtLocal, r.Device, r.TemperatureC, r.TemperatureF(), r.Pressure, r.Humidity, r.Compass)
	if r.Location != nil {
		line += fmt.Sprintf("  lat=%.6f lon=%.6f", r.Location.Latitude, r.Location.Longitude)
	}
	return line
}

// watchHandler prints every reading published on the topic to w.
func watchHandler(w io.Writer) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		var r env.Reading
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Printf("watch: reading unmarshal error on %s: %v", msg.Topic(), err)
			return
		}
		fmt.Fprintln(w, FormatReading(r))
	}
}

// RunWatch subscribes to the station's MQTT topic and prints readings until
// ctx is done.
func RunWatch(ctx context.Context, broker, clientID, topic string, w io.Writer) error {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("watch: connect %s: %w", broker, token.Error())
	}
	defer client.Disconnect(250)
	log.Printf("watch: connected to MQTT broker at %s", broker)

	token := client.Subscribe(topic, 1, watchHandler(w))
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("watch: subscribe %s: %w", topic, token.Error())
	}
	log.Printf("watch: subscribed to %s", topic)

	<-ctx.Done()
	log.Println("watch: shutting down")
	return nil
}
