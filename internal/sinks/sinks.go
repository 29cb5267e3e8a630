// Package sinks holds the upload destinations: a MongoDB document store,
// the Weather Underground HTTP API, an MQTT topic, a Kafka topic and a
// PostgreSQL table.
package sinks

import "github.com/relabs-tech/weather_station/internal/upload"

var (
	_ upload.Sink = (*Mongo)(nil)
	_ upload.Sink = (*WeatherUnderground)(nil)
	_ upload.Sink = (*MQTT)(nil)
	_ upload.Sink = (*Kafka)(nil)
	_ upload.Sink = (*Postgres)(nil)
)
