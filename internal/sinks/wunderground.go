// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sinks

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/relabs-tech/weather_station/internal/env"
)

// DefaultWUURL is the Weather Underground personal weather station endpoint.
const DefaultWUURL = "https://weatherstation.wunderground.com/weatherstation/updateweatherstation.php"

const softwareType = "relabs-weather-station"

// maxBody caps how much of the response is read for the log.
const maxBody = 1024

// WeatherUnderground uploads readings as an updateraw GET in imperial units.
// Only transport errors and non-2xx statuses count as failures; the body is
// logged, not parsed.
type WeatherUnderground struct {
	client     *http.Client
	endpoint   string
	stationID  string
	stationKey string
}

// NewWeatherUnderground returns a sink for the station. client may be nil.
func NewWeatherUnderground(endpoint, stationID, stationKey string, client *http.Client) *WeatherUnderground {
	if endpoint == "" {
		endpoint = DefaultWUURL
	}
	if client == nil {
		client = &http.Client{}
	}
	return &WeatherUnderground{
		client:     client,
		endpoint:   endpoint,
		stationID:  stationID,
		stationKey: stationKey,
	}
}

func (w *WeatherUnderground) Name() string { return "wu" }

// Query returns the URL parameters for r.
func (w *WeatherUnderground) Query(r env.Reading) url.Values {
	q := url.Values{}
	q.Set("action", "updateraw")
	q.Set("ID", w.stationID)
	q.Set("PASSWORD", w.stationKey)
	q.Set("dateutc", "now")
	q.Set("tempf", strconv.FormatFloat(r.TemperatureF(), 'f', 1, 64))
	q.Set("humidity", strconv.FormatFloat(r.Humidity, 'f', 1, 64))
	q.Set("baromin", strconv.FormatFloat(r.PressureInHg(), 'f', 2, 64))
	q.Set("softwaretype", softwareType)
	return q
}

func (w *WeatherUnderground) Deliver(ctx context.Context, r env.Reading) error {
	target := w.endpoint + "?" + w.Query(r).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("wu: request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("wu: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("wu: read response: %w", err)
	}
	log.Printf("upload: wu response (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("wu: unexpected status %s", resp.Status)
	}
	return nil
}

func (w *WeatherUnderground) Close(context.Context) error {
	w.client.CloseIdleConnections()
	return nil
}
