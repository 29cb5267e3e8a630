package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/relabs-tech/weather_station/internal/app"
	"github.com/relabs-tech/weather_station/internal/config"
	"github.com/relabs-tech/weather_station/internal/env"
	"github.com/relabs-tech/weather_station/internal/sensors"
	"github.com/relabs-tech/weather_station/internal/thermal"
)

// sensor_dump prints one raw sample from the configured board as JSON,
// plus the compensated temperature, for checking the wiring.
func main() {
	configPath := flag.String("config", "weather_config.txt", "path to the KEY=VALUE config file")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	board, err := app.OpenBoard(cfg)
	if err != nil {
		log.Fatalf("board: %v", err)
	}
	defer board.Close()

	raw, err := sensors.NewSampler(board, sensors.CPUTemp{Path: cfg.CPUTempPath}).Sample(time.Now())
	if err != nil {
		log.Fatalf("sample: %v", err)
	}

	out := struct {
		Raw          env.RawSample `json:"raw"`
		Compensated  float64       `json:"compensatedC"`
		CompensatedF float64       `json:"compensatedF"`
		GravityG     float64       `json:"gravityG"`        // ~1 when the accelerometer is healthy
		FieldUT      float64       `json:"fieldStrengthUT"` // ~25-65 for the Earth's field
	}{
		Raw:         raw,
		Compensated: thermal.Compensate(raw.TempFromHumidity, raw.TempFromPressure, raw.CPUTemp),
		GravityG:    raw.AccelRaw.Norm(),
		FieldUT:     raw.CompassRaw.Norm(),
	}
	out.CompensatedF = env.CToF(out.Compensated)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("encode: %v", err)
	}
}
