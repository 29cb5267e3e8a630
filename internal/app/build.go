package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/relabs-tech/weather_station/internal/config"
	"github.com/relabs-tech/weather_station/internal/display"
	"github.com/relabs-tech/weather_station/internal/metrics"
	"github.com/relabs-tech/weather_station/internal/schedule"
	"github.com/relabs-tech/weather_station/internal/sensors"
	"github.com/relabs-tech/weather_station/internal/sinks"
	"github.com/relabs-tech/weather_station/internal/upload"
)

// OpenBoard returns the board selected by SENSOR_BOARD.
func OpenBoard(cfg *config.Config) (sensors.Board, error) {
	if cfg.SensorBoard == "mock" {
		log.Println("station: using mock sensor board")
		return sensors.NewMockBoard(), nil
	}
	return sensors.OpenSenseHat(cfg.I2CBus)
}

// OpenDisplay returns the display selected by DISPLAY.
func OpenDisplay(cfg *config.Config) (display.Display, error) {
	switch cfg.Display {
	case "ssd1306":
		return display.NewOLED(cfg.I2CBus, cfg.DisplayRotation)
	case "none":
		return display.None{}, nil
	default:
		return display.NewConsole(os.Stdout), nil
	}
}

// OpenSinks builds a sink for every enabled target. On error the sinks
// already opened are closed.
func OpenSinks(ctx context.Context, cfg *config.Config) ([]upload.Sink, error) {
	var out []upload.Sink
	fail := func(err error) ([]upload.Sink, error) {
		for _, s := range out {
			s.Close(ctx)
		}
		return nil, err
	}

	for _, t := range cfg.Targets() {
		switch t.Name {
		case config.TargetMongoDB:
			m, err := sinks.NewMongo(cfg.MongoURL, cfg.MongoDatabase, cfg.MongoCollection)
			if err != nil {
				return fail(err)
			}
			out = append(out, m)
		case config.TargetWU:
			client := &http.Client{Timeout: cfg.UploadTimeout}
			out = append(out, sinks.NewWeatherUnderground(cfg.WUURL, cfg.WUStationID, cfg.WUStationKey, client))
		case config.TargetMQTT:
			out = append(out, sinks.NewMQTT(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic))
		case config.TargetKafka:
			out = append(out, sinks.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic))
		case config.TargetPostgres:
			p, err := sinks.NewPostgres(ctx, cfg.PostgresURL, cfg.PostgresTable)
			if err != nil {
				return fail(err)
			}
			out = append(out, p)
		default:
			return fail(fmt.Errorf("no sink for target %q", t.Name))
		}
		log.Printf("upload: %s enabled, every %d min", t.Name, t.IntervalMinutes)
	}
	return out, nil
}

// Build opens the hardware and sinks described by cfg and returns a Station
// ready to Run. The CPU temperature is probed once so a missing thermal zone
// fails at startup.
func Build(ctx context.Context, cfg *config.Config) (*Station, error) {
	cpu := sensors.CPUTemp{Path: cfg.CPUTempPath}
	if _, err := cpu.CPUTemp(); err != nil {
		return nil, err
	}

	board, err := OpenBoard(cfg)
	if err != nil {
		return nil, err
	}

	disp, err := OpenDisplay(cfg)
	if err != nil {
		board.Close()
		return nil, err
	}

	sinkList, err := OpenSinks(ctx, cfg)
	if err != nil {
		disp.Close()
		board.Close()
		return nil, err
	}

	var targets []schedule.Target
	for _, t := range cfg.Targets() {
		targets = append(targets, schedule.Target{Name: t.Name, IntervalMinutes: t.IntervalMinutes})
	}

	st, err := NewStation(Deps{
		DeviceID:      cfg.DeviceID,
		Board:         board,
		CPU:           cpu,
		Clock:         schedule.RealClock(),
		Sinks:         sinkList,
		Targets:       targets,
		Display:       disp,
		ScrollSpeed:   cfg.DisplayScrollSpeed,
		Rotation:      cfg.DisplayRotation,
		UploadTimeout: cfg.UploadTimeout,
		ShutdownGrace: cfg.ShutdownGrace,
		Metrics:       metrics.New(),
		WebServerAddr: cfg.WebServerAddr,
		GPSSerialPort: cfg.GPSSerialPort,
		GPSBaudRate:   cfg.GPSBaudRate,
	})
	if err != nil {
		for _, s := range sinkList {
			s.Close(ctx)
		}
		disp.Close()
		board.Close()
		return nil, err
	}
	return st, nil
}
