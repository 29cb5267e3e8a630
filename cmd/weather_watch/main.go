package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/weather_station/internal/app"
	"github.com/relabs-tech/weather_station/internal/config"
)

func main() {
	configPath := flag.String("config", "weather_config.txt", "path to the KEY=VALUE config file")
	flag.Parse()

	log.Println("starting weather station watcher (MQTT subscriber)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()
	if cfg.MQTTBroker == "" {
		log.Fatalf("MQTT_BROKER is required to watch readings")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunWatch(ctx, cfg.MQTTBroker, cfg.MQTTClientID+"-watch", cfg.MQTTTopic, os.Stdout); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
