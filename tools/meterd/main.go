package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"pfmon/internal/meter/acquisition"
	"pfmon/internal/meter/application"
	"pfmon/internal/meter/interfaces"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := application.LoadConfig()
	if err != nil {
		logger.Fatalf("meter config error: %v", err)
	}
	window := cfg.Window()

	if !cfg.Simulation.Enabled {
		logger.Fatal("no hardware sample reader wired; set simulation.enabled")
	}
	source, err := acquisition.NewSimulatedSource(window, cfg.Signals(), cfg.Simulation.NoiseCode, cfg.Simulation.Seed)
	if err != nil {
		logger.Fatalf("simulated source error: %v", err)
	}

	publisher, err := interfaces.NewHTTPPublisher(cfg.CollectorURL, []byte(cfg.IngestSecret))
	if err != nil {
		logger.Fatalf("snapshot publisher error: %v", err)
	}

	controller, err := application.NewController(window, source, publisher, cfg.PublishInterval, logger)
	if err != nil {
		logger.Fatalf("cycle controller error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Printf("meter started: collector=%s samples=%dx%d interval=%s publish_every=%s",
		cfg.CollectorURL, window.SamplesPerCycle, window.Cycles, window.SampleInterval(), cfg.PublishInterval)
	controller.Run(ctx)
	logger.Print("meter stopped")
}
