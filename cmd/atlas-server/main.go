// atlas-server serves the analysis HTTP API: POST a structural record,
// explore the resolved graph through view, snapshot, event, and GraphQL
// endpoints.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/codeatlas/codeatlas/pkg/api"
	"github.com/codeatlas/codeatlas/pkg/config"
	"github.com/codeatlas/codeatlas/pkg/layout"
	"github.com/codeatlas/codeatlas/pkg/logging"
	"github.com/codeatlas/codeatlas/pkg/metrics"
	"github.com/codeatlas/codeatlas/pkg/server"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "atlas-server: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	log := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(cfg.Log.Level))

	srv, err := api.NewServer(api.Options{
		Logger:  log,
		Metrics: metrics.DefaultRegistry(),
		Layout: layout.Config{
			Width:    cfg.Layout.Width,
			Height:   cfg.Layout.Height,
			MaxSteps: cfg.Layout.MaxSteps,
			Seed:     cfg.Layout.Seed,
		},
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	})
	if err != nil {
		log.Error("server construction failed", logging.Error(err))
		os.Exit(1)
	}

	gs := server.NewGracefulServer(cfg.Server.Addr, srv.Handler(),
		server.WithLogger(log),
		server.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		server.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
	)
	if err := gs.Start(); err != nil {
		log.Error("server failed", logging.Error(err))
		os.Exit(1)
	}
}
