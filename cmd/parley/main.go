package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mkhalish/parley/pkg/parley"
	"github.com/mkhalish/parley/pkg/transports"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	dialTo := flag.String("dial_to", "", "destination number for outbound call")
	dialFrom := flag.String("dial_from", "", "caller ID for outbound call")
	dialURL := flag.String("dial_url", "", "override voice URL for outbound call")
	flag.Parse()

	cfg, err := parley.LoadConfig(*configPath)
	if err != nil {
		slog.Error("config_load_failed", "error", err.Error())
		os.Exit(1)
	}

	transport, err := parley.BuildTransport(cfg)
	if err != nil {
		slog.Error("transport_build_failed", "error", err.Error())
		os.Exit(1)
	}

	app, err := parley.NewEngine(parley.EngineOptions{
		Config:    cfg,
		Providers: parley.DefaultProviderRegistry(),
		Transport: transport,
	})
	if err != nil {
		slog.Error("engine_build_failed", "error", err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Start(ctx); err != nil {
		slog.Error("engine_start_failed", "error", err.Error())
		os.Exit(1)
	}

	if *dialTo != "" && *dialFrom != "" {
		if dialer, ok := transport.(transports.OutboundDialer); ok {
			callSID, err := dialer.Dial(ctx, *dialTo, *dialFrom, *dialURL)
			if err != nil {
				slog.Error("outbound_dial_failed", "error", err.Error())
			} else {
				slog.Info("outbound_dial_started", "call_sid", callSID)
			}
		} else {
			slog.Warn("transport_no_outbound_dialer")
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	_ = app.Stop()
}
