package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/arung-agamani/denpa-radio/config"
	"github.com/arung-agamani/denpa-radio/internal/api"
	"github.com/arung-agamani/denpa-radio/internal/api/service"
	"github.com/arung-agamani/denpa-radio/internal/show"
	"github.com/arung-agamani/denpa-radio/internal/store"
	"github.com/arung-agamani/denpa-radio/internal/transport"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()

	slog.Info("Starting show scheduler",
		"port", cfg.Port,
		"snapshot_file", cfg.SnapshotFile,
		"ws_path", cfg.WSPath,
	)

	st, err := store.New(cfg.SnapshotFile)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}

	sink := show.NewErrSink()

	var lib *show.Libraries
	if st.Exists() {
		lib, err = st.Load(sink)
		if err != nil {
			slog.Error("Failed to load show snapshot", "error", err)
			os.Exit(1)
		}
	} else {
		lib = show.NewLibraries()
		slog.Info("No existing snapshot found, starting with empty libraries")
	}

	for _, w := range sink.Warnings() {
		slog.Warn("Validation warning on load", "kind", w.Kind, "subject", w.Subject, "message", w.Message)
	}

	broadcaster := transport.NewWSBroadcaster()
	out := transport.NewMultiSink(broadcaster)

	svc := service.NewShowService(lib, sink, st, out, cfg.LogLimit, cfg.RunIterationLimit)

	server := api.NewServer(cfg, svc, broadcaster)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		slog.Info("Shutdown signal received")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped")
}
