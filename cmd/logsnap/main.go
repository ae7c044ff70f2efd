package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/downfa11-org/logsnap/pkg/config"
	"github.com/downfa11-org/logsnap/pkg/export"
	"github.com/downfa11-org/logsnap/pkg/kafka"
	"github.com/downfa11-org/logsnap/pkg/metrics"
	"github.com/downfa11-org/logsnap/pkg/snapshot"
	"github.com/downfa11-org/logsnap/pkg/types"
	"github.com/downfa11-org/logsnap/util"
)

func main() {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	util.Info("🚀 Snapshotting %d topic(s) from brokers %v", len(cfg.Topics), cfg.Brokers)

	if cfg.EnableExporter {
		metrics.StartMetricsServer(cfg.ExporterPort)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		util.Warn("Received %v, cancelling snapshot", sig)
		cancel()
	}()

	factory := kafka.NewFactory(cfg.Brokers, cfg.MetadataTimeout())
	exporter, err := export.New(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize exporter: %v", err)
	}

	processor := snapshot.NewProcessor(cfg, factory, exporter)

	started := time.Now()
	if err := processor.Run(ctx); err != nil {
		if types.IsCancellation(err) {
			util.Warn("Snapshot cancelled after %v", time.Since(started).Round(time.Millisecond))
			os.Exit(130)
		}
		log.Fatalf("❌ Snapshot run failed: %v", err)
	}
	util.Info("✅ Snapshot run finished in %v", time.Since(started).Round(time.Millisecond))
}
