package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yanun0323/logs"

	"quotefeed/internal/config"
	"quotefeed/internal/feed"
	"quotefeed/internal/obs"
	"quotefeed/internal/quote"
)

func main() {
	if err := run(); err != nil {
		log.Printf("shmconsumer: %v", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to JSON config")
	statsInterval := flag.Duration("stats-interval", 10*time.Second, "interval between metrics log lines")
	verbose := flag.Bool("verbose", false, "log every consumed quote")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	metrics := obs.New()
	consumer, err := feed.NewShmConsumer(cfg, metrics)
	if err != nil {
		return err
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopRun := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(stopRun)
	}()

	logs.Infof("attached to segment=%s", cfg.SegmentName)

	done := make(chan struct{})
	go func() {
		defer close(done)
		consumer.Run(stopRun, func(q quote.MarketQuote, latency time.Duration) {
			if *verbose {
				logs.Infof("%s bid=%.4f ask=%.4f latency=%s", q.Instrument(), q.Bid, q.Ask, latency)
			}
		})
	}()

	ticker := time.NewTicker(*statsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			logs.Info("shutting down")
			return nil
		case <-ticker.C:
			snap := metrics.Snapshot()
			logs.Infof("received via shm, avg_latency=%s min=%s max=%s count=%d",
				snap.ShmLatency.Avg, snap.ShmLatency.Min, snap.ShmLatency.Max, snap.ShmLatency.Count)
		}
	}
}
