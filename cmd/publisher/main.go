package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"

	"quotefeed/internal/config"
	"quotefeed/internal/feed"
	"quotefeed/internal/obs"
)

func main() {
	if err := run(); err != nil {
		log.Printf("publisher: %v", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to JSON config")
	instruments := flag.String("instruments", "AAPL,MSFT,GOOG", "comma-separated instrument list to cycle through")
	basePrice := flag.Float64("base-price", 100.0, "starting price for the generator")
	spread := flag.Float64("spread", 0.02, "synthetic bid/ask spread")
	statsInterval := flag.Duration("stats-interval", 10*time.Second, "interval between metrics log lines")
	profile := flag.Bool("profile", false, "enable pyroscope continuous profiling")
	pinHotPath := flag.Bool("pin-hot-path", false, "lock the tick loop's goroutine to its OS thread")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *pinHotPath {
		cfg.PinHotPath = true
	}

	if *profile {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "quotefeed.publisher",
			ServerAddress:   "http://localhost:4040",
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			logs.Errorf("pyroscope start failed, continuing without profiling, err: %+v", err)
		} else {
			defer func() { _ = profiler.Stop() }()
		}
	}

	list := splitInstruments(*instruments)
	generator := feed.NewGenerator(list, *basePrice, *spread)
	metrics := obs.New()

	pub, err := feed.NewPublisher(cfg, generator, metrics)
	if err != nil {
		return err
	}
	defer pub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go pub.Run()
	logs.Infof("segment=%s listen=%s instruments=%v", cfg.SegmentName, cfg.ListenAddr, list)

	ticker := time.NewTicker(*statsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logs.Info("shutting down")
			return nil
		case <-ticker.C:
			logSnapshot(pub.Metrics(), pub.SubscriberCount())
		}
	}
}

func logSnapshot(snap obs.Snapshot, subscribers int) {
	logs.Infof("published=%d ring_drops=%d fanout_drops=%d subscribers=%d",
		snap.Published, snap.RingDrops, snap.FanoutDrops, subscribers)
}

func splitInstruments(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
