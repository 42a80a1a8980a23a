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
		log.Printf("tcpconsumer: %v", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to JSON config")
	addr := flag.String("addr", "", "publisher address to dial (defaults to the config's listenAddr)")
	statsInterval := flag.Duration("stats-interval", 10*time.Second, "interval between metrics log lines")
	verbose := flag.Bool("verbose", false, "log every consumed quote")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	dialAddr := *addr
	if dialAddr == "" {
		dialAddr = cfg.ListenAddr
	}

	metrics := obs.New()
	consumer, err := feed.DialTcpConsumer(dialAddr, cfg, metrics)
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

	logs.Infof("connected to %s", dialAddr)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Run(stopRun, func(q quote.MarketQuote, latency time.Duration) {
			if *verbose {
				logs.Infof("%s bid=%.4f ask=%.4f latency=%s", q.Instrument(), q.Bid, q.Ask, latency)
			}
		}); err != nil {
			logs.Errorf("stream ended, err: %+v", err)
		}
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
			logs.Infof("received via tcp, avg_latency=%s min=%s max=%s count=%d malformed=%d",
				snap.TcpLatency.Avg, snap.TcpLatency.Min, snap.TcpLatency.Max, snap.TcpLatency.Count, snap.Malformed)
		}
	}
}
