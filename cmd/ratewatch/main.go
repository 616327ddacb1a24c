package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"TaxSentinel/internal/config"
	"TaxSentinel/internal/model"
	"TaxSentinel/internal/rates"
	"TaxSentinel/internal/recorder"
	"TaxSentinel/internal/scheduler"
)

func main() {
	once := flag.Bool("once", false, "resolve rates once, print the snapshot and exit")
	history := flag.Int("history", 0, "print the last N rate resolutions and exit")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] TaxSentinel ratewatch starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init rate source
	var src rates.Source
	if cfg.RateSource.URL != "" {
		src = rates.NewHTTPSource(cfg.RateSource.URL, cfg.RateSource.APIKey, cfg.Proxy, cfg.RateSource.Timeout)
		log.Printf("[INFO] rate source: %s", src.Name())
	} else {
		log.Println("[WARN] rate_source.url not set, serving embedded rates only")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init cache
	cache := newCache(ctx, cfg)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init resolver
	overrides, err := cfg.FallbackOverrides()
	if err != nil {
		log.Fatalf("[FATAL] fallback rates: %v", err)
	}
	resolver := rates.NewResolver(src, cache, rec, cfg.Cache.TTL, cfg.RetryPolicy())
	resolver.Fallback = rates.FallbackWith(overrides)

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, resolver, rec)

	if *history > 0 {
		report, err := sched.HistoryReport(*history)
		if err != nil {
			log.Fatalf("[FATAL] %v", err)
		}
		fmt.Print(report)
		return
	}
	if *once {
		printSnapshot(sched.RunNow())
		return
	}

	if err := sched.RegisterAll(cfg.Schedule.RefreshCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, refreshing rates now")
		go sched.RunNow()
	}

	log.Println("[INFO] ratewatch is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] ratewatch stopped")
}

func newCache(ctx context.Context, cfg *config.Config) rates.Cache {
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		rc := rates.NewRedisCache(cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rc.Ping(pingCtx); err != nil {
			log.Printf("[WARN] redis %s unreachable, using memory cache: %v", cfg.Cache.Redis.Addr, err)
			rc.Close()
			return rates.NewMemoryCache()
		}
		log.Printf("[INFO] rate cache: redis %s", cfg.Cache.Redis.Addr)
		return rc
	case config.CacheFile:
		log.Printf("[INFO] rate cache: file %s", cfg.Cache.FilePath)
		return rates.NewFileCache(cfg.Cache.FilePath)
	}
	log.Println("[INFO] rate cache: memory")
	return rates.NewMemoryCache()
}

func printSnapshot(snap model.RateSnapshot) {
	fmt.Printf("source:     %s\n", snap.Source)
	fmt.Printf("fetched at: %s\n", snap.FetchedAt.Format(time.RFC3339))
	if snap.IsFallback() {
		fmt.Println("WARNING: live rates unavailable, embedded constants in use")
	}
	keys := make([]string, 0, len(snap.Rates))
	for k := range snap.Rates {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		mark := ""
		if slices.Contains(snap.FilledFromFallback, k) {
			mark = "  (fallback)"
		}
		fmt.Printf("  %-40s %s%s\n", k, snap.Rates[k].String(), mark)
	}
}
