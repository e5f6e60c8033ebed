package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nknauf/ncaa-halftime-predictor/internal/cache"
	"github.com/nknauf/ncaa-halftime-predictor/internal/client"
	"github.com/nknauf/ncaa-halftime-predictor/internal/config"
	"github.com/nknauf/ncaa-halftime-predictor/internal/metrics"
	"github.com/nknauf/ncaa-halftime-predictor/internal/notifier"
	"github.com/nknauf/ncaa-halftime-predictor/internal/poller"
	"github.com/nknauf/ncaa-halftime-predictor/internal/predictor"
	"github.com/nknauf/ncaa-halftime-predictor/internal/repository"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	setupLogger()

	log.Info().Msg("Starting NCAA MBB Halftime Predictor")

	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Int("season", cfg.SeasonYear).
		Msg("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	espn := client.NewClient(cfg.FeedBaseURL, cfg.FeedTimeout)
	log.Info().Str("base_url", cfg.FeedBaseURL).Msg("Scoreboard client initialized")

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	// Redis is an optimization, not a dependency
	redisCache, err := cache.New(ctx, cache.Config{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	if cfg.EnableMetrics {
		go startMetricsServer(cfg.MetricsPort)
	}

	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			case <-ctx.Done():
				return
			}
		}
	}()

	var sender notifier.Sender
	if cfg.SMSEnabled() {
		sender = notifier.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
		log.Info().Str("from", cfg.TwilioFromNumber).Msg("SMS dispatch enabled")
	} else {
		log.Warn().Msg("Twilio not configured, alerts will be logged only")
	}

	subscribers := poller.NewCachedSubscriberSource(db.Subscribers, redisCache, cfg.CacheTTLSubscribers)
	alerts := notifier.New(cfg.NotifyThreshold, subscribers, sender)

	halftime := predictor.NewHalftimeHandler(cfg, db, espn, alerts)
	final := predictor.NewFinalResolver(cfg, db)

	p, err := poller.NewPoller(cfg, espn, db, halftime, final)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create poller")
	}
	if err := p.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start poller")
	}

	<-ctx.Done()

	p.Stop()
	log.Info().Msg("Shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port int) {
	http.Handle("/metrics", promhttp.Handler())

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	addr := fmt.Sprintf(":%d", port)
	log.Info().Int("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
