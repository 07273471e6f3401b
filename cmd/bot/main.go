package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"SenateLong/internal/broker"
	"SenateLong/internal/collector"
	"SenateLong/internal/config"
	"SenateLong/internal/credentials"
	"SenateLong/internal/fund"
	"SenateLong/internal/logger"
	"SenateLong/internal/notifier"
	"SenateLong/internal/recorder"
	"SenateLong/internal/scheduler"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		bootLog().Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		bootLog().Fatal().Err(err).Msg("config validation")
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("config", cfgPath).Msg("SenateLong starting...")

	// Credentials before any network activity.
	store := credentials.Chain{credentials.EnvStore{}, credentials.KeyringStore{}}
	keys, err := credentials.LoadBrokerKeys(store, cfg.Broker.CredentialNamespace, cfg.Broker.Paper)
	if err != nil {
		if errors.Is(err, credentials.ErrNotFound) {
			log.Fatal().Err(err).Str("namespace", cfg.Broker.CredentialNamespace).Bool("paper", cfg.Broker.Paper).
				Msg("broker credentials not found in environment or keyring")
		}
		log.Fatal().Err(err).Msg("load broker credentials")
	}
	if !cfg.Broker.Paper {
		log.Warn().Msg("LIVE TRADING ENABLED: orders will use real money")
	}

	efd, err := collector.NewEFDClient(collector.Options{
		BaseURL:    cfg.Scraper.BaseURL,
		ProxyURL:   cfg.Proxy,
		UserAgent:  cfg.Scraper.UserAgent,
		Timeout:    cfg.Scraper.Timeout,
		PageLength: cfg.Scraper.PageLength,
		MaxPages:   cfg.Scraper.MaxPages,
		MaxRetries: cfg.Scraper.MaxRetries,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init disclosure client")
	}
	col := collector.NewCollector(efd, cfg.Scraper.AuthRetries, log)

	brk := broker.NewAlpacaBroker(keys.APIKey, keys.APISecret, cfg.Broker.Paper, cfg.Broker.BaseURL, cfg.Proxy)
	log.Info().Str("broker", brk.Name()).Msg("broker ready")

	notify := notifier.Multi{notifier.NewStdoutNotifier()}
	if cfg.TelegramEnabled() {
		notify = append(notify, notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log))
		log.Info().Msg("telegram notifications enabled")
	}

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// force is registered before ctx so a fast second signal is never left
	// to the default handler.
	force := make(chan os.Signal, 2)
	signal.Notify(force, syscall.SIGINT, syscall.SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(brk, col, fund.NewTracker(), notify, rec, scheduler.Settings{
		PositionLengthDays:     cfg.Strategy.PositionLengthDays,
		RebalanceFrequencyDays: cfg.Strategy.RebalanceFrequencyDays,
		CapitalBase:            scheduler.CapitalBase(cfg.Strategy.CapitalBase),
		FundSize:               cfg.Strategy.FundSize,
		RequireTradable:        cfg.Strategy.RequireTradable,
		OpenMarketAdjust:       cfg.Strategy.OpenMarketAdjust,
	}, log)

	status, err := scheduler.NewStatusReporter(ctx, sched, cfg.Schedule.StatusCron)
	if err != nil {
		log.Fatal().Err(err).Msg("register status report")
	}
	status.Start()
	defer status.Stop()

	go awaitForcedExit(ctx, force, log, func() { os.Exit(1) })

	sched.Run(ctx)
	log.Info().Msg("SenateLong stopped")
}

// awaitForcedExit calls exit on the second signal. sigs sees every signal,
// including the first one that cancelled ctx.
func awaitForcedExit(ctx context.Context, sigs <-chan os.Signal, log zerolog.Logger, exit func()) {
	<-ctx.Done()
	<-sigs
	log.Info().Msg("shutdown signal received, finishing current step...")
	<-sigs
	log.Warn().Msg("forced exit")
	exit()
}

// bootLog is used before the configured logger exists.
func bootLog() *zerolog.Logger {
	l := logger.New("info", "console")
	return &l
}
