// Package main runs the rent reclaim checker bot:
// - Telegram long polling dispatched onto a worker pool
// - wallet scans against Solana RPC, priced through a cached CoinMarketCap quote
// - ops HTTP server (health, metrics, status, graphql)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"rent-reclaim-bot/internal/bot"
	"rent-reclaim-bot/internal/config"
	"rent-reclaim-bot/internal/opsapi"
	"rent-reclaim-bot/internal/partner"
	"rent-reclaim-bot/internal/price"
	"rent-reclaim-bot/internal/reclaim"
	"rent-reclaim-bot/internal/session"
	"rent-reclaim-bot/internal/solana"
	"rent-reclaim-bot/internal/storage"
	chstore "rent-reclaim-bot/internal/storage/clickhouse"
	"rent-reclaim-bot/internal/storage/memory"
	"rent-reclaim-bot/internal/storage/migrations"
	pgstore "rent-reclaim-bot/internal/storage/postgres"
	"rent-reclaim-bot/internal/wallet"
)

// stores holds the anonymous audit stores.
type stores struct {
	scanLog        storage.ScanLogStore
	priceSnapshots storage.PriceSnapshotStore
}

func main() {
	envFile := flag.String("env-file", ".env", "Optional .env file (existing environment wins)")
	configFile := flag.String("config", "", "Optional YAML tunables file (overrides CONFIG_FILE)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory audit storage even if DSNs are set")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(*envFile, *configFile)
	if err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			logger.WithField("missing", cfgErr.Missing).WithField("invalid", cfgErr.Invalid).
				Error("Essential environment variables are missing or invalid")
		} else {
			logger.WithError(err).Error("Failed to load configuration")
		}
		os.Exit(1)
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
	}

	if err := run(cfg, *useMemory, logger); err != nil {
		logger.WithError(err).Fatal("Bot stopped with error")
	}
	logger.Info("Shutdown complete")
}

func run(cfg *config.Config, useMemory bool, logger *logrus.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.WithField("signal", sig.String()).Info("Received signal, initiating graceful shutdown")
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.WithField("signal", sig.String()).Warn("Received second signal, forcing immediate shutdown")
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Warn("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		}
	}()

	st, cleanup, err := createStores(ctx, cfg, useMemory, logger)
	if err != nil {
		return fmt.Errorf("create stores: %w", err)
	}
	defer cleanup()

	// Chain client. No automatic retries: every retry is user-initiated.
	rpc := solana.NewHTTPClient(cfg.RPCURL, solana.WithMaxRetries(0))
	if slot, err := rpc.GetSlot(ctx); err != nil {
		logger.WithError(err).Warn("Solana RPC not reachable at startup")
	} else {
		logger.WithField("slot", slot).Info("Connected to Solana RPC")
	}

	tun := cfg.Tunables
	cmc := price.NewCoinMarketCap(tun.Price.BaseURL, cfg.CMCAPIKey, tun.Price.Timeout)
	prices := price.NewCache(cmc, price.CacheOptions{
		TTL:      tun.Price.CacheTTL,
		Symbol:   tun.Price.Symbol,
		Convert:  tun.Price.Convert,
		Recorder: st.priceSnapshots,
		Logger:   logger,
	})

	checker := reclaim.NewService(wallet.NewScanner(rpc), prices, reclaim.Options{
		ScanLog: st.scanLog,
		Logger:  logger,
	})

	statsURL := tun.Partner.StatsURL
	if statsURL == "" {
		statsURL, err = partner.DefaultStatsURL(cfg.ReferralLink)
		if err != nil {
			logger.WithError(err).Warn("Cannot derive partner stats URL, /partner_stats will fail")
		}
	}
	stats := partner.NewClient(statsURL, tun.Partner.Timeout)

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return fmt.Errorf("connect to telegram: %w", err)
	}
	logger.WithField("username", api.Self.UserName).Info("Bot authorized")

	handler := bot.NewHandler(api, checker, prices, stats, session.NewStore(), bot.HandlerOptions{
		ReferralLink: cfg.ReferralLink,
		AdminID:      cfg.AdminID,
		ChannelName:  cfg.ChannelName,
		Logger:       logger,
	})

	dispatcher, err := bot.NewDispatcher(handler, tun.Bot.Workers, logger)
	if err != nil {
		return err
	}
	defer dispatcher.Close()

	// Start HTTP server
	if cfg.OpsAddr != "" {
		ops := opsapi.NewServer(cfg.OpsAddr, opsapi.Deps{
			Prices:  prices,
			ScanLog: st.scanLog,
			Workers: dispatcher.Running,
			Logger:  logger,
		})
		go func() {
			if err := ops.ListenAndServe(); err != nil {
				logger.WithError(err).Error("Ops HTTP server error")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = ops.Shutdown(shutdownCtx)
		}()
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = tun.Bot.PollTimeout
	updates := api.GetUpdatesChan(u)

	logger.Info("Bot is now running")
	go prices.Price(ctx)

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			logger.Info("Stopped receiving updates, waiting for in-flight handlers")
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			if err := dispatcher.Dispatch(ctx, upd); err != nil {
				logger.WithError(err).Error("Failed to dispatch update")
			}
		}
	}
}

// createStores connects the audit stores. Each falls back to memory when its DSN is empty.
func createStores(ctx context.Context, cfg *config.Config, useMemory bool, logger logrus.FieldLogger) (*stores, func(), error) {
	st := &stores{
		scanLog:        memory.NewScanLogStore(),
		priceSnapshots: memory.NewPriceSnapshotStore(),
	}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if useMemory {
		logger.Info("Using in-memory audit storage")
		return st, cleanup, nil
	}

	// PostgreSQL
	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		st.scanLog = pgstore.NewScanLogStore(pool)
		logger.Info("Scan log stored in PostgreSQL")
	}

	// ClickHouse
	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		closers = append(closers, func() { conn.Close() })
		st.priceSnapshots = chstore.NewPriceSnapshotStore(conn)
		logger.Info("Price history stored in ClickHouse")
	}

	return st, cleanup, nil
}
