package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/mintwatch/mint-alert-bot/internal/config"
	"github.com/mintwatch/mint-alert-bot/internal/constants"
	"github.com/mintwatch/mint-alert-bot/internal/fetch"
	"github.com/mintwatch/mint-alert-bot/internal/filter"
	"github.com/mintwatch/mint-alert-bot/internal/flags"
	"github.com/mintwatch/mint-alert-bot/internal/helius"
	"github.com/mintwatch/mint-alert-bot/internal/pipeline"
	"github.com/mintwatch/mint-alert-bot/internal/rpc"
	"github.com/mintwatch/mint-alert-bot/internal/scanner"
	"github.com/mintwatch/mint-alert-bot/internal/server"
	"github.com/mintwatch/mint-alert-bot/internal/session"
	"github.com/mintwatch/mint-alert-bot/internal/telegram"
	"github.com/mintwatch/mint-alert-bot/internal/trade"
	"github.com/mintwatch/mint-alert-bot/internal/wallet"
)

// loadEnv loads .env from the project root before anything reads os.Getenv.
func loadEnv(logger *logrus.Logger) {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	loadEnv(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Chain + metadata clients
	rpcClient := rpc.NewClient(rpc.ClientConfig{
		BaseURL:      cfg.RPCUrl,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})
	heliusClient := helius.NewClient(cfg.HeliusBaseURL, cfg.HeliusAPIKey)

	fetcher := fetch.NewFetcher(fetch.FetcherConfig{
		API:         heliusClient,
		Chain:       rpcClient,
		Logger:      logger,
		MaxAttempts: cfg.MaxRetries,
		BaseBackoff: cfg.RetryBackoff,
	})

	// Shared filter state
	filterStore := filter.NewStore(filter.DefaultConfig())
	sessions := session.NewManager(filterStore, logger)

	// Operator toggles: Redis-backed when configured, otherwise static from env
	var toggleStore *flags.Store
	var toggles pipeline.Toggles = flags.Static{Bypass: cfg.BypassFilters, Auto: cfg.AutoExecute}
	if cfg.RedisAddr != "" {
		rclient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rclient.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Fatal("failed to connect to Redis")
		}
		store, err := flags.NewStore(rclient)
		if err != nil {
			logger.WithError(err).Fatal("failed to create toggle store")
		}
		toggleStore = store
		toggles = flags.StoreToggles{
			Store:    store,
			Defaults: flags.Static{Bypass: cfg.BypassFilters, Auto: cfg.AutoExecute},
		}
		logger.Info("operator toggles backed by Redis")
	}

	// Telegram transport
	bot, err := telegram.NewBot(telegram.BotConfig{
		Token:    cfg.BotToken,
		Sessions: sessions,
		Filters:  filterStore,
		Toggles:  toggles,
		Logger:   logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create telegram bot")
	}

	// Best-effort buy executor, only when a wallet is configured
	var buyer pipeline.Buyer
	if cfg.WalletPrivateKey != "" {
		w, err := wallet.NewWallet(wallet.WalletConfig{
			RPCURL:       cfg.RPCUrl,
			Timeout:      cfg.HTTPTimeout,
			MaxRetries:   cfg.MaxRetries,
			RetryBackoff: cfg.RetryBackoff,
			PrivateKey:   cfg.WalletPrivateKey,
		})
		if err != nil {
			logger.WithError(err).Fatal("failed to create wallet")
		}
		executor, err := trade.NewExecutor(trade.ExecutorConfig{
			Client:       trade.NewSwapClient(cfg.SwapBaseURL, ""),
			Wallet:       w,
			Logger:       logger,
			BuyAmountSOL: cfg.BuyAmountSOL,
		})
		if err != nil {
			logger.WithError(err).Fatal("failed to create buy executor")
		}
		buyer = executor
		logger.WithField("wallet", w.Address()).Info("auto-buy wallet loaded")
	}

	// Alert pipeline
	pipe := pipeline.New(pipeline.PipelineConfig{
		Fetcher:     fetcher,
		Chain:       rpcClient,
		Filters:     filterStore,
		Sender:      bot,
		Buyer:       buyer,
		Toggles:     toggles,
		Rate:        pipeline.NewRateWindow(cfg.BatchRateCap, constants.RateWindowDuration),
		AlertChatID: cfg.AlertChatID,
		Logger:      logger,
	})
	bot.AttachPipeline(pipe)

	// Polling scanner, independent of webhook delivery
	scan := scanner.New(scanner.ScannerConfig{
		Source:      heliusClient,
		Sink:        pipe,
		MaxAttempts: cfg.MaxRetries,
		BaseBackoff: cfg.RetryBackoff,
		Logger:      logger,
	})
	go func() {
		if err := scan.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("scanner stopped")
		}
	}()

	// Telegram long-polling for operator commands
	go bot.Run(ctx)

	// HTTP server: webhook ingest, bot update passthrough, toggle CRUD
	handlers := &server.Handlers{
		Pipeline: pipe,
		Bot:      bot,
		Toggles:  toggleStore,
		DevMode:  cfg.DevMode,
		Logger:   logger,
	}
	srv, err := server.NewServer(server.ServerDeps{
		Handlers: handlers,
		Config: server.ServerConfig{
			Addr:    cfg.APIAddr,
			DevMode: cfg.DevMode,
			APIKey:  cfg.APIKey,
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create server")
	}

	go func() {
		logger.WithField("addr", cfg.APIAddr).Info("starting API server")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-sigCh
	logger.Info("shutting down")
	cancel()

	if err := srv.Shutdown(context.Background()); err != nil {
		logger.WithError(err).Error("server shutdown failed")
	}
	_ = scan.Stop()
	logger.Info("shutdown complete")
}
