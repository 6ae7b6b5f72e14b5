package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hdnguyen/secondhand-scout/internal/config"
	"github.com/hdnguyen/secondhand-scout/internal/core"
	"github.com/hdnguyen/secondhand-scout/internal/dedupe"
	"github.com/hdnguyen/secondhand-scout/internal/listing"
	listingimpl "github.com/hdnguyen/secondhand-scout/internal/listing/impl"
	"github.com/hdnguyen/secondhand-scout/internal/llm/openai"
	"github.com/hdnguyen/secondhand-scout/internal/notify"
	notifysmtp "github.com/hdnguyen/secondhand-scout/internal/notify/smtp"
	"github.com/hdnguyen/secondhand-scout/internal/notify/telegram"
	"github.com/hdnguyen/secondhand-scout/internal/observability/otelx"
	"github.com/hdnguyen/secondhand-scout/internal/pace"
	"github.com/hdnguyen/secondhand-scout/internal/scan"
	"github.com/hdnguyen/secondhand-scout/internal/scorer"
)

// Exit codes: 0 on a successful run (including a partial one), 2 on
// invalid configuration, 1 on a fatal runtime failure.
const (
	exitOK     = 0
	exitFatal  = 1
	exitConfig = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	env := config.LoadEnv()

	profilePath := flag.String("profile", env.ProfilePath, "path to YAML site profile")
	storePath := flag.String("store", env.Store.Path, "path to the seen-item store")
	flag.Parse()
	env.ProfilePath = *profilePath
	env.Store.Path = *storePath

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))
	slog.SetDefault(logger)

	profile, err := config.LoadProfile(env.ProfilePath)
	if err != nil {
		logger.Error("invalid profile", "path", env.ProfilePath, "error", err)
		return exitConfig
	}
	settings, err := config.Resolve(env, profile)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return exitConfig
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = core.WithLogger(ctx, logger)

	shutdown, err := otelx.Init(ctx, logger, env.OTel)
	if err != nil {
		logger.Error("otel init failed", "error", err)
		return exitFatal
	}
	if shutdown != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.Warn("otel shutdown failed", "error", err)
			}
		}()
	}

	store, err := newStore(env.Store)
	if err != nil {
		logger.Error("open store failed", "backend", env.Store.Backend, "path", env.Store.Path, "error", err)
		return exitFatal
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("store close failed", "error", err)
		}
	}()

	scanner, err := buildScanner(env, settings, store, logger)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return exitConfig
	}

	summary, err := scanner.Run(ctx)
	if err != nil {
		logger.Error("scan failed", "error", err)
		return exitFatal
	}
	logger.Info("done",
		"items_found", summary.ItemsFound,
		"items_notified", summary.ItemsNotified,
		"pages_scanned", summary.PagesScanned,
		"outcome", summary.Outcome,
	)
	return exitOK
}

func newStore(cfg config.StoreEnvConfig) (dedupe.Store, error) {
	switch cfg.Backend {
	case "csv":
		return dedupe.NewCSVStore(cfg.Path)
	case "sqlite":
		return dedupe.NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func buildScanner(env config.EnvConfig, settings config.Settings, store dedupe.Store, logger *slog.Logger) (*scan.Scanner, error) {
	fetcher, err := listingimpl.NewClient(env.Listing.HTTPTimeout, settings.BaseURL, settings.ListingPath, env.Listing.UserAgent)
	if err != nil {
		return nil, err
	}
	extractor := listing.NewHTMLExtractor(settings.Selectors, settings.PricePlaceholder)

	var sc scorer.Scorer
	if settings.ScoringEnabled {
		client := openai.NewClient(env.OpenAI)
		llmScorer, err := scorer.NewLLMScorer(client, env.OpenAI.Model, env.OpenAI.Temperature, settings.SystemTemplate, settings.PromptTemplate, logger)
		if err != nil {
			return nil, err
		}
		sc = llmScorer
	}

	notifier, err := buildNotifier(env, logger)
	if err != nil {
		return nil, err
	}

	cfg := scan.Config{
		BaseURL:    settings.BaseURL,
		FilterRule: settings.FilterRule,
		Threshold:  settings.Threshold,
		PageSize:   settings.PageSize,
		MaxPages:   settings.MaxPages,
	}
	return scan.New(cfg, fetcher, extractor, store, sc, notifier, pace.New(settings.Cooldown), logger)
}

// buildNotifier wires every configured channel into one fan-out notifier.
// No configured channel is fine: new items are then only recorded.
func buildNotifier(env config.EnvConfig, logger *slog.Logger) (notify.Notifier, error) {
	var channels notify.Multi

	if env.Telegram.Token != "" || env.Telegram.ChatID != "" {
		tg, err := telegram.New(env.Telegram.HTTPTimeout, "", env.Telegram.Token, env.Telegram.ChatID)
		if err != nil {
			return nil, err
		}
		channels = append(channels, tg)
	}
	if env.SMTP.Host != "" {
		mailer, err := notifysmtp.New(env.SMTP)
		if err != nil {
			return nil, err
		}
		channels = append(channels, mailer)
	}

	if len(channels) == 0 {
		logger.Warn("no notification channel configured, new items will only be recorded")
		return nil, nil
	}
	return channels, nil
}
