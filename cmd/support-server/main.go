// cmd/support-server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"support-chat/internal/api"
	commonaws "support-chat/internal/common/aws"
	"support-chat/internal/common/config"
	"support-chat/internal/common/database"
	"support-chat/internal/common/logger"
	"support-chat/internal/common/observability"
	"support-chat/internal/models"
	"support-chat/internal/support/classify"
	"support-chat/internal/support/convlog"
	"support-chat/internal/support/engine"
	"support-chat/internal/support/faqstore"
	faqhandler "support-chat/internal/support/handlers/faq"
	refundhandler "support-chat/internal/support/handlers/refund"
	triagehandler "support-chat/internal/support/handlers/triage"
	"support-chat/internal/support/notify"
	"support-chat/internal/support/session"
	"support-chat/internal/support/transaction"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	seedData := flag.Bool("seed", false, "seed demo transactions and the knowledge base, then continue")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting support-chat server...")

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Persistence bootstrap ---
	logs := convlog.NewStore(pg.DB, log)
	if err := logs.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("audit schema bootstrap failed", zap.Error(err))
	}

	if *seedData {
		if err := faqstore.SeedTransactions(ctx, pg.DB, 20, time.Now().UnixNano()); err != nil {
			zapLog.Fatal("transaction seeding failed", zap.Error(err))
		}
		if _, statErr := os.Stat(cfg.FAQ.Path); os.IsNotExist(statErr) {
			if err := faqstore.WriteKnowledgeBase(cfg.FAQ.Path, faqstore.DefaultRecords()); err != nil {
				zapLog.Fatal("knowledge base seeding failed", zap.Error(err))
			}
		}
		zapLog.Info("Demo data seeded")
	}

	// --- Knowledge base ---
	kb, err := faqstore.Load(cfg.FAQ.Path)
	if err != nil {
		zapLog.Fatal("knowledge base load failed", zap.Error(err))
	}
	zapLog.Info("Knowledge base loaded", zap.Int("records", kb.Len()))

	// --- AI completion capability (optional) ---
	var completer classify.Completer
	if cfg.OpenAI.APIKey != "" {
		completer = classify.NewOpenAICompleter(cfg.OpenAI)
		zapLog.Info("Completion capability enabled", zap.String("model", cfg.OpenAI.Model))
	} else {
		zapLog.Warn("OPENAI_API_KEY not set, running rule-based only")
	}
	cache := classify.NewResponseCache(config.GetSeconds(cfg.Cache.TTL), cfg.Cache.MaxSize)
	classifier := classify.NewAIClassifier(completer, cache, log)

	// --- CRM escalation notifier (optional) ---
	var notifier *notify.Notifier
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		sesClient, sesErr := commonaws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if sesErr != nil {
			zapLog.Fatal("SES client init failed", zap.Error(sesErr))
		}
		snsClient, snsErr := commonaws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if snsErr != nil {
			zapLog.Fatal("SNS client init failed", zap.Error(snsErr))
		}
		notifier = notify.NewNotifier(&cfg.Notifications, sesClient, snsClient, log)
		zapLog.Info("CRM escalation notifier enabled")
	}

	// --- Turn pipeline ---
	store := session.NewStore(rdb.Client, config.GetSeconds(cfg.Session.TTL), log)
	quota := session.NewQuota(store, cfg.Session.MaxQueries)
	finder := transaction.NewPostgresFinder(pg.DB, log)

	handlers := map[models.RouteTarget]engine.Handler{
		models.TargetRefund: refundhandler.NewHandler(finder, completer, cache, log),
		models.TargetFAQ: faqhandler.NewHandler(
			&faqhandler.Config{TopK: cfg.FAQ.TopK}, kb, completer, cache, log),
		models.TargetTriage: triagehandler.NewHandler(log),
	}

	opts := engine.Options{
		Classifier: classifier,
		Store:      store,
		Quota:      quota,
		Handlers:   handlers,
		Sink:       logs,
		AITimeout:  config.GetDuration(cfg.OpenAI.Timeout),
	}
	if notifier != nil {
		opts.Escalator = notifier
	}
	eng := engine.New(opts, log)

	// --- HTTP server ---
	server := api.NewServer(eng, store, logs, obs, log)
	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      server.Routes(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Metrics Server ---
	go func() {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Metrics server listening", zap.String("address", cfg.Server.MetricsAddress))
		if err := http.ListenAndServe(cfg.Server.MetricsAddress, metricsMux); err != nil {
			zapLog.Error("Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Server stopped gracefully")
}
