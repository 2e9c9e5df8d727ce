package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/finco/internal/advisor"
	"github.com/MrJamesThe3rd/finco/internal/advisor/gemini"
	"github.com/MrJamesThe3rd/finco/internal/config"
	"github.com/MrJamesThe3rd/finco/internal/events"
	"github.com/MrJamesThe3rd/finco/internal/export"
	fincoHttp "github.com/MrJamesThe3rd/finco/internal/http"
	advisorHandler "github.com/MrJamesThe3rd/finco/internal/http/advisor"
	ledgerHandler "github.com/MrJamesThe3rd/finco/internal/http/ledger"
	txHandler "github.com/MrJamesThe3rd/finco/internal/http/transaction"
	transferHandler "github.com/MrJamesThe3rd/finco/internal/http/transfer"
	"github.com/MrJamesThe3rd/finco/internal/importer"
	"github.com/MrJamesThe3rd/finco/internal/ledger"
	"github.com/MrJamesThe3rd/finco/internal/ledger/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	publisher := newPublisher(cfg)
	defer publisher.Close()

	var (
		ledgerService = ledger.NewService(
			store.New(ledger.Seed()),
			ledger.WithPublisher(publisher),
			ledger.WithSettleDelay(cfg.Ledger.SettleDelay),
		)
		advisorClient = advisor.NewClient(
			newModel(ctx, cfg),
			advisor.WithTimeout(cfg.Advisor.Timeout),
			advisor.WithParseModel(cfg.Advisor.ParseModel),
		)
		exportService = export.NewService(ledgerService)
		importService = importer.NewService()
	)

	var (
		ledgerH      = ledgerHandler.NewHandler(ledgerService)
		transactionH = txHandler.NewHandler(ledgerService, exportService, importService)
		transferH    = transferHandler.NewHandler(ledgerService)
		advisorH     = advisorHandler.NewHandler(ledgerService, advisor.NewSession(advisorClient), advisorClient)
	)

	router := fincoHttp.New(cfg.Server, ledgerH, transactionH, transferH, advisorH)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout + cfg.Advisor.Timeout,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shut down server", "error", err)
		}
	}()

	slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

func newPublisher(cfg *config.Config) events.Publisher {
	if cfg.AMQP.URL == "" {
		return events.Nop{}
	}

	p, err := events.NewAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange)
	if err != nil {
		slog.Warn("event publishing disabled", "error", err)
		return events.Nop{}
	}

	return p
}

func newModel(ctx context.Context, cfg *config.Config) advisor.Model {
	var opts []gemini.Option
	if cfg.Advisor.Endpoint != "" {
		opts = append(opts, gemini.WithEndpoint(cfg.Advisor.Endpoint))
	}

	m, err := gemini.New(ctx, cfg.Advisor.APIKey, cfg.Advisor.Model, opts...)
	if err != nil {
		slog.Warn("advisor disabled", "error", err)
		return advisor.Disabled{}
	}

	return m
}
