package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	citizenhandler "municipal/internal/citizen/handler"
	citizenmetrics "municipal/internal/citizen/metrics"
	citizenservice "municipal/internal/citizen/service"
	debthandler "municipal/internal/debt/handler"
	debtmetrics "municipal/internal/debt/metrics"
	debtservice "municipal/internal/debt/service"
	"municipal/internal/payment/gateway"
	paymenthandler "municipal/internal/payment/handler"
	paymentmetrics "municipal/internal/payment/metrics"
	"municipal/internal/payment/retry"
	paymentservice "municipal/internal/payment/service"
	"municipal/internal/platform/config"
	"municipal/internal/platform/httpserver"
	"municipal/internal/platform/logger"
	"municipal/internal/platform/metrics"
	procedurehandler "municipal/internal/procedure/handler"
	proceduremetrics "municipal/internal/procedure/metrics"
	procedureservice "municipal/internal/procedure/service"
	"municipal/internal/seed"
	httptransport "municipal/internal/transport/http"
	"municipal/pkg/platform/audit/publisher"
)

const (
	auditBuffer     = 1024
	shutdownTimeout = 10 * time.Second
)

// main wires high-level dependencies, exposes the HTTP router, and runs the
// retry worker next to the server. Business logic lives in internal services packages.
func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New(cfg.LogFormat, cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	auditPublisher := publisher.NewPublisher(b.audit,
		publisher.WithAsyncBuffer(auditBuffer),
		publisher.WithLogger(log),
	)
	defer auditPublisher.Close()

	gw := gateway.NewSimulated(
		gateway.WithSuccessRate(cfg.Gateway.SuccessRate),
		gateway.WithLatency(cfg.Gateway.Latency),
		gateway.WithLogger(log),
	)

	citizenSvc := citizenservice.New(b.citizens,
		citizenservice.WithLogger(log),
		citizenservice.WithAuditPublisher(auditPublisher),
		citizenservice.WithMetrics(citizenmetrics.New()),
	)
	procedureSvc := procedureservice.New(b.procedures,
		procedureservice.WithLogger(log),
		procedureservice.WithAuditPublisher(auditPublisher),
		procedureservice.WithMetrics(proceduremetrics.New()),
		procedureservice.WithCitizenDirectory(citizenSvc),
		procedureservice.WithNotifier(b.notifier),
		procedureservice.WithRefunder(gw),
	)
	debtSvc := debtservice.New(b.debts,
		debtservice.WithLogger(log),
		debtservice.WithAuditPublisher(auditPublisher),
		debtservice.WithMetrics(debtmetrics.New()),
		debtservice.WithCitizenDirectory(citizenSvc),
		debtservice.WithNotifier(b.notifier),
		debtservice.WithReminderScheduler(b.reminders),
	)
	paymentMetrics := paymentmetrics.New()
	paymentSvc := paymentservice.New(gw, procedureSvc, debtSvc,
		paymentservice.WithLogger(log),
		paymentservice.WithAuditPublisher(auditPublisher),
		paymentservice.WithMetrics(paymentMetrics),
		paymentservice.WithRetryQueue(b.retries),
		paymentservice.WithRetryPolicy(cfg.Retry.Delay, cfg.Retry.MaxAttempts),
	)

	if cfg.SeedDemoData {
		if err := seed.Load(ctx, seed.Stores{
			Citizens:   b.citizens,
			Procedures: b.procedures,
			Debts:      b.debts,
		}, log); err != nil {
			return err
		}
		if err := b.syncSequences(ctx); err != nil {
			return err
		}
	}

	router := httptransport.NewRouter(httptransport.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
		Metrics:        metrics.New(),
		HealthChecks:   b.healthChecks(),
	}, log,
		citizenhandler.New(citizenSvc, log),
		procedurehandler.New(procedureSvc, log),
		debthandler.New(debtSvc, log),
		paymenthandler.New(paymentSvc, log),
	)
	srv := httpserver.New(cfg.Addr, router, cfg.RequestTimeout)

	worker := retry.NewWorker(b.retries, paymentSvc,
		retry.WithPollInterval(cfg.Retry.PollInterval),
		retry.WithBatchSize(cfg.Retry.BatchSize),
		retry.WithWorkerLogger(log),
		retry.WithWorkerMetrics(paymentMetrics),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting municipal server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return worker.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
