package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	citizenservice "municipal/internal/citizen/service"
	citizenstore "municipal/internal/citizen/store"
	debtmodels "municipal/internal/debt/models"
	debtservice "municipal/internal/debt/service"
	debtstore "municipal/internal/debt/store"
	"municipal/internal/notification"
	"municipal/internal/payment/ports"
	"municipal/internal/payment/retry"
	"municipal/internal/platform/config"
	"municipal/internal/platform/kafka"
	"municipal/internal/platform/postgres"
	platformredis "municipal/internal/platform/redis"
	proceduremodels "municipal/internal/procedure/models"
	procedureservice "municipal/internal/procedure/service"
	procedurestore "municipal/internal/procedure/store"
	"municipal/internal/storage"
	transport "municipal/internal/transport/http"
	id "municipal/pkg/domain"
	audit "municipal/pkg/platform/audit"
	auditmemory "municipal/pkg/platform/audit/store/memory"
	auditpostgres "municipal/pkg/platform/audit/store/postgres"
)

const (
	notificationPartitions = 3
	notificationReplicas   = 1
)

// backends holds the storage and messaging adapters selected by config.
// Every external system is optional; an unset URL falls back to the
// in-process implementation.
type backends struct {
	db    *sql.DB
	redis *platformredis.Client
	kafka *kgo.Client

	citizens   citizenservice.Store
	procedures procedureservice.Store
	debts      debtservice.Store
	audit      audit.Store
	retries    ports.RetryQueue
	notifier   procedureservice.Notifier
	reminders  debtservice.ReminderScheduler
}

func openBackends(ctx context.Context, cfg config.Server, logger *slog.Logger) (*backends, error) {
	b := &backends{}
	if err := b.openStores(ctx, cfg, logger); err != nil {
		b.Close()
		return nil, err
	}
	if err := b.openRedis(ctx, cfg, logger); err != nil {
		b.Close()
		return nil, err
	}
	if err := b.openKafka(ctx, cfg, logger); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

func (b *backends) openStores(ctx context.Context, cfg config.Server, logger *slog.Logger) error {
	if cfg.Database.URL == "" {
		logger.InfoContext(ctx, "using in-memory stores")
		b.citizens = citizenstore.NewInMemory()
		b.procedures = procedurestore.NewInMemory(
			storage.WithOpTimeout[id.ProcedureID, proceduremodels.Procedure](cfg.StoreTimeout),
		)
		b.debts = debtstore.NewInMemory(
			storage.WithOpTimeout[id.DebtID, debtmodels.Debt](cfg.StoreTimeout),
		)
		b.audit = auditmemory.NewInMemoryStore()
		return nil
	}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	b.db = db
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	logger.InfoContext(ctx, "using postgres stores")
	b.citizens = citizenstore.NewPostgres(db)
	b.procedures = procedurestore.NewPostgres(db, cfg.StoreTimeout)
	b.debts = debtstore.NewPostgres(db, cfg.StoreTimeout)
	b.audit = auditpostgres.New(db)
	return nil
}

func (b *backends) openRedis(ctx context.Context, cfg config.Server, logger *slog.Logger) error {
	client, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if client == nil {
		b.retries = retry.NewMemoryQueue()
		b.reminders = notification.NewLogReminderScheduler(logger)
		return nil
	}
	b.redis = client
	b.retries = retry.NewRedisQueue(client.Client)
	b.reminders = notification.NewRedisReminderScheduler(client.Client, cfg.Notification.ReminderKey)
	return nil
}

func (b *backends) openKafka(ctx context.Context, cfg config.Server, logger *slog.Logger) error {
	client, err := kafka.NewClient(ctx, cfg.Kafka)
	if err != nil {
		return err
	}
	if client == nil {
		b.notifier = notification.NewLogNotifier(logger)
		return nil
	}
	b.kafka = client
	if err := kafka.EnsureTopic(ctx, client, cfg.Kafka.Topic, notificationPartitions, notificationReplicas); err != nil {
		logger.WarnContext(ctx, "notification topic not ensured", "topic", cfg.Kafka.Topic, "error", err)
	}
	b.notifier = notification.NewKafkaNotifier(client, cfg.Kafka.Topic)
	return nil
}

// syncSequences moves the postgres id sequences past explicitly inserted rows.
func (b *backends) syncSequences(ctx context.Context) error {
	if b.db == nil {
		return nil
	}
	for _, s := range []struct{ sequence, table string }{
		{"citizens_id_seq", "citizens"},
		{"procedures_id_seq", "procedures"},
		{"debts_id_seq", "debts"},
	} {
		if err := postgres.SyncSequence(ctx, b.db, s.sequence, s.table); err != nil {
			return fmt.Errorf("sync %s: %w", s.sequence, err)
		}
	}
	return nil
}

func (b *backends) healthChecks() map[string]transport.HealthCheck {
	checks := map[string]transport.HealthCheck{}
	if b.db != nil {
		checks["postgres"] = b.db.PingContext
	}
	if b.redis != nil {
		checks["redis"] = b.redis.Health
	}
	if b.kafka != nil {
		checks["kafka"] = b.kafka.Ping
	}
	return checks
}

func (b *backends) Close() {
	if b.kafka != nil {
		b.kafka.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.db != nil {
		_ = b.db.Close()
	}
}
