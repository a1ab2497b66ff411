package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"municipal/internal/debt/export"
	"municipal/internal/debt/metrics"
	"municipal/internal/debt/models"
	id "municipal/pkg/domain"
	dErrors "municipal/pkg/domain-errors"
	"municipal/pkg/platform/audit"
	"municipal/pkg/platform/sentinel"
	txcontext "municipal/pkg/platform/tx"
	"municipal/pkg/requestcontext"
)

// Store persists debts. Execute must serialise callbacks per id and discard
// every change when the callback fails or ctx ends, unless the callback called
// txcontext.MarkIrreversible.
type Store interface {
	NextID(ctx context.Context) (id.DebtID, error)
	Insert(ctx context.Context, d *models.Debt) error
	FindByID(ctx context.Context, debtID id.DebtID) (*models.Debt, error)
	ListByCitizen(ctx context.Context, citizenID id.CitizenID, status models.Status) ([]*models.Debt, error)
	Execute(ctx context.Context, debtID id.DebtID, fn func(ctx context.Context, d *models.Debt) error) (*models.Debt, error)
}

type CitizenDirectory interface {
	EnsureRegistered(ctx context.Context, citizenID id.CitizenID) error
}

type Notifier interface {
	Notify(ctx context.Context, citizenID id.CitizenID, message string) error
}

// ReminderScheduler books installment reminders. It is called after the plan
// commits; failures are logged and never undo the plan.
type ReminderScheduler interface {
	Schedule(ctx context.Context, debtID id.DebtID, installmentCount int) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the debt ledger.
type Service struct {
	store          Store
	citizens       CitizenDirectory
	notifier       Notifier
	reminders      ReminderScheduler
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithCitizenDirectory(citizens CitizenDirectory) Option {
	return func(s *Service) {
		s.citizens = citizens
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithReminderScheduler(r ReminderScheduler) Option {
	return func(s *Service) {
		s.reminders = r
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assess registers a new PENDING debt for a citizen.
func (s *Service) Assess(ctx context.Context, a models.Assessment) (*models.Debt, error) {
	if a.CitizenID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "citizen id is required")
	}
	if err := s.ensureCitizen(ctx, a.CitizenID); err != nil {
		return nil, err
	}
	debtID, err := s.store.NextID(ctx)
	if err != nil {
		return nil, s.translate(err, "failed to issue debt id")
	}
	d, err := models.NewDebt(debtID, a, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	if err := s.store.Insert(ctx, d); err != nil {
		return nil, s.translate(err, "failed to assess debt")
	}

	s.logAudit(ctx, audit.EventDebtAssessed, d, models.ReasonAssessed, d.TotalAmount().StringFixed(id.Cents))
	if s.metrics != nil {
		s.metrics.IncrementAssessed(string(d.Type))
	}
	s.notify(ctx, d.CitizenID, fmt.Sprintf("New %s debt for period %s. Total: %s", d.Type, d.Period, d.TotalAmount().StringFixed(id.Cents)))
	return d, nil
}

// Get returns a debt by id.
func (s *Service) Get(ctx context.Context, debtID id.DebtID) (*models.Debt, error) {
	d, err := s.store.FindByID(ctx, debtID)
	if err != nil {
		return nil, s.translate(err, "failed to load debt")
	}
	return d, nil
}

// ListByCitizen returns every debt of the citizen regardless of status.
func (s *Service) ListByCitizen(ctx context.Context, citizenID id.CitizenID) ([]*models.Debt, error) {
	return s.list(ctx, citizenID, "")
}

// ListOutstanding returns the citizen's PENDING debts.
func (s *Service) ListOutstanding(ctx context.Context, citizenID id.CitizenID) ([]*models.Debt, error) {
	return s.list(ctx, citizenID, models.StatusPending)
}

func (s *Service) list(ctx context.Context, citizenID id.CitizenID, status models.Status) ([]*models.Debt, error) {
	if err := s.ensureCitizen(ctx, citizenID); err != nil {
		return nil, err
	}
	list, err := s.store.ListByCitizen(ctx, citizenID, status)
	if err != nil {
		return nil, s.translate(err, "failed to list debts")
	}
	return list, nil
}

// Settle marks a PENDING debt as PAID. A second call fails with InvalidState.
func (s *Service) Settle(ctx context.Context, debtID id.DebtID) (*models.Debt, error) {
	now := requestcontext.Now(ctx)
	d, err := s.store.Execute(ctx, debtID, func(ctx context.Context, d *models.Debt) error {
		if err := d.CanSettle(); err != nil {
			return err
		}
		d.ApplySettlement(models.ReasonSettled, now)
		return nil
	})
	if err != nil {
		return nil, s.translate(err, "failed to settle debt")
	}
	s.settled(ctx, d, models.ReasonSettled, "manual")
	return d, nil
}

// SettlePayment marks the debt PAID once authorize succeeds. The amount must
// equal the debt total. authorize runs under the debt's lock and its error is
// returned unchanged with nothing written. Once authorize succeeds the payment
// is recorded even if ctx ends.
func (s *Service) SettlePayment(ctx context.Context, debtID id.DebtID, amount decimal.Decimal, authorize func(ctx context.Context) error) (*models.Debt, error) {
	now := requestcontext.Now(ctx)
	var authErr error
	d, err := s.store.Execute(ctx, debtID, func(ctx context.Context, d *models.Debt) error {
		if err := d.CanSettleAmount(amount); err != nil {
			return err
		}
		if err := authorize(ctx); err != nil {
			authErr = err
			return err
		}
		txcontext.MarkIrreversible(ctx)
		d.ApplySettlement(models.ReasonPaymentConfirmed, now)
		return nil
	})
	if authErr != nil {
		return nil, authErr
	}
	if err != nil {
		return nil, s.translate(err, "failed to settle debt")
	}
	s.settled(context.WithoutCancel(ctx), d, models.ReasonPaymentConfirmed, "payment")
	return d, nil
}

// CreateInstallmentPlan splits a PENDING debt into n monthly installments.
// The plan and the status change commit together; reminders are booked after.
func (s *Service) CreateInstallmentPlan(ctx context.Context, debtID id.DebtID, n int) (*models.Debt, error) {
	if err := models.ValidateInstallmentCount(n); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	d, err := s.store.Execute(ctx, debtID, func(ctx context.Context, d *models.Debt) error {
		if err := d.CanCreatePlan(n); err != nil {
			return err
		}
		return d.ApplyPlan(n, now)
	})
	if err != nil {
		return nil, s.translate(err, "failed to create installment plan")
	}

	s.logAudit(ctx, audit.EventInstallmentPlanCreated, d, models.ReasonInstallmentPlan, d.Plan.TotalAmount.StringFixed(id.Cents))
	if s.metrics != nil {
		s.metrics.ObservePlan(n)
	}
	if s.reminders != nil {
		if err := s.reminders.Schedule(ctx, d.ID, n); err != nil {
			if s.metrics != nil {
				s.metrics.IncrementReminderFailed()
			}
			s.logger.WarnContext(ctx, "installment reminders not scheduled",
				"debt_id", d.ID,
				"installments", n,
				"error", err,
			)
		}
	}
	s.notify(ctx, d.CitizenID, fmt.Sprintf("Installment plan created: %d payments of %s",
		n, d.Plan.InstallmentAmount.StringFixed(id.Cents)))
	return d, nil
}

// ExportStatement renders every debt of the citizen as an .xlsx workbook.
func (s *Service) ExportStatement(ctx context.Context, citizenID id.CitizenID) ([]byte, error) {
	debts, err := s.ListByCitizen(ctx, citizenID)
	if err != nil {
		return nil, err
	}
	body, err := export.Statement(citizenID, debts, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render statement")
	}
	return body, nil
}

func (s *Service) settled(ctx context.Context, d *models.Debt, reason, path string) {
	s.logAudit(ctx, audit.EventDebtSettled, d, reason, d.TotalAmount().StringFixed(id.Cents))
	if s.metrics != nil {
		s.metrics.IncrementSettled(path)
	}
	s.notify(ctx, d.CitizenID, fmt.Sprintf("Debt %d for period %s is paid", int64(d.ID), d.Period))
}

func (s *Service) ensureCitizen(ctx context.Context, citizenID id.CitizenID) error {
	if s.citizens == nil {
		return nil
	}
	return s.citizens.EnsureRegistered(ctx, citizenID)
}

func (s *Service) notify(ctx context.Context, citizenID id.CitizenID, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, citizenID, message); err != nil {
		s.logger.WarnContext(ctx, "notification failed",
			"citizen_id", citizenID,
			"error", err,
		)
	}
}

func (s *Service) translate(err error, msg string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "debt not found")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "operation cancelled")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, d *models.Debt, reason, amount string) {
	requestID := requestcontext.RequestID(ctx)
	s.logger.InfoContext(ctx, string(event),
		"debt_id", d.ID,
		"citizen_id", d.CitizenID,
		"status", d.Status,
		"request_id", requestID,
		"log_type", "audit",
	)
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		CitizenID: d.CitizenID,
		Subject:   fmt.Sprintf("debt:%d", int64(d.ID)),
		Action:    string(event),
		Reason:    reason,
		Amount:    amount,
		RequestID: requestID,
	})
}
