package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"municipal/internal/procedure/metrics"
	"municipal/internal/procedure/models"
	id "municipal/pkg/domain"
	dErrors "municipal/pkg/domain-errors"
	"municipal/pkg/platform/audit"
	"municipal/pkg/platform/sentinel"
	txcontext "municipal/pkg/platform/tx"
	"municipal/pkg/requestcontext"
)

// maxFileNumberAttempts bounds retries when a generated file number is taken.
const maxFileNumberAttempts = 5

// Store persists procedures. Execute must serialise callbacks per id and
// discard every change when the callback fails or ctx ends, unless the
// callback called txcontext.MarkIrreversible.
type Store interface {
	NextID(ctx context.Context) (id.ProcedureID, error)
	Insert(ctx context.Context, p *models.Procedure) error
	FindByID(ctx context.Context, procedureID id.ProcedureID) (*models.Procedure, error)
	FindByFileNumber(ctx context.Context, fileNumber string) (*models.Procedure, error)
	ListByCitizen(ctx context.Context, citizenID id.CitizenID) ([]*models.Procedure, error)
	Execute(ctx context.Context, procedureID id.ProcedureID, fn func(ctx context.Context, p *models.Procedure) error) (*models.Procedure, error)
}

// CitizenDirectory validates citizen references.
type CitizenDirectory interface {
	EnsureRegistered(ctx context.Context, citizenID id.CitizenID) error
}

// Notifier delivers citizen-facing messages. Failures are logged, never returned.
type Notifier interface {
	Notify(ctx context.Context, citizenID id.CitizenID, message string) error
}

// Refunder returns money for a procedure cancelled with an amount due.
type Refunder interface {
	Refund(ctx context.Context, reference string, amount decimal.Decimal) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the procedure ledger.
type Service struct {
	store          Store
	citizens       CitizenDirectory
	notifier       Notifier
	refunder       Refunder
	fileNumbers    models.FileNumberGenerator
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

// WithCitizenDirectory makes Open and the listings reject unknown citizens.
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

// WithRefunder sets the refund collaborator used when cancelling a procedure
// that still has an amount due. Without one such cancellations fail with
// InvalidState.
func WithRefunder(r Refunder) Option {
	return func(s *Service) {
		s.refunder = r
	}
}

func WithFileNumberGenerator(gen models.FileNumberGenerator) Option {
	return func(s *Service) {
		s.fileNumbers = gen
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		fileNumbers: models.RandomFileNumber,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open registers a new PENDING procedure for a citizen and charges the fee
// for its type.
func (s *Service) Open(ctx context.Context, citizenID id.CitizenID, rawType, description string) (*models.Procedure, error) {
	procType := models.ParseType(rawType)
	description = strings.TrimSpace(description)
	if citizenID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "citizen id is required")
	}
	if procType == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "procedure type is required")
	}
	if description == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "description is required")
	}
	if err := s.ensureCitizen(ctx, citizenID); err != nil {
		return nil, err
	}

	procedureID, err := s.store.NextID(ctx)
	if err != nil {
		return nil, s.translate(err, "failed to issue procedure id")
	}

	now := requestcontext.Now(ctx)
	var p *models.Procedure
	for attempt := 1; ; attempt++ {
		p, err = models.NewProcedure(procedureID, s.fileNumbers(now), citizenID, procType, description, models.FeeFor(procType), now)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
				return nil, dErrors.New(dErrors.CodeValidation, err.Error())
			}
			return nil, err
		}
		err = s.store.Insert(ctx, p)
		if err == nil {
			break
		}
		if !errors.Is(err, sentinel.ErrConflict) {
			return nil, s.translate(err, "failed to open procedure")
		}
		if attempt == maxFileNumberAttempts {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "could not allocate a unique file number")
		}
		s.logger.WarnContext(ctx, "file number collision, retrying",
			"file_number", p.FileNumber,
			"attempt", attempt,
		)
	}

	s.logAudit(ctx, audit.EventProcedureOpened, p, models.ReasonOpened, "")
	if s.metrics != nil {
		s.metrics.IncrementOpened(string(p.Type))
	}
	s.notify(ctx, p.CitizenID, fmt.Sprintf("Procedure %s opened. Amount due: %s", p.FileNumber, p.AmountDue.StringFixed(id.Cents)))
	return p, nil
}

// Transition moves a procedure along a legal edge and appends the history
// entry in the same atomic step. Moving to CANCELLED with an amount due runs
// the refund first; if the refund fails nothing changes.
func (s *Service) Transition(ctx context.Context, procedureID id.ProcedureID, next models.Status, reason string) (*models.Procedure, error) {
	start := time.Now()
	defer s.observeTransition(start)

	if !next.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown procedure status %q", next)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "status changed to " + next.String()
	}

	now := requestcontext.Now(ctx)
	var refunded decimal.Decimal
	p, err := s.store.Execute(ctx, procedureID, func(ctx context.Context, p *models.Procedure) error {
		if err := p.CanTransition(next); err != nil {
			return err
		}
		if next == models.StatusCancelled && p.NeedsRefund() {
			if err := s.refund(ctx, p); err != nil {
				return err
			}
			refunded = p.AmountDue
		}
		p.ApplyTransition(next, reason, now)
		return nil
	})
	if err != nil {
		return nil, s.translate(err, "failed to update procedure")
	}

	if refunded.IsPositive() {
		ctx = context.WithoutCancel(ctx)
		s.logAudit(ctx, audit.EventRefundIssued, p, reason, refunded.StringFixed(id.Cents))
	}
	event := audit.EventProcedureTransitioned
	if next == models.StatusCancelled {
		event = audit.EventProcedureCancelled
	}
	s.logAudit(ctx, event, p, reason, "")
	if s.metrics != nil {
		s.metrics.IncrementTransition(next.String())
	}
	s.notify(ctx, p.CitizenID, fmt.Sprintf("Procedure %s is now %s: %s", p.FileNumber, p.Status, reason))
	return p, nil
}

// Cancel is Transition to CANCELLED with the user cancellation reason.
func (s *Service) Cancel(ctx context.Context, procedureID id.ProcedureID) (*models.Procedure, error) {
	return s.Transition(ctx, procedureID, models.StatusCancelled, models.ReasonUserCancellation)
}

// SettlePayment zeroes the amount due once authorize succeeds. The checks and
// authorize run under the procedure's lock, so two concurrent payments can
// never both be charged. An error from authorize is returned unchanged and
// nothing is written. A successful authorization is always recorded, even if
// ctx ends before the write.
func (s *Service) SettlePayment(ctx context.Context, procedureID id.ProcedureID, amount decimal.Decimal, authorize func(ctx context.Context) error) (*models.Procedure, error) {
	now := requestcontext.Now(ctx)
	var authErr error
	p, err := s.store.Execute(ctx, procedureID, func(ctx context.Context, p *models.Procedure) error {
		if err := p.CanSettle(amount); err != nil {
			return err
		}
		if err := authorize(ctx); err != nil {
			authErr = err
			return err
		}
		txcontext.MarkIrreversible(ctx)
		p.ApplySettlement(now)
		return nil
	})
	if authErr != nil {
		return nil, authErr
	}
	if err != nil {
		return nil, s.translate(err, "failed to settle procedure")
	}

	s.notify(context.WithoutCancel(ctx), p.CitizenID, fmt.Sprintf("Payment confirmed for procedure %s, now under review", p.FileNumber))
	return p, nil
}

// Get returns a procedure by id.
func (s *Service) Get(ctx context.Context, procedureID id.ProcedureID) (*models.Procedure, error) {
	p, err := s.store.FindByID(ctx, procedureID)
	if err != nil {
		return nil, s.translate(err, "failed to load procedure")
	}
	return p, nil
}

// FindByFileNumber returns the procedure with the given file number.
func (s *Service) FindByFileNumber(ctx context.Context, fileNumber string) (*models.Procedure, error) {
	fileNumber = strings.ToUpper(strings.TrimSpace(fileNumber))
	if !models.IsFileNumber(fileNumber) {
		return nil, dErrors.New(dErrors.CodeNotFound, "procedure not found")
	}
	p, err := s.store.FindByFileNumber(ctx, fileNumber)
	if err != nil {
		return nil, s.translate(err, "failed to load procedure")
	}
	return p, nil
}

// ListByCitizen returns the citizen's procedures ordered by start time.
func (s *Service) ListByCitizen(ctx context.Context, citizenID id.CitizenID) ([]*models.Procedure, error) {
	if err := s.ensureCitizen(ctx, citizenID); err != nil {
		return nil, err
	}
	list, err := s.store.ListByCitizen(ctx, citizenID)
	if err != nil {
		return nil, s.translate(err, "failed to list procedures")
	}
	return list, nil
}

// ListPendingPayment returns the citizen's open procedures that still have
// an amount due.
func (s *Service) ListPendingPayment(ctx context.Context, citizenID id.CitizenID) ([]*models.Procedure, error) {
	list, err := s.ListByCitizen(ctx, citizenID)
	if err != nil {
		return nil, err
	}
	pending := make([]*models.Procedure, 0, len(list))
	for _, p := range list {
		if p.Status.IsOpen() && p.AmountDue.IsPositive() {
			pending = append(pending, p)
		}
	}
	return pending, nil
}

func (s *Service) refund(ctx context.Context, p *models.Procedure) error {
	if s.refunder == nil {
		s.logger.WarnContext(ctx, "no refunder configured, cancellation rejected",
			"file_number", p.FileNumber,
			"amount", p.AmountDue.StringFixed(id.Cents),
		)
		return dErrors.New(dErrors.CodeInvalidState, "refund unavailable, procedure not cancelled")
	}
	if err := s.refunder.Refund(ctx, p.FileNumber, p.AmountDue); err != nil {
		if s.metrics != nil {
			s.metrics.IncrementRefundFailed()
		}
		if ctx.Err() != nil {
			return err
		}
		s.logger.WarnContext(ctx, "refund failed, cancellation rejected",
			"file_number", p.FileNumber,
			"amount", p.AmountDue.StringFixed(id.Cents),
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeInvalidState, "refund failed, procedure not cancelled")
	}
	txcontext.MarkIrreversible(ctx)
	return nil
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

// translate maps store and context failures onto coded errors. Coded errors
// raised inside Execute callbacks pass through.
func (s *Service) translate(err error, msg string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "procedure not found")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "operation cancelled")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, p *models.Procedure, reason, amount string) {
	requestID := requestcontext.RequestID(ctx)
	s.logger.InfoContext(ctx, string(event),
		"procedure_id", p.ID,
		"file_number", p.FileNumber,
		"citizen_id", p.CitizenID,
		"status", p.Status,
		"request_id", requestID,
		"log_type", "audit",
	)
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		CitizenID: p.CitizenID,
		Subject:   "procedure:" + p.FileNumber,
		Action:    string(event),
		Reason:    reason,
		Amount:    amount,
		RequestID: requestID,
	})
}

func (s *Service) observeTransition(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveTransition(start)
	}
}
