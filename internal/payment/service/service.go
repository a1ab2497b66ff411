package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"municipal/internal/payment/metrics"
	"municipal/internal/payment/models"
	"municipal/internal/payment/ports"
	"municipal/internal/payment/retry"
	id "municipal/pkg/domain"
	dErrors "municipal/pkg/domain-errors"
	"municipal/pkg/platform/audit"
	"municipal/pkg/requestcontext"
)

const (
	tracerName = "municipal/internal/payment"

	DefaultRetryDelay  = 30 * time.Second
	DefaultMaxAttempts = 3

	defaultDeclineReason = "payment declined"
)

// errDeclined aborts the ledger's locked settle step when the gateway says no.
var errDeclined = errors.New("payment declined by gateway")

// Service is the payment processor. Every Pay makes exactly one gateway call;
// declines are recorded as retry directives for the retry worker.
type Service struct {
	gateway        ports.Gateway
	procedures     ports.ProcedureLedger
	debts          ports.DebtLedger
	retries        ports.RetryQueue
	retryDelay     time.Duration
	maxAttempts    int
	receipts       func(time.Time) string
	tracer         trace.Tracer
	logger         *slog.Logger
	auditPublisher ports.AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithRetryQueue replaces the default in-memory retry queue.
func WithRetryQueue(q ports.RetryQueue) Option {
	return func(s *Service) {
		s.retries = q
	}
}

// WithRetryPolicy sets the delay before a declined payment is retried and
// the attempt number after which no retry is scheduled.
func WithRetryPolicy(delay time.Duration, maxAttempts int) Option {
	return func(s *Service) {
		if delay > 0 {
			s.retryDelay = delay
		}
		if maxAttempts > 0 {
			s.maxAttempts = maxAttempts
		}
	}
}

func WithReceiptGenerator(gen func(time.Time) string) Option {
	return func(s *Service) {
		s.receipts = gen
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func New(gateway ports.Gateway, procedures ports.ProcedureLedger, debts ports.DebtLedger, opts ...Option) *Service {
	s := &Service{
		gateway:     gateway,
		procedures:  procedures,
		debts:       debts,
		retryDelay:  DefaultRetryDelay,
		maxAttempts: DefaultMaxAttempts,
		receipts:    models.NewReceiptID,
		tracer:      otel.Tracer(tracerName),
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.retries == nil {
		s.retries = retry.NewMemoryQueue()
	}
	return s
}

// Pay runs one payment attempt against a procedure or a debt.
//
// Validation failures, unknown targets and state conflicts are errors. A
// gateway decline is not: it returns an Outcome with Success false and, while
// attempts remain, a scheduled retry.
func (s *Service) Pay(ctx context.Context, req models.Request) (*models.Outcome, error) {
	req.Method = strings.ToUpper(strings.TrimSpace(req.Method))
	if req.Attempt <= 0 {
		req.Attempt = 1
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "payment cancelled")
	}

	ctx, span := s.tracer.Start(ctx, "payment.Pay", trace.WithAttributes(
		attribute.String("payment.target", string(req.TargetKind)),
		attribute.Int64("payment.target_id", req.TargetID),
		attribute.String("payment.method", req.Method),
		attribute.String("payment.amount", req.Amount.StringFixed(id.Cents)),
		attribute.Int("payment.attempt", req.Attempt),
	))
	defer span.End()

	var declineReason string
	authorize := func(ctx context.Context) error {
		ctx, gwSpan := s.tracer.Start(ctx, "payment.gateway.Charge")
		defer gwSpan.End()

		charge, err := s.gateway.Charge(ctx, req.Method, req.Amount)
		if err != nil {
			gwSpan.RecordError(err)
			gwSpan.SetStatus(codes.Error, "gateway call failed")
			return err
		}
		gwSpan.SetAttributes(attribute.Bool("payment.approved", charge.Approved))
		if !charge.Approved {
			declineReason = charge.Reason
			return errDeclined
		}
		return nil
	}

	start := time.Now()
	citizenID, err := s.settle(ctx, req, authorize)
	s.observeSettle(start)
	now := requestcontext.Now(ctx)

	if errors.Is(err, errDeclined) {
		span.SetAttributes(attribute.Bool("payment.approved", false))
		return s.declined(ctx, req, declineReason, now), nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		s.countPayment(req, "error")
		return nil, s.translate(err)
	}

	receiptID := s.receipts(now)
	span.SetAttributes(
		attribute.Bool("payment.approved", true),
		attribute.String("payment.receipt_id", receiptID),
	)
	s.countPayment(req, "approved")
	s.logAudit(context.WithoutCancel(ctx), audit.EventPaymentApproved, citizenID, req, "", receiptID)
	return &models.Outcome{
		Success:   true,
		ReceiptID: receiptID,
		Amount:    id.RoundMoney(req.Amount),
		Timestamp: now,
		Attempt:   req.Attempt,
	}, nil
}

func (s *Service) settle(ctx context.Context, req models.Request, authorize func(context.Context) error) (id.CitizenID, error) {
	switch req.TargetKind {
	case models.TargetProcedure:
		p, err := s.procedures.SettlePayment(ctx, req.ProcedureID(), req.Amount, authorize)
		if err != nil {
			return 0, err
		}
		return p.CitizenID, nil
	case models.TargetDebt:
		d, err := s.debts.SettlePayment(ctx, req.DebtID(), req.Amount, authorize)
		if err != nil {
			return 0, err
		}
		return d.CitizenID, nil
	}
	return 0, dErrors.Newf(dErrors.CodeValidation, "unknown payment target %q", req.TargetKind)
}

func (s *Service) declined(ctx context.Context, req models.Request, reason string, now time.Time) *models.Outcome {
	if reason == "" {
		reason = defaultDeclineReason
	}
	out := &models.Outcome{
		Success:   false,
		Amount:    id.RoundMoney(req.Amount),
		Timestamp: now,
		Reason:    reason,
		Attempt:   req.Attempt,
	}
	s.countPayment(req, "declined")
	s.logAudit(ctx, audit.EventPaymentDeclined, 0, req, reason, "")

	if req.Attempt >= s.maxAttempts {
		if s.metrics != nil {
			s.metrics.IncrementRetryExhausted()
		}
		s.logger.WarnContext(ctx, "payment declined, no attempts left",
			"subject", req.Subject(),
			"attempt", req.Attempt,
		)
		return out
	}

	next := req
	next.Attempt++
	directive := models.RetryDirective{
		Request:   next,
		NotBefore: now.Add(s.retryDelay),
		Reason:    reason,
		CreatedAt: now,
	}
	if err := s.retries.Schedule(ctx, directive); err != nil {
		s.logger.WarnContext(ctx, "failed to schedule payment retry",
			"subject", req.Subject(),
			"attempt", next.Attempt,
			"error", err,
		)
		return out
	}
	out.RetryScheduled = true
	out.NextAttemptAt = &directive.NotBefore
	if s.metrics != nil {
		s.metrics.IncrementRetryScheduled()
	}
	s.logAudit(ctx, audit.EventPaymentRetryScheduled, 0, next, reason, "")
	return out
}

func (s *Service) translate(err error) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "payment cancelled")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "payment failed")
}

func (s *Service) countPayment(req models.Request, outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementPayment(string(req.TargetKind), outcome)
	}
}

func (s *Service) observeSettle(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveSettle(start)
	}
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, citizenID id.CitizenID, req models.Request, reason, receiptID string) {
	requestID := requestcontext.RequestID(ctx)
	s.logger.InfoContext(ctx, string(event),
		"subject", req.Subject(),
		"citizen_id", citizenID,
		"amount", req.Amount.StringFixed(id.Cents),
		"attempt", req.Attempt,
		"receipt_id", receiptID,
		"request_id", requestID,
		"log_type", "audit",
	)
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		CitizenID: citizenID,
		Subject:   req.Subject(),
		Action:    string(event),
		Reason:    reason,
		Amount:    req.Amount.StringFixed(id.Cents),
		ReceiptID: receiptID,
		RequestID: requestID,
	})
}
