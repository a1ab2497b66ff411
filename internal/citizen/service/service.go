package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"municipal/internal/citizen/metrics"
	"municipal/internal/citizen/models"
	id "municipal/pkg/domain"
	dErrors "municipal/pkg/domain-errors"
	"municipal/pkg/platform/audit"
	"municipal/pkg/platform/sentinel"
	"municipal/pkg/requestcontext"
)

// Store persists citizen records. Insert must reject a taken id or national
// id with sentinel.ErrConflict.
type Store interface {
	NextID(ctx context.Context) (id.CitizenID, error)
	Insert(ctx context.Context, citizen *models.Citizen) error
	FindByID(ctx context.Context, citizenID id.CitizenID) (*models.Citizen, error)
	FindByNationalID(ctx context.Context, nationalID id.NationalID) (*models.Citizen, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the citizen registry.
type Service struct {
	store          Store
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

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates and stores a new citizen under a freshly issued id.
func (s *Service) Register(ctx context.Context, reg models.Registration) (*models.Citizen, error) {
	start := time.Now()
	defer s.observeRegister(start)

	reg.Normalize()
	nationalID, err := id.ParseNationalID(reg.NationalID)
	if err != nil {
		return nil, err
	}

	citizenID, err := s.store.NextID(ctx)
	if err != nil {
		return nil, storeError(err, "failed to issue citizen id")
	}

	citizen, err := models.NewCitizen(citizenID, nationalID, reg, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if err := s.store.Insert(ctx, citizen); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "national id is already registered")
		}
		return nil, storeError(err, "failed to register citizen")
	}

	s.logAudit(ctx, audit.EventCitizenRegistered, citizen.ID)
	s.incrementRegistered()
	return citizen, nil
}

// Get returns a registered citizen.
func (s *Service) Get(ctx context.Context, citizenID id.CitizenID) (*models.Citizen, error) {
	citizen, err := s.store.FindByID(ctx, citizenID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "citizen not found")
		}
		return nil, storeError(err, "failed to load citizen")
	}
	return citizen, nil
}

// FindByNationalID looks a citizen up by document number.
func (s *Service) FindByNationalID(ctx context.Context, raw string) (*models.Citizen, error) {
	nationalID, err := id.ParseNationalID(raw)
	if err != nil {
		return nil, err
	}
	citizen, err := s.store.FindByNationalID(ctx, nationalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "citizen not found")
		}
		return nil, storeError(err, "failed to load citizen")
	}
	return citizen, nil
}

// EnsureRegistered returns a not_found error unless the citizen exists.
// Other modules use it to validate references before creating entities.
func (s *Service) EnsureRegistered(ctx context.Context, citizenID id.CitizenID) error {
	_, err := s.Get(ctx, citizenID)
	return err
}

func storeError(err error, msg string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "operation cancelled")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, citizenID id.CitizenID) {
	requestID := requestcontext.RequestID(ctx)
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event),
			"citizen_id", citizenID,
			"request_id", requestID,
			"event", string(event),
			"log_type", "audit",
		)
	}
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		CitizenID: citizenID,
		Subject:   "citizen:" + citizenID.String(),
		Action:    string(event),
		RequestID: requestID,
	})
}

func (s *Service) observeRegister(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveRegister(start)
	}
}

func (s *Service) incrementRegistered() {
	if s.metrics != nil {
		s.metrics.IncrementRegistered()
	}
}
