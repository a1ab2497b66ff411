package audit

import (
	"context"
	"time"

	id "municipal/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// Categories drive retention: financial records are kept longest.
type EventCategory string

const (
	// CategoryFinancial covers money movement: approved payments, refunds,
	// debt settlement and installment plans.
	CategoryFinancial EventCategory = "financial"

	// CategoryCompliance covers events with administrative significance:
	// citizen registration and procedure cancellation.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine lifecycle activity and declined
	// payment attempts. These can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain services after a state change commits. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	CitizenID id.CitizenID
	// Subject names the entity acted on, e.g. "procedure:12" or "debt:3".
	Subject   string
	Action    string
	Reason    string
	Amount    string
	ReceiptID string
	RequestID string
}

type AuditEvent string

const (
	EventCitizenRegistered AuditEvent = "citizen_registered"

	EventProcedureOpened       AuditEvent = "procedure_opened"
	EventProcedureTransitioned AuditEvent = "procedure_transitioned"
	EventProcedureCancelled    AuditEvent = "procedure_cancelled"
	EventRefundIssued          AuditEvent = "refund_issued"

	EventDebtAssessed           AuditEvent = "debt_assessed"
	EventDebtSettled            AuditEvent = "debt_settled"
	EventInstallmentPlanCreated AuditEvent = "installment_plan_created"

	EventPaymentApproved       AuditEvent = "payment_approved"
	EventPaymentDeclined       AuditEvent = "payment_declined"
	EventPaymentRetryScheduled AuditEvent = "payment_retry_scheduled"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventPaymentApproved:        CategoryFinancial,
	EventRefundIssued:           CategoryFinancial,
	EventDebtSettled:            CategoryFinancial,
	EventInstallmentPlanCreated: CategoryFinancial,

	EventCitizenRegistered:  CategoryCompliance,
	EventProcedureCancelled: CategoryCompliance,
	EventDebtAssessed:       CategoryCompliance,

	EventProcedureOpened:       CategoryOperations,
	EventProcedureTransitioned: CategoryOperations,
	EventPaymentDeclined:       CategoryOperations,
	EventPaymentRetryScheduled: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByCitizen(ctx context.Context, citizenID id.CitizenID) ([]Event, error)
}
