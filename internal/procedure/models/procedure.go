package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	id "municipal/pkg/domain"
	dErrors "municipal/pkg/domain-errors"
)

const (
	ReasonOpened           = "opened"
	ReasonUserCancellation = "user cancellation"
	ReasonPaymentConfirmed = "payment confirmed"
)

// HistoryEntry records one status change. PreviousStatus is nil only for the
// entry written when the procedure is opened.
type HistoryEntry struct {
	PreviousStatus *Status   `json:"previous_status,omitempty"`
	NewStatus      Status    `json:"new_status"`
	Timestamp      time.Time `json:"timestamp"`
	Reason         string    `json:"reason"`
}

// Procedure is a citizen's administrative procedure.
//
// Invariants:
//   - FileNumber is set at construction and never changes
//   - History is append-only and its last entry matches Status
//   - CompletedAt is set exactly when Status is COMPLETED
//   - AmountDue is never negative and only ever drops to zero
type Procedure struct {
	ID          id.ProcedureID  `json:"id"`
	FileNumber  string          `json:"file_number"`
	CitizenID   id.CitizenID    `json:"citizen_id"`
	Type        Type            `json:"type"`
	Description string          `json:"description"`
	Status      Status          `json:"status"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	AmountDue   decimal.Decimal `json:"amount_due"`
	History     []HistoryEntry  `json:"history"`
}

// NewProcedure opens a procedure in PENDING with its initial history entry.
func NewProcedure(procedureID id.ProcedureID, fileNumber string, citizenID id.CitizenID, procType Type, description string, amountDue decimal.Decimal, now time.Time) (*Procedure, error) {
	if procedureID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "procedure id is required")
	}
	if citizenID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "citizen id is required")
	}
	if !IsFileNumber(fileNumber) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "malformed file number")
	}
	if procType == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "procedure type is required")
	}
	if strings.TrimSpace(description) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "description is required")
	}
	if amountDue.IsNegative() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "amount due cannot be negative")
	}
	return &Procedure{
		ID:          procedureID,
		FileNumber:  fileNumber,
		CitizenID:   citizenID,
		Type:        procType,
		Description: description,
		Status:      StatusPending,
		StartedAt:   now,
		AmountDue:   id.RoundMoney(amountDue),
		History: []HistoryEntry{{
			NewStatus: StatusPending,
			Timestamp: now,
			Reason:    ReasonOpened,
		}},
	}, nil
}

// CanTransition checks the edge without mutating anything.
// Use with ApplyTransition in Execute callbacks.
func (p *Procedure) CanTransition(next Status) error {
	if !next.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown procedure status %q", next)
	}
	if !p.Status.CanTransitionTo(next) {
		return dErrors.Newf(dErrors.CodeInvalidState, "cannot move procedure from %s to %s", p.Status, next)
	}
	return nil
}

// ApplyTransition flips the status and appends the matching history entry.
// Call CanTransition first.
func (p *Procedure) ApplyTransition(next Status, reason string, now time.Time) {
	p.appendHistory(next, reason, now)
	p.Status = next
	if next == StatusCompleted {
		completed := now
		p.CompletedAt = &completed
	}
}

// Transition validates and applies in one call.
func (p *Procedure) Transition(next Status, reason string, now time.Time) error {
	if err := p.CanTransition(next); err != nil {
		return err
	}
	p.ApplyTransition(next, reason, now)
	return nil
}

// NeedsRefund is true when cancelling must return money to the citizen first.
func (p *Procedure) NeedsRefund() bool {
	return p.AmountDue.IsPositive()
}

// CanSettle checks that amount settles the procedure exactly.
func (p *Procedure) CanSettle(amount decimal.Decimal) error {
	if !p.Status.IsOpen() {
		return dErrors.Newf(dErrors.CodeInvalidState, "procedure is %s", p.Status)
	}
	if !p.AmountDue.IsPositive() {
		return dErrors.New(dErrors.CodeInvalidState, "procedure has nothing due")
	}
	if !id.RoundMoney(amount).Equal(p.AmountDue) {
		return dErrors.Newf(dErrors.CodeValidation, "amount %s does not match amount due %s",
			id.RoundMoney(amount).StringFixed(id.Cents), p.AmountDue.StringFixed(id.Cents))
	}
	return nil
}

// ApplySettlement zeroes the amount due. A PENDING procedure moves to
// IN_REVIEW; one already in review gets a history entry without a status change.
func (p *Procedure) ApplySettlement(now time.Time) {
	p.AmountDue = decimal.Zero
	if p.Status == StatusPending {
		p.ApplyTransition(StatusInReview, ReasonPaymentConfirmed, now)
		return
	}
	p.appendHistory(p.Status, ReasonPaymentConfirmed, now)
}

func (p *Procedure) appendHistory(next Status, reason string, now time.Time) {
	prev := p.Status
	p.History = append(p.History, HistoryEntry{
		PreviousStatus: &prev,
		NewStatus:      next,
		Timestamp:      now,
		Reason:         reason,
	})
}

// Clone returns a deep copy.
func (p *Procedure) Clone() *Procedure {
	cp := *p
	if p.CompletedAt != nil {
		completed := *p.CompletedAt
		cp.CompletedAt = &completed
	}
	cp.History = make([]HistoryEntry, len(p.History))
	for i, h := range p.History {
		cp.History[i] = h
		if h.PreviousStatus != nil {
			prev := *h.PreviousStatus
			cp.History[i].PreviousStatus = &prev
		}
	}
	return &cp
}
