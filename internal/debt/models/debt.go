package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	id "municipal/pkg/domain"
	dErrors "municipal/pkg/domain-errors"
)

// Status is the settlement state of a debt.
type Status string

const (
	StatusPending         Status = "PENDING"
	StatusPaid            Status = "PAID"
	StatusInstallmentPlan Status = "INSTALLMENT_PLAN"
)

const (
	ReasonAssessed         = "assessed"
	ReasonSettled          = "settled"
	ReasonPaymentConfirmed = "payment confirmed"
	ReasonInstallmentPlan  = "installment plan created"
)

// Type names the kind of debt, e.g. ARBITRIOS or MULTA_TRANSITO.
type Type string

func ParseType(s string) Type {
	return Type(strings.ToUpper(strings.TrimSpace(s)))
}

type HistoryEntry struct {
	PreviousStatus *Status   `json:"previous_status,omitempty"`
	NewStatus      Status    `json:"new_status"`
	Timestamp      time.Time `json:"timestamp"`
	Reason         string    `json:"reason"`
}

// Debt is an amount a citizen owes the municipality.
//
// Invariants:
//   - the total is always BaseAmount + LateInterest, never stored separately
//   - Status leaves PENDING at most once, to PAID or INSTALLMENT_PLAN
//   - Plan is set exactly when Status is INSTALLMENT_PLAN
type Debt struct {
	ID           id.DebtID        `json:"id"`
	CitizenID    id.CitizenID     `json:"citizen_id"`
	Type         Type             `json:"type"`
	BaseAmount   decimal.Decimal  `json:"base_amount"`
	LateInterest decimal.Decimal  `json:"late_interest"`
	Period       string           `json:"period"`
	DueDate      time.Time        `json:"due_date"`
	Status       Status           `json:"status"`
	Plan         *InstallmentPlan `json:"plan,omitempty"`
	History      []HistoryEntry   `json:"history"`
	CreatedAt    time.Time        `json:"created_at"`
}

// Assessment carries the fields of a new debt.
type Assessment struct {
	CitizenID    id.CitizenID
	Type         Type
	BaseAmount   decimal.Decimal
	LateInterest decimal.Decimal
	Period       string
	DueDate      time.Time
}

func NewDebt(debtID id.DebtID, a Assessment, now time.Time) (*Debt, error) {
	if debtID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "debt id is required")
	}
	if a.CitizenID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "citizen id is required")
	}
	if a.Type == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "debt type is required")
	}
	if !a.BaseAmount.IsPositive() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "base amount must be positive")
	}
	if a.LateInterest.IsNegative() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "late interest cannot be negative")
	}
	if strings.TrimSpace(a.Period) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "period is required")
	}
	if a.DueDate.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "due date is required")
	}
	return &Debt{
		ID:           debtID,
		CitizenID:    a.CitizenID,
		Type:         a.Type,
		BaseAmount:   id.RoundMoney(a.BaseAmount),
		LateInterest: id.RoundMoney(a.LateInterest),
		Period:       strings.TrimSpace(a.Period),
		DueDate:      a.DueDate,
		Status:       StatusPending,
		History: []HistoryEntry{{
			NewStatus: StatusPending,
			Timestamp: now,
			Reason:    ReasonAssessed,
		}},
		CreatedAt: now,
	}, nil
}

// TotalAmount is base plus late interest.
func (d *Debt) TotalAmount() decimal.Decimal {
	return id.RoundMoney(d.BaseAmount.Add(d.LateInterest))
}

func (d *Debt) IsOutstanding() bool {
	return d.Status == StatusPending
}

// CanSettle checks the debt is still pending.
func (d *Debt) CanSettle() error {
	if d.Status != StatusPending {
		return dErrors.Newf(dErrors.CodeInvalidState, "debt is %s", d.Status)
	}
	return nil
}

// CanSettleAmount additionally requires amount to equal the total exactly.
func (d *Debt) CanSettleAmount(amount decimal.Decimal) error {
	if err := d.CanSettle(); err != nil {
		return err
	}
	if !id.RoundMoney(amount).Equal(d.TotalAmount()) {
		return dErrors.Newf(dErrors.CodeValidation, "amount %s does not match debt total %s",
			id.RoundMoney(amount).StringFixed(id.Cents), d.TotalAmount().StringFixed(id.Cents))
	}
	return nil
}

// ApplySettlement marks the debt PAID. Call CanSettle first.
func (d *Debt) ApplySettlement(reason string, now time.Time) {
	d.moveTo(StatusPaid, reason, now)
}

// CanCreatePlan checks both the count and the status.
func (d *Debt) CanCreatePlan(n int) error {
	if err := ValidateInstallmentCount(n); err != nil {
		return err
	}
	if d.Plan != nil {
		return dErrors.New(dErrors.CodeInvalidState, "debt already has an installment plan")
	}
	return d.CanSettle()
}

// ApplyPlan attaches a plan and moves the debt to INSTALLMENT_PLAN.
// Call CanCreatePlan first.
func (d *Debt) ApplyPlan(n int, now time.Time) error {
	plan, err := NewInstallmentPlan(d.ID, d.TotalAmount(), n, now)
	if err != nil {
		return err
	}
	d.Plan = plan
	d.moveTo(StatusInstallmentPlan, ReasonInstallmentPlan, now)
	return nil
}

func (d *Debt) moveTo(next Status, reason string, now time.Time) {
	prev := d.Status
	d.History = append(d.History, HistoryEntry{
		PreviousStatus: &prev,
		NewStatus:      next,
		Timestamp:      now,
		Reason:         reason,
	})
	d.Status = next
}

// Clone returns a deep copy.
func (d *Debt) Clone() *Debt {
	cp := *d
	if d.Plan != nil {
		plan := *d.Plan
		cp.Plan = &plan
	}
	cp.History = make([]HistoryEntry, len(d.History))
	for i, h := range d.History {
		cp.History[i] = h
		if h.PreviousStatus != nil {
			prev := *h.PreviousStatus
			cp.History[i].PreviousStatus = &prev
		}
	}
	return &cp
}
