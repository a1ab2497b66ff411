package handler

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"municipal/internal/debt/models"
	id "municipal/pkg/domain"
	dErrors "municipal/pkg/domain-errors"
)

const dueDateLayout = "2006-01-02"

// AssessRequest is the body of POST /debts. Amounts accept JSON numbers or
// decimal strings.
type AssessRequest struct {
	CitizenID    int64           `json:"citizen_id"`
	Type         string          `json:"type"`
	BaseAmount   decimal.Decimal `json:"base_amount"`
	LateInterest decimal.Decimal `json:"late_interest"`
	Period       string          `json:"period"`
	DueDate      string          `json:"due_date"`

	dueDate time.Time
}

func (r *AssessRequest) Normalize() {
	r.Type = strings.ToUpper(strings.TrimSpace(r.Type))
	r.Period = strings.TrimSpace(r.Period)
	r.DueDate = strings.TrimSpace(r.DueDate)
}

func (r *AssessRequest) Validate() error {
	if r.CitizenID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "citizen_id is required")
	}
	if r.Type == "" {
		return dErrors.New(dErrors.CodeValidation, "type is required")
	}
	if !r.BaseAmount.IsPositive() {
		return dErrors.New(dErrors.CodeValidation, "base_amount must be positive")
	}
	if r.LateInterest.IsNegative() {
		return dErrors.New(dErrors.CodeValidation, "late_interest cannot be negative")
	}
	if r.Period == "" {
		return dErrors.New(dErrors.CodeValidation, "period is required")
	}
	due, err := time.Parse(dueDateLayout, r.DueDate)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "due_date must be formatted as YYYY-MM-DD")
	}
	r.dueDate = due
	return nil
}

func (r *AssessRequest) Assessment() models.Assessment {
	return models.Assessment{
		CitizenID:    id.CitizenID(r.CitizenID),
		Type:         models.Type(r.Type),
		BaseAmount:   r.BaseAmount,
		LateInterest: r.LateInterest,
		Period:       r.Period,
		DueDate:      r.dueDate,
	}
}

// InstallmentPlanRequest is the body of POST /debts/{debtID}/installment-plan.
type InstallmentPlanRequest struct {
	Installments int `json:"installments"`
}

func (r *InstallmentPlanRequest) Validate() error {
	return models.ValidateInstallmentCount(r.Installments)
}
