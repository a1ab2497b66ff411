package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "municipal/pkg/domain"
	dErrors "municipal/pkg/domain-errors"
)

const (
	MinInstallments = 3
	MaxInstallments = 12
)

// InstallmentPlan splits a debt's total into monthly installments.
type InstallmentPlan struct {
	DebtID               id.DebtID       `json:"debt_id"`
	NumberOfInstallments int             `json:"number_of_installments"`
	InstallmentAmount    decimal.Decimal `json:"installment_amount"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	CreatedAt            time.Time       `json:"created_at"`
}

// Installment is one scheduled payment of a plan.
type Installment struct {
	Number  int             `json:"number"`
	Amount  decimal.Decimal `json:"amount"`
	DueDate time.Time       `json:"due_date"`
}

// ValidateInstallmentCount rejects counts outside [MinInstallments, MaxInstallments].
func ValidateInstallmentCount(n int) error {
	if n < MinInstallments || n > MaxInstallments {
		return dErrors.Newf(dErrors.CodeValidation, "number of installments must be between %d and %d", MinInstallments, MaxInstallments)
	}
	return nil
}

// NewInstallmentPlan rounds total/n half-up to cents.
func NewInstallmentPlan(debtID id.DebtID, total decimal.Decimal, n int, now time.Time) (*InstallmentPlan, error) {
	if err := ValidateInstallmentCount(n); err != nil {
		return nil, err
	}
	if !total.IsPositive() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "plan total must be positive")
	}
	return &InstallmentPlan{
		DebtID:               debtID,
		NumberOfInstallments: n,
		InstallmentAmount:    id.RoundMoney(total.Div(decimal.NewFromInt(int64(n)))),
		TotalAmount:          id.RoundMoney(total),
		CreatedAt:            now,
	}, nil
}

// Installments lists the schedule, one month apart starting a month after
// the plan was created. The last installment absorbs the rounding remainder
// so the amounts always sum to TotalAmount exactly.
func (p *InstallmentPlan) Installments() []Installment {
	out := make([]Installment, p.NumberOfInstallments)
	paid := decimal.Zero
	for i := range out {
		amount := p.InstallmentAmount
		if i == p.NumberOfInstallments-1 {
			amount = p.TotalAmount.Sub(paid)
		}
		paid = paid.Add(amount)
		out[i] = Installment{
			Number:  i + 1,
			Amount:  amount,
			DueDate: p.CreatedAt.AddDate(0, i+1, 0),
		}
	}
	return out
}
