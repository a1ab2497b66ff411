package handler

import (
	"strings"

	"github.com/shopspring/decimal"

	"municipal/internal/payment/models"
	dErrors "municipal/pkg/domain-errors"
)

// PayRequest is the body of POST /payments.
type PayRequest struct {
	TargetKind string          `json:"target_kind"`
	TargetID   int64           `json:"target_id"`
	Method     string          `json:"method"`
	Amount     decimal.Decimal `json:"amount"`

	kind models.TargetKind
}

func (r *PayRequest) Normalize() {
	r.Method = strings.ToUpper(strings.TrimSpace(r.Method))
}

func (r *PayRequest) Validate() error {
	kind, err := models.ParseTargetKind(r.TargetKind)
	if err != nil {
		return err
	}
	r.kind = kind
	if r.TargetID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "target_id is required")
	}
	if r.Method == "" {
		return dErrors.New(dErrors.CodeValidation, "method is required")
	}
	if !r.Amount.IsPositive() {
		return dErrors.New(dErrors.CodeValidation, "amount must be greater than zero")
	}
	return nil
}

func (r *PayRequest) Payment() models.Request {
	return models.Request{
		TargetKind: r.kind,
		TargetID:   r.TargetID,
		Method:     r.Method,
		Amount:     r.Amount,
		Attempt:    1,
	}
}
