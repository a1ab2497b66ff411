// Package models holds the payment request, its outcome and retry directives.
package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	id "municipal/pkg/domain"
	dErrors "municipal/pkg/domain-errors"
)

// TargetKind names what a payment settles.
type TargetKind string

const (
	TargetProcedure TargetKind = "PROCEDURE"
	TargetDebt      TargetKind = "DEBT"
)

func ParseTargetKind(s string) (TargetKind, error) {
	switch k := TargetKind(strings.ToUpper(strings.TrimSpace(s))); k {
	case TargetProcedure, TargetDebt:
		return k, nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unknown payment target %q", s)
}

// Request is one payment attempt. Attempt starts at 1 and grows with every
// retry of the same payment.
type Request struct {
	TargetKind TargetKind      `json:"target_kind"`
	TargetID   int64           `json:"target_id"`
	Method     string          `json:"method"`
	Amount     decimal.Decimal `json:"amount"`
	Attempt    int             `json:"attempt"`
}

// Validate rejects requests that must never reach a gateway.
func (r Request) Validate() error {
	if r.TargetKind != TargetProcedure && r.TargetKind != TargetDebt {
		return dErrors.Newf(dErrors.CodeValidation, "unknown payment target %q", r.TargetKind)
	}
	if r.TargetID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "target id is required")
	}
	if strings.TrimSpace(r.Method) == "" {
		return dErrors.New(dErrors.CodeValidation, "payment method is required")
	}
	if !r.Amount.IsPositive() {
		return dErrors.New(dErrors.CodeValidation, "amount must be greater than zero")
	}
	return nil
}

func (r Request) ProcedureID() id.ProcedureID { return id.ProcedureID(r.TargetID) }
func (r Request) DebtID() id.DebtID           { return id.DebtID(r.TargetID) }

// Subject names the target for logs and audit events, e.g. "debt:3".
func (r Request) Subject() string {
	return strings.ToLower(string(r.TargetKind)) + ":" + strconv.FormatInt(r.TargetID, 10)
}

// Charge is the gateway's answer to a charge request.
type Charge struct {
	Approved bool
	Reason   string
}

// Outcome is what a caller sees after a payment attempt. A declined payment
// is an Outcome with Success false, never an error.
type Outcome struct {
	Success        bool            `json:"success"`
	ReceiptID      string          `json:"receipt_id,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Timestamp      time.Time       `json:"timestamp"`
	Reason         string          `json:"reason,omitempty"`
	Attempt        int             `json:"attempt"`
	RetryScheduled bool            `json:"retry_scheduled"`
	NextAttemptAt  *time.Time      `json:"next_attempt_at,omitempty"`
}

// RetryDirective asks the retry worker to re-run Request no earlier than NotBefore.
type RetryDirective struct {
	Request   Request   `json:"request"`
	NotBefore time.Time `json:"not_before"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
