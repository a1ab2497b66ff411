package handler

import (
	"time"

	"municipal/internal/payment/models"
	id "municipal/pkg/domain"
)

type PaymentResponse struct {
	Success        bool       `json:"success"`
	ReceiptID      string     `json:"receipt_id,omitempty"`
	Amount         string     `json:"amount"`
	Timestamp      time.Time  `json:"timestamp"`
	Reason         string     `json:"reason,omitempty"`
	Attempt        int        `json:"attempt"`
	RetryScheduled bool       `json:"retry_scheduled"`
	NextAttemptAt  *time.Time `json:"next_attempt_at,omitempty"`
}

func FromOutcome(o *models.Outcome) PaymentResponse {
	return PaymentResponse{
		Success:        o.Success,
		ReceiptID:      o.ReceiptID,
		Amount:         o.Amount.StringFixed(id.Cents),
		Timestamp:      o.Timestamp,
		Reason:         o.Reason,
		Attempt:        o.Attempt,
		RetryScheduled: o.RetryScheduled,
		NextAttemptAt:  o.NextAttemptAt,
	}
}
