// Package ports defines the collaborators the payment processor depends on.
package ports

//go:generate mockgen -source=ports.go -destination=../mocks/mocks.go -package=mocks Gateway,ProcedureLedger,DebtLedger,RetryQueue,AuditPublisher

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	debtmodels "municipal/internal/debt/models"
	"municipal/internal/payment/models"
	proceduremodels "municipal/internal/procedure/models"
	id "municipal/pkg/domain"
	"municipal/pkg/platform/audit"
)

// Gateway charges a payment method. A decline is reported in the Charge, not
// as an error; errors mean the gateway could not answer (timeout, cancellation).
type Gateway interface {
	Charge(ctx context.Context, method string, amount decimal.Decimal) (models.Charge, error)
}

// ProcedureLedger settles a procedure's amount due. authorize runs under the
// procedure's lock after the state and amount checks pass.
type ProcedureLedger interface {
	SettlePayment(ctx context.Context, procedureID id.ProcedureID, amount decimal.Decimal, authorize func(ctx context.Context) error) (*proceduremodels.Procedure, error)
}

// DebtLedger settles a debt in full. Same locking contract as ProcedureLedger.
type DebtLedger interface {
	SettlePayment(ctx context.Context, debtID id.DebtID, amount decimal.Decimal, authorize func(ctx context.Context) error) (*debtmodels.Debt, error)
}

// RetryQueue stores retry directives until they fall due.
type RetryQueue interface {
	Schedule(ctx context.Context, d models.RetryDirective) error
	// Due claims up to limit directives whose NotBefore is at or before now.
	// A claimed directive is removed and handed to exactly one caller.
	Due(ctx context.Context, now time.Time, limit int) ([]models.RetryDirective, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
