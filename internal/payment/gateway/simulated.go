// Package gateway simulates the bank-side payment gateway.
package gateway

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"municipal/internal/payment/models"
	id "municipal/pkg/domain"
)

const (
	DefaultSuccessRate = 0.9
	DeclineReason      = "payment rejected by the bank"
)

// Simulated approves a charge when its random draw falls below the success
// rate. Refunds always succeed once the simulated latency has elapsed.
type Simulated struct {
	successRate float64
	latency     time.Duration
	draw        func() float64
	logger      *slog.Logger
}

type Option func(*Simulated)

// WithSuccessRate sets the approval probability, clamped to [0, 1].
func WithSuccessRate(rate float64) Option {
	return func(g *Simulated) {
		g.successRate = min(max(rate, 0), 1)
	}
}

// WithLatency delays every call by d. The delay honours ctx.
func WithLatency(d time.Duration) Option {
	return func(g *Simulated) {
		g.latency = d
	}
}

// WithRandom replaces the random source. draw must return values in [0, 1).
func WithRandom(draw func() float64) Option {
	return func(g *Simulated) {
		g.draw = draw
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Simulated) {
		g.logger = logger
	}
}

func NewSimulated(opts ...Option) *Simulated {
	g := &Simulated{
		successRate: DefaultSuccessRate,
		draw:        rand.Float64,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Charge makes one approval decision. It returns an error only when ctx ends
// during the simulated latency.
func (g *Simulated) Charge(ctx context.Context, method string, amount decimal.Decimal) (models.Charge, error) {
	if err := g.wait(ctx); err != nil {
		return models.Charge{}, err
	}
	if g.draw() < g.successRate {
		return models.Charge{Approved: true}, nil
	}
	g.logger.InfoContext(ctx, "simulated gateway declined charge",
		"method", method,
		"amount", amount.StringFixed(id.Cents),
	)
	return models.Charge{Approved: false, Reason: DeclineReason}, nil
}

// Refund returns money for reference, typically a procedure file number.
func (g *Simulated) Refund(ctx context.Context, reference string, amount decimal.Decimal) error {
	if err := g.wait(ctx); err != nil {
		return err
	}
	g.logger.InfoContext(ctx, "simulated refund issued",
		"reference", reference,
		"amount", amount.StringFixed(id.Cents),
	)
	return nil
}

func (g *Simulated) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if g.latency <= 0 {
		return nil
	}
	timer := time.NewTimer(g.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
