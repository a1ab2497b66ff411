// Package notification delivers citizen messages and books installment
// reminders. Callers treat every adapter as fire-and-forget.
package notification

import (
	"context"
	"log/slog"

	id "municipal/pkg/domain"
)

// LogNotifier writes notifications to the process log. It is the fallback
// when no broker is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, citizenID id.CitizenID, message string) error {
	n.logger.InfoContext(ctx, "citizen notification",
		"citizen_id", citizenID,
		"message", message,
	)
	return nil
}

// LogReminderScheduler logs reminder requests instead of booking them.
type LogReminderScheduler struct {
	logger *slog.Logger
}

func NewLogReminderScheduler(logger *slog.Logger) *LogReminderScheduler {
	return &LogReminderScheduler{logger: logger}
}

func (s *LogReminderScheduler) Schedule(ctx context.Context, debtID id.DebtID, installmentCount int) error {
	s.logger.InfoContext(ctx, "installment reminders requested",
		"debt_id", debtID,
		"installments", installmentCount,
	)
	return nil
}
