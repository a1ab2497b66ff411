// Package store persists debts.
package store

import (
	"context"

	"municipal/internal/debt/models"
	"municipal/internal/storage"
	id "municipal/pkg/domain"
)

// InMemory keeps debts in process memory.
type InMemory struct {
	repo *storage.InMemory[id.DebtID, models.Debt]
}

func NewInMemory(opts ...storage.Option[id.DebtID, models.Debt]) *InMemory {
	return &InMemory{
		repo: storage.New(
			func(d *models.Debt) id.DebtID { return d.ID },
			(*models.Debt).Clone,
			opts...,
		),
	}
}

func (s *InMemory) NextID(ctx context.Context) (id.DebtID, error) {
	return s.repo.NextID(ctx)
}

func (s *InMemory) Insert(ctx context.Context, d *models.Debt) error {
	return s.repo.Insert(ctx, d)
}

func (s *InMemory) FindByID(ctx context.Context, debtID id.DebtID) (*models.Debt, error) {
	return s.repo.Get(ctx, debtID)
}

// ListByCitizen returns the citizen's debts ordered by id. A non-empty status
// filters on it.
func (s *InMemory) ListByCitizen(ctx context.Context, citizenID id.CitizenID, status models.Status) ([]*models.Debt, error) {
	return s.repo.Query(ctx, func(d *models.Debt) bool {
		return d.CitizenID == citizenID && (status == "" || d.Status == status)
	})
}

func (s *InMemory) Execute(ctx context.Context, debtID id.DebtID, fn func(ctx context.Context, d *models.Debt) error) (*models.Debt, error) {
	return s.repo.Execute(ctx, debtID, fn)
}
