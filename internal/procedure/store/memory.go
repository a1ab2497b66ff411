// Package store persists procedures.
package store

import (
	"context"
	"sort"

	"municipal/internal/procedure/models"
	"municipal/internal/storage"
	id "municipal/pkg/domain"
)

const fileNumberIndex = "file_number"

// InMemory keeps procedures in process memory with a unique file number index.
type InMemory struct {
	repo *storage.InMemory[id.ProcedureID, models.Procedure]
}

func NewInMemory(opts ...storage.Option[id.ProcedureID, models.Procedure]) *InMemory {
	opts = append([]storage.Option[id.ProcedureID, models.Procedure]{
		storage.WithUniqueIndex[id.ProcedureID](fileNumberIndex, func(p *models.Procedure) string {
			return p.FileNumber
		}),
	}, opts...)
	return &InMemory{
		repo: storage.New(
			func(p *models.Procedure) id.ProcedureID { return p.ID },
			(*models.Procedure).Clone,
			opts...,
		),
	}
}

func (s *InMemory) NextID(ctx context.Context) (id.ProcedureID, error) {
	return s.repo.NextID(ctx)
}

// Insert fails with sentinel.ErrConflict on a taken id or file number.
func (s *InMemory) Insert(ctx context.Context, p *models.Procedure) error {
	return s.repo.Insert(ctx, p)
}

func (s *InMemory) FindByID(ctx context.Context, procedureID id.ProcedureID) (*models.Procedure, error) {
	return s.repo.Get(ctx, procedureID)
}

func (s *InMemory) FindByFileNumber(ctx context.Context, fileNumber string) (*models.Procedure, error) {
	return s.repo.FindBy(ctx, fileNumberIndex, fileNumber)
}

// ListByCitizen orders by StartedAt, ties broken by id.
func (s *InMemory) ListByCitizen(ctx context.Context, citizenID id.CitizenID) ([]*models.Procedure, error) {
	out, err := s.repo.Query(ctx, func(p *models.Procedure) bool { return p.CitizenID == citizenID })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out, nil
}

// Execute runs fn under the procedure's lock. See storage.InMemory.Execute.
func (s *InMemory) Execute(ctx context.Context, procedureID id.ProcedureID, fn func(ctx context.Context, p *models.Procedure) error) (*models.Procedure, error) {
	return s.repo.Execute(ctx, procedureID, fn)
}
