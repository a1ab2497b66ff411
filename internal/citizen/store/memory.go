// Package store persists citizen records.
package store

import (
	"context"

	"municipal/internal/citizen/models"
	"municipal/internal/storage"
	id "municipal/pkg/domain"
)

const nationalIDIndex = "national_id"

// InMemory keeps citizens in process memory. National ids are unique.
type InMemory struct {
	repo *storage.InMemory[id.CitizenID, models.Citizen]
}

func NewInMemory() *InMemory {
	return &InMemory{
		repo: storage.New(
			func(c *models.Citizen) id.CitizenID { return c.ID },
			(*models.Citizen).Clone,
			storage.WithUniqueIndex[id.CitizenID](nationalIDIndex, func(c *models.Citizen) string {
				return string(c.NationalID)
			}),
		),
	}
}

func (s *InMemory) NextID(ctx context.Context) (id.CitizenID, error) {
	return s.repo.NextID(ctx)
}

// Insert fails with sentinel.ErrConflict when the id or national id is taken.
func (s *InMemory) Insert(ctx context.Context, citizen *models.Citizen) error {
	return s.repo.Insert(ctx, citizen)
}

func (s *InMemory) FindByID(ctx context.Context, citizenID id.CitizenID) (*models.Citizen, error) {
	return s.repo.Get(ctx, citizenID)
}

func (s *InMemory) FindByNationalID(ctx context.Context, nationalID id.NationalID) (*models.Citizen, error) {
	return s.repo.FindBy(ctx, nationalIDIndex, string(nationalID))
}
