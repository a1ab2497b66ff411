package models

import (
	"strings"
	"time"

	id "municipal/pkg/domain"
	dErrors "municipal/pkg/domain-errors"
)

// Citizen is a registered identity record. Records are append-only: once
// registered, nothing but the contact fields ever changes, and nothing in
// this module changes those either.
type Citizen struct {
	ID           id.CitizenID  `json:"id"`
	NationalID   id.NationalID `json:"national_id"`
	FullName     string        `json:"full_name"`
	Email        string        `json:"email"`
	Phone        string        `json:"phone"`
	Address      string        `json:"address"`
	District     string        `json:"district"`
	RegisteredAt time.Time     `json:"registered_at"`
}

// Registration carries the caller-supplied fields of a new citizen.
type Registration struct {
	NationalID string
	FullName   string
	Email      string
	Phone      string
	Address    string
	District   string
}

// Normalize trims whitespace and upper-cases the name the way the civil
// registry prints it.
func (r *Registration) Normalize() {
	r.NationalID = strings.TrimSpace(r.NationalID)
	r.FullName = strings.ToUpper(strings.Join(strings.Fields(r.FullName), " "))
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Address = strings.TrimSpace(r.Address)
	r.District = strings.ToUpper(strings.TrimSpace(r.District))
}

// NewCitizen validates the record invariants.
func NewCitizen(citizenID id.CitizenID, nationalID id.NationalID, reg Registration, now time.Time) (*Citizen, error) {
	if citizenID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "citizen id is required")
	}
	if nationalID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "national id is required")
	}
	if reg.FullName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "full name is required")
	}
	if reg.Email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email is required")
	}
	if reg.Phone == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "phone is required")
	}
	return &Citizen{
		ID:           citizenID,
		NationalID:   nationalID,
		FullName:     reg.FullName,
		Email:        reg.Email,
		Phone:        reg.Phone,
		Address:      reg.Address,
		District:     reg.District,
		RegisteredAt: now,
	}, nil
}

// Clone returns a copy. Citizen holds no reference fields.
func (c *Citizen) Clone() *Citizen {
	cp := *c
	return &cp
}
