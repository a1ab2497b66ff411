package handler

import (
	"strings"

	"municipal/internal/citizen/models"
	id "municipal/pkg/domain"
	dErrors "municipal/pkg/domain-errors"
	"municipal/pkg/email"
)

// RegisterRequest is the body of POST /citizens.
type RegisterRequest struct {
	NationalID string `json:"national_id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	District   string `json:"district"`
}

func (r *RegisterRequest) Normalize() {
	r.NationalID = strings.TrimSpace(r.NationalID)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
}

// Validate implements httputil.Validatable.
func (r *RegisterRequest) Validate() error {
	if len(r.FullName) > 200 || len(r.Email) > 254 || len(r.Address) > 300 {
		return dErrors.New(dErrors.CodeValidation, "field too long")
	}
	if _, err := id.ParseNationalID(r.NationalID); err != nil {
		return err
	}
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if err := email.Validate(r.Email); err != nil {
		return err
	}
	if r.Phone == "" {
		return dErrors.New(dErrors.CodeValidation, "phone is required")
	}
	return nil
}

func (r *RegisterRequest) toRegistration() models.Registration {
	return models.Registration{
		NationalID: r.NationalID,
		FullName:   r.FullName,
		Email:      r.Email,
		Phone:      r.Phone,
		Address:    r.Address,
		District:   r.District,
	}
}
