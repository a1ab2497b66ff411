package handler

import (
	"strings"

	"municipal/internal/procedure/models"
	id "municipal/pkg/domain"
	dErrors "municipal/pkg/domain-errors"
)

// OpenRequest is the body of POST /procedures.
type OpenRequest struct {
	CitizenID   int64  `json:"citizen_id"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

func (r *OpenRequest) Normalize() {
	r.Type = strings.TrimSpace(r.Type)
	r.Description = strings.TrimSpace(r.Description)
}

func (r *OpenRequest) Validate() error {
	if r.CitizenID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "citizen_id is required")
	}
	if r.Type == "" {
		return dErrors.New(dErrors.CodeValidation, "type is required")
	}
	if r.Description == "" {
		return dErrors.New(dErrors.CodeValidation, "description is required")
	}
	if len(r.Description) > 1000 {
		return dErrors.New(dErrors.CodeValidation, "description must be at most 1000 characters")
	}
	return nil
}

func (r *OpenRequest) ParsedCitizenID() id.CitizenID {
	return id.CitizenID(r.CitizenID)
}

// TransitionRequest is the body of POST /procedures/{procedureID}/transitions.
type TransitionRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`

	parsedStatus models.Status
}

func (r *TransitionRequest) Validate() error {
	if strings.TrimSpace(r.Status) == "" {
		return dErrors.New(dErrors.CodeValidation, "status is required")
	}
	status, err := models.ParseStatus(r.Status)
	if err != nil {
		return err
	}
	r.parsedStatus = status
	if len(r.Reason) > 500 {
		return dErrors.New(dErrors.CodeValidation, "reason must be at most 500 characters")
	}
	return nil
}

func (r *TransitionRequest) ParsedStatus() models.Status {
	return r.parsedStatus
}
