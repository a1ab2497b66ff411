package handler

import (
	"time"

	"municipal/internal/procedure/models"
	id "municipal/pkg/domain"
)

type HistoryEntryResponse struct {
	PreviousStatus *models.Status `json:"previous_status,omitempty"`
	NewStatus      models.Status  `json:"new_status"`
	Timestamp      time.Time      `json:"timestamp"`
	Reason         string         `json:"reason"`
}

type ProcedureResponse struct {
	ID          id.ProcedureID         `json:"id"`
	FileNumber  string                 `json:"file_number"`
	CitizenID   id.CitizenID           `json:"citizen_id"`
	Type        models.Type            `json:"type"`
	Description string                 `json:"description"`
	Status      models.Status          `json:"status"`
	StartedAt   time.Time              `json:"started_at"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	AmountDue   string                 `json:"amount_due"`
	History     []HistoryEntryResponse `json:"history"`
}

type ProcedureListResponse struct {
	Procedures []ProcedureResponse `json:"procedures"`
	Count      int                 `json:"count"`
}

func FromProcedure(p *models.Procedure) ProcedureResponse {
	history := make([]HistoryEntryResponse, len(p.History))
	for i, h := range p.History {
		history[i] = HistoryEntryResponse(h)
	}
	return ProcedureResponse{
		ID:          p.ID,
		FileNumber:  p.FileNumber,
		CitizenID:   p.CitizenID,
		Type:        p.Type,
		Description: p.Description,
		Status:      p.Status,
		StartedAt:   p.StartedAt,
		CompletedAt: p.CompletedAt,
		AmountDue:   p.AmountDue.StringFixed(id.Cents),
		History:     history,
	}
}

func FromProcedures(list []*models.Procedure) ProcedureListResponse {
	out := make([]ProcedureResponse, len(list))
	for i, p := range list {
		out[i] = FromProcedure(p)
	}
	return ProcedureListResponse{Procedures: out, Count: len(out)}
}
