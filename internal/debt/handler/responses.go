package handler

import (
	"time"

	"municipal/internal/debt/models"
	id "municipal/pkg/domain"
)

type HistoryEntryResponse struct {
	PreviousStatus *models.Status `json:"previous_status,omitempty"`
	NewStatus      models.Status  `json:"new_status"`
	Timestamp      time.Time      `json:"timestamp"`
	Reason         string         `json:"reason"`
}

type InstallmentResponse struct {
	Number  int    `json:"number"`
	Amount  string `json:"amount"`
	DueDate string `json:"due_date"`
}

type PlanResponse struct {
	NumberOfInstallments int                   `json:"number_of_installments"`
	InstallmentAmount    string                `json:"installment_amount"`
	TotalAmount          string                `json:"total_amount"`
	CreatedAt            time.Time             `json:"created_at"`
	Installments         []InstallmentResponse `json:"installments"`
}

type DebtResponse struct {
	ID           id.DebtID              `json:"id"`
	CitizenID    id.CitizenID           `json:"citizen_id"`
	Type         models.Type            `json:"type"`
	BaseAmount   string                 `json:"base_amount"`
	LateInterest string                 `json:"late_interest"`
	TotalAmount  string                 `json:"total_amount"`
	Period       string                 `json:"period"`
	DueDate      string                 `json:"due_date"`
	Status       models.Status          `json:"status"`
	Plan         *PlanResponse          `json:"installment_plan,omitempty"`
	History      []HistoryEntryResponse `json:"history"`
}

type DebtListResponse struct {
	Debts []DebtResponse `json:"debts"`
	Count int            `json:"count"`
	// Total sums TotalAmount over the listed debts.
	Total string `json:"total"`
}

func FromDebt(d *models.Debt) DebtResponse {
	history := make([]HistoryEntryResponse, len(d.History))
	for i, h := range d.History {
		history[i] = HistoryEntryResponse(h)
	}
	return DebtResponse{
		ID:           d.ID,
		CitizenID:    d.CitizenID,
		Type:         d.Type,
		BaseAmount:   d.BaseAmount.StringFixed(id.Cents),
		LateInterest: d.LateInterest.StringFixed(id.Cents),
		TotalAmount:  d.TotalAmount().StringFixed(id.Cents),
		Period:       d.Period,
		DueDate:      d.DueDate.Format(dueDateLayout),
		Status:       d.Status,
		Plan:         fromPlan(d.Plan),
		History:      history,
	}
}

func fromPlan(p *models.InstallmentPlan) *PlanResponse {
	if p == nil {
		return nil
	}
	installments := p.Installments()
	out := make([]InstallmentResponse, len(installments))
	for i, inst := range installments {
		out[i] = InstallmentResponse{
			Number:  inst.Number,
			Amount:  inst.Amount.StringFixed(id.Cents),
			DueDate: inst.DueDate.Format(dueDateLayout),
		}
	}
	return &PlanResponse{
		NumberOfInstallments: p.NumberOfInstallments,
		InstallmentAmount:    p.InstallmentAmount.StringFixed(id.Cents),
		TotalAmount:          p.TotalAmount.StringFixed(id.Cents),
		CreatedAt:            p.CreatedAt,
		Installments:         out,
	}
}

func FromDebts(list []*models.Debt) DebtListResponse {
	out := make([]DebtResponse, len(list))
	total := id.MustAmount("0")
	for i, d := range list {
		out[i] = FromDebt(d)
		total = total.Add(d.TotalAmount())
	}
	return DebtListResponse{Debts: out, Count: len(out), Total: total.StringFixed(id.Cents)}
}
