package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"municipal/internal/debt/models"
	id "municipal/pkg/domain"
	"municipal/pkg/platform/httputil"
	"municipal/pkg/requestcontext"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Service defines the debt ledger operations exposed over HTTP.
type Service interface {
	Assess(ctx context.Context, a models.Assessment) (*models.Debt, error)
	Get(ctx context.Context, debtID id.DebtID) (*models.Debt, error)
	ListOutstanding(ctx context.Context, citizenID id.CitizenID) ([]*models.Debt, error)
	Settle(ctx context.Context, debtID id.DebtID) (*models.Debt, error)
	CreateInstallmentPlan(ctx context.Context, debtID id.DebtID, n int) (*models.Debt, error)
	ExportStatement(ctx context.Context, citizenID id.CitizenID) ([]byte, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts debt endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/debts", h.HandleAssess)
	r.Get("/debts/{debtID}", h.HandleGet)
	r.Post("/debts/{debtID}/settle", h.HandleSettle)
	r.Post("/debts/{debtID}/installment-plan", h.HandleCreateInstallmentPlan)
	r.Get("/citizens/{citizenID}/debts", h.HandleListOutstanding)
	r.Get("/citizens/{citizenID}/debts/statement", h.HandleExportStatement)
}

// HandleAssess handles POST /debts.
func (h *Handler) HandleAssess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AssessRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	d, err := h.service.Assess(ctx, req.Assessment())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to assess debt",
			"request_id", requestID,
			"citizen_id", req.CitizenID,
			"type", req.Type,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromDebt(d))
}

// HandleGet handles GET /debts/{debtID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.withDebt(w, r, "debt lookup failed", func(ctx context.Context, debtID id.DebtID) (*models.Debt, error) {
		return h.service.Get(ctx, debtID)
	})
}

// HandleSettle handles POST /debts/{debtID}/settle.
func (h *Handler) HandleSettle(w http.ResponseWriter, r *http.Request) {
	h.withDebt(w, r, "debt settlement failed", h.service.Settle)
}

// HandleCreateInstallmentPlan handles POST /debts/{debtID}/installment-plan.
func (h *Handler) HandleCreateInstallmentPlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	debtID, err := id.ParseDebtID(chi.URLParam(r, "debtID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[InstallmentPlanRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	d, err := h.service.CreateInstallmentPlan(ctx, debtID, req.Installments)
	if err != nil {
		h.logger.ErrorContext(ctx, "installment plan failed",
			"request_id", requestID,
			"debt_id", debtID,
			"installments", req.Installments,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromDebt(d))
}

// HandleListOutstanding handles GET /citizens/{citizenID}/debts.
func (h *Handler) HandleListOutstanding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	citizenID, err := id.ParseCitizenID(chi.URLParam(r, "citizenID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	list, err := h.service.ListOutstanding(ctx, citizenID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to list debts",
			"request_id", requestID,
			"citizen_id", citizenID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromDebts(list))
}

// HandleExportStatement handles GET /citizens/{citizenID}/debts/statement.
func (h *Handler) HandleExportStatement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	citizenID, err := id.ParseCitizenID(chi.URLParam(r, "citizenID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	body, err := h.service.ExportStatement(ctx, citizenID)
	if err != nil {
		h.logger.ErrorContext(ctx, "statement export failed",
			"request_id", requestID,
			"citizen_id", citizenID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="statement-%d.xlsx"`, int64(citizenID)))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.WarnContext(ctx, "failed to write statement",
			"request_id", requestID,
			"error", err,
		)
	}
}

func (h *Handler) withDebt(w http.ResponseWriter, r *http.Request, failure string, fn func(context.Context, id.DebtID) (*models.Debt, error)) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	debtID, err := id.ParseDebtID(chi.URLParam(r, "debtID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	d, err := fn(ctx, debtID)
	if err != nil {
		h.logger.WarnContext(ctx, failure,
			"request_id", requestID,
			"debt_id", debtID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromDebt(d))
}
