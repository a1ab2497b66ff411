package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"municipal/internal/procedure/models"
	id "municipal/pkg/domain"
	"municipal/pkg/platform/httputil"
	"municipal/pkg/requestcontext"
)

// Service defines the ledger operations exposed over HTTP.
type Service interface {
	Open(ctx context.Context, citizenID id.CitizenID, procType, description string) (*models.Procedure, error)
	Transition(ctx context.Context, procedureID id.ProcedureID, next models.Status, reason string) (*models.Procedure, error)
	Cancel(ctx context.Context, procedureID id.ProcedureID) (*models.Procedure, error)
	FindByFileNumber(ctx context.Context, fileNumber string) (*models.Procedure, error)
	ListByCitizen(ctx context.Context, citizenID id.CitizenID) ([]*models.Procedure, error)
	ListPendingPayment(ctx context.Context, citizenID id.CitizenID) ([]*models.Procedure, error)
}

// Handler wires procedure endpoints to the ledger.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts procedure endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/procedures", h.HandleOpen)
	r.Get("/procedures/{fileNumber}", h.HandleFindByFileNumber)
	r.Post("/procedures/{procedureID}/transitions", h.HandleTransition)
	r.Post("/procedures/{procedureID}/cancel", h.HandleCancel)
	r.Get("/citizens/{citizenID}/procedures", h.HandleListByCitizen)
	r.Get("/citizens/{citizenID}/procedures/pending-payment", h.HandleListPendingPayment)
}

// HandleOpen handles POST /procedures.
func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[OpenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	p, err := h.service.Open(ctx, req.ParsedCitizenID(), req.Type, req.Description)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to open procedure",
			"request_id", requestID,
			"citizen_id", req.CitizenID,
			"type", req.Type,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromProcedure(p))
}

// HandleFindByFileNumber handles GET /procedures/{fileNumber}.
func (h *Handler) HandleFindByFileNumber(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	fileNumber := chi.URLParam(r, "fileNumber")

	p, err := h.service.FindByFileNumber(ctx, fileNumber)
	if err != nil {
		h.logger.WarnContext(ctx, "procedure lookup failed",
			"request_id", requestID,
			"file_number", fileNumber,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromProcedure(p))
}

// HandleTransition handles POST /procedures/{procedureID}/transitions.
func (h *Handler) HandleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	procedureID, err := id.ParseProcedureID(chi.URLParam(r, "procedureID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[TransitionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	p, err := h.service.Transition(ctx, procedureID, req.ParsedStatus(), req.Reason)
	if err != nil {
		h.logger.ErrorContext(ctx, "procedure transition failed",
			"request_id", requestID,
			"procedure_id", procedureID,
			"status", req.ParsedStatus(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromProcedure(p))
}

// HandleCancel handles POST /procedures/{procedureID}/cancel.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	procedureID, err := id.ParseProcedureID(chi.URLParam(r, "procedureID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	p, err := h.service.Cancel(ctx, procedureID)
	if err != nil {
		h.logger.ErrorContext(ctx, "procedure cancellation failed",
			"request_id", requestID,
			"procedure_id", procedureID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromProcedure(p))
}

// HandleListByCitizen handles GET /citizens/{citizenID}/procedures.
func (h *Handler) HandleListByCitizen(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListByCitizen)
}

// HandleListPendingPayment handles GET /citizens/{citizenID}/procedures/pending-payment.
func (h *Handler) HandleListPendingPayment(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListPendingPayment)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, fetch func(context.Context, id.CitizenID) ([]*models.Procedure, error)) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	citizenID, err := id.ParseCitizenID(chi.URLParam(r, "citizenID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	list, err := fetch(ctx, citizenID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to list procedures",
			"request_id", requestID,
			"citizen_id", citizenID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromProcedures(list))
}
