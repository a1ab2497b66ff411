package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"municipal/internal/citizen/models"
	id "municipal/pkg/domain"
	"municipal/pkg/platform/httputil"
	"municipal/pkg/requestcontext"
)

// Service defines the registry operations the handler needs.
type Service interface {
	Register(ctx context.Context, reg models.Registration) (*models.Citizen, error)
	Get(ctx context.Context, citizenID id.CitizenID) (*models.Citizen, error)
}

// Handler wires citizen endpoints to the registry.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts citizen endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/citizens", h.HandleRegister)
	r.Get("/citizens/{citizenID}", h.HandleGet)
}

// HandleRegister handles POST /citizens.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	citizen, err := h.service.Register(ctx, req.toRegistration())
	if err != nil {
		h.logger.ErrorContext(ctx, "citizen registration failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, citizen)
}

// HandleGet handles GET /citizens/{citizenID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	citizenID, err := id.ParseCitizenID(chi.URLParam(r, "citizenID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	citizen, err := h.service.Get(ctx, citizenID)
	if err != nil {
		h.logger.WarnContext(ctx, "citizen lookup failed",
			"request_id", requestID,
			"citizen_id", citizenID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, citizen)
}
