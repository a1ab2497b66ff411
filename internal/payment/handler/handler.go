package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"municipal/internal/payment/models"
	"municipal/pkg/platform/httputil"
	"municipal/pkg/requestcontext"
)

type Service interface {
	Pay(ctx context.Context, req models.Request) (*models.Outcome, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/payments", h.HandlePay)
}

// HandlePay handles POST /payments. Approved and declined payments both
// answer 200; the body's success flag tells them apart.
func (h *Handler) HandlePay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[PayRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	payment := req.Payment()
	outcome, err := h.service.Pay(ctx, payment)
	if err != nil {
		h.logger.ErrorContext(ctx, "payment failed",
			"request_id", requestID,
			"subject", payment.Subject(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	if !outcome.Success {
		h.logger.InfoContext(ctx, "payment declined",
			"request_id", requestID,
			"subject", payment.Subject(),
			"retry_scheduled", outcome.RetryScheduled,
		)
	}
	httputil.WriteJSON(w, http.StatusOK, FromOutcome(outcome))
}
