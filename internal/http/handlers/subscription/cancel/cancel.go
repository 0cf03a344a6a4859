// Package cancel отменяет текущую подписку.
package cancel

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/quickmarket/internal/http/middlewarectx"
	"github.com/magabrotheeeer/quickmarket/internal/http/response"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

// Response: тело ответа. ValidUntil содержит дату окончания оплаченного периода.
type Response struct {
	Message    string    `json:"message"`
	ValidUntil time.Time `json:"validUntil"`
}

// Service отменяет подписку.
type Service interface {
	Cancel(ctx context.Context, userID, reason string) (time.Time, error)
}

// Handler обрабатывает POST /subscriptions/cancel.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := middlewarectx.RequireUser(w, r)
	if !ok {
		return
	}

	var req models.CancelRequest
	if err := response.Decode(r, h.validate, &req); err != nil {
		response.Fail(w, r, err)
		return
	}

	validUntil, err := h.service.Cancel(r.Context(), user.ID, req.Reason)
	if err != nil {
		h.log.Error("subscription cancel failed", slog.String("user_id", user.ID), sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, Response{Message: "Subscription cancelled successfully", ValidUntil: validUntil})
}
