// Package current возвращает текущую подписку пользователя.
package current

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/magabrotheeeer/quickmarket/internal/http/middlewarectx"
	"github.com/magabrotheeeer/quickmarket/internal/http/response"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

// Response: тело ответа.
type Response struct {
	Subscription *models.CurrentSubscription `json:"subscription"`
	Message      string                      `json:"message,omitempty"`
}

// Service возвращает текущую подписку.
type Service interface {
	Current(ctx context.Context, userID string) (*models.CurrentSubscription, error)
}

// Handler обрабатывает GET /subscriptions/current.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := middlewarectx.RequireUser(w, r)
	if !ok {
		return
	}

	sub, err := h.service.Current(r.Context(), user.ID)
	if err != nil {
		h.log.Error("failed to get current subscription", slog.String("user_id", user.ID), sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	if sub == nil {
		response.OK(w, r, Response{Message: "No active subscription found"})
		return
	}
	response.OK(w, r, Response{Subscription: sub})
}
