// Package subscriptionstatus возвращает состояние активной подписки пользователя.
package subscriptionstatus

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/magabrotheeeer/quickmarket/internal/http/middlewarectx"
	"github.com/magabrotheeeer/quickmarket/internal/http/response"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

// Response: тело ответа. Subscription равен null, если активной подписки нет.
type Response struct {
	Subscription *models.SubscriptionStatus `json:"subscription"`
	Message      string                     `json:"message,omitempty"`
}

// Service возвращает состояние подписки.
type Service interface {
	Status(ctx context.Context, userID string) (*models.SubscriptionStatus, error)
}

// Handler обрабатывает GET /users/subscription-status.
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

	status, err := h.service.Status(r.Context(), user.ID)
	if err != nil {
		h.log.Error("failed to load subscription status", slog.String("user_id", user.ID), sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	if status == nil {
		response.OK(w, r, Response{Message: "No active subscription found"})
		return
	}
	response.OK(w, r, Response{Subscription: status})
}
