// Package history возвращает все подписки пользователя.
package history

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
	Subscriptions []*models.UserSubscription `json:"subscriptions"`
}

// Service возвращает историю подписок.
type Service interface {
	History(ctx context.Context, userID string) ([]*models.UserSubscription, error)
}

// Handler обрабатывает GET /subscriptions/history.
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

	subs, err := h.service.History(r.Context(), user.ID)
	if err != nil {
		h.log.Error("failed to load subscription history", slog.String("user_id", user.ID), sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	if subs == nil {
		subs = []*models.UserSubscription{}
	}
	response.OK(w, r, Response{Subscriptions: subs})
}
