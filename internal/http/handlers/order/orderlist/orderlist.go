// Package orderlist возвращает последние заказы пользователя.
package orderlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/quickmarket/internal/http/middlewarectx"
	"github.com/magabrotheeeer/quickmarket/internal/http/response"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

// Response: тело ответа.
type Response struct {
	Orders []*models.OrderSummary `json:"orders"`
}

// Service возвращает заказы пользователя.
type Service interface {
	ListRecent(ctx context.Context, userID string) ([]*models.OrderSummary, error)
}

// Handler обрабатывает GET /orders.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.order.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.RequireUser(w, r)
	if !ok {
		return
	}

	orders, err := h.service.ListRecent(r.Context(), user.ID)
	if err != nil {
		log.Error("failed to list orders", slog.String("user_id", user.ID), sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	if orders == nil {
		orders = []*models.OrderSummary{}
	}

	response.OK(w, r, Response{Orders: orders})
}
