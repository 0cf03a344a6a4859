// Package orderhistory возвращает постраничную историю заказов пользователя.
package orderhistory

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/quickmarket/internal/http/middlewarectx"
	"github.com/magabrotheeeer/quickmarket/internal/http/params"
	"github.com/magabrotheeeer/quickmarket/internal/http/response"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

// Service возвращает страницу истории.
type Service interface {
	History(ctx context.Context, userID string, page, limit int) (*models.OrderHistory, error)
}

// Handler обрабатывает GET /users/order-history.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary История заказов
// @Tags Users
// @Security BearerAuth
// @Produce  json
// @Param page query int false "Номер страницы" default(1)
// @Param limit query int false "Размер страницы" default(10)
// @Success 200 {object} models.OrderHistory
// @Router /users/order-history [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.orderhistory"

	user, ok := middlewarectx.RequireUser(w, r)
	if !ok {
		return
	}

	history, err := h.service.History(r.Context(), user.ID, params.Int(r, "page", 1), params.Int(r, "limit", 0))
	if err != nil {
		h.log.Error("failed to load order history",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
		response.Fail(w, r, err)
		return
	}
	if history.Orders == nil {
		history.Orders = []*models.OrderSummary{}
	}
	response.OK(w, r, history)
}
