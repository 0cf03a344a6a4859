// Package availability проверяет, можно ли заказать товар в нужном количестве
// с учётом остатка и лимита тарифа пользователя.
package availability

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/quickmarket/internal/apperr"
	"github.com/magabrotheeeer/quickmarket/internal/http/middlewarectx"
	"github.com/magabrotheeeer/quickmarket/internal/http/response"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

// Request: тело запроса.
type Request struct {
	Quantity int `json:"quantity"`
}

// Service проверяет доступность.
type Service interface {
	CheckAvailability(ctx context.Context, userID, productID string, quantity int) (*models.Availability, error)
}

// Handler обрабатывает POST /products/{id}/check-availability.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Проверка доступности товара
// @Description Проверяет подписку, наличие товара, остаток и лимит тарифа на позицию. Состояние не меняется.
// @Tags Products
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param id path string true "ID товара"
// @Param request body Request true "Количество"
// @Success 200 {object} models.Availability
// @Failure 400 {object} response.ErrorResponse "Неверное количество"
// @Failure 403 {object} response.ErrorResponse "Нет активной подписки"
// @Failure 404 {object} response.ErrorResponse "Товар не найден"
// @Router /products/{id}/check-availability [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.products.availability"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.RequireUser(w, r)
	if !ok {
		return
	}

	var req Request
	if err := response.Decode(r, nil, &req); err != nil {
		response.Fail(w, r, apperr.ErrInvalidQuantity.Wrap(err))
		return
	}
	if req.Quantity < 1 {
		response.Fail(w, r, apperr.ErrInvalidQuantity)
		return
	}

	productID := chi.URLParam(r, "id")
	res, err := h.service.CheckAvailability(r.Context(), user.ID, productID, req.Quantity)
	if err != nil {
		log.Warn("availability check failed", slog.String("product_id", productID), sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, res)
}
