// Package ordercreate оформляет заказ в рамках действующей подписки.
package ordercreate

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/quickmarket/internal/http/middlewarectx"
	"github.com/magabrotheeeer/quickmarket/internal/http/response"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

// Response: тело ответа.
type Response struct {
	Message string        `json:"message" example:"Order created successfully"`
	Order   *models.Order `json:"order"`
}

// Service оформляет заказ.
type Service interface {
	Create(ctx context.Context, user *models.User, draft models.OrderDraft) (*models.Order, error)
}

// Handler обрабатывает POST /orders.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Оформление заказа
// @Description Создаёт заказ и расходует один слот подписки. Доступно только в окно приёма заказов.
// @Tags Orders
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body models.OrderDraft true "Позиции заказа"
// @Success 201 {object} Response
// @Failure 400 {object} response.ErrorResponse "Пустой заказ или ошибка валидации"
// @Failure 403 {object} response.ErrorResponse "Нет подписки, слотов или окно закрыто"
// @Failure 404 {object} response.ErrorResponse "Товар не найден"
// @Router /orders [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.order.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.RequireUser(w, r)
	if !ok {
		return
	}

	// Пустой список позиций отклоняет сервис с кодом ORDER_ITEMS_REQUIRED.
	var draft models.OrderDraft
	if err := response.Decode(r, nil, &draft); err != nil {
		log.Error("failed to decode order", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	if len(draft.Items) > 0 {
		if err := response.Validate(h.validate, draft); err != nil {
			log.Error("invalid order", sl.Err(err))
			response.Fail(w, r, err)
			return
		}
	}

	order, err := h.service.Create(r.Context(), user, draft)
	if err != nil {
		log.Error("order creation failed", slog.String("user_id", user.ID), sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("order created", slog.String("order_id", order.ID))
	response.Created(w, r, Response{
		Message: "Order created successfully",
		Order:   order,
	})
}
