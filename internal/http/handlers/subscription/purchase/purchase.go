// Package purchase оформляет подписку на тариф.
package purchase

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
	Message      string                      `json:"message"`
	Subscription *models.CurrentSubscription `json:"subscription"`
}

// Service оформляет подписку.
type Service interface {
	Purchase(ctx context.Context, user *models.User, req models.PurchaseRequest) (*models.CurrentSubscription, error)
}

// Handler обрабатывает POST /subscriptions/purchase.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Покупка подписки
// @Description Оформляет подписку на 30 дней по цене тарифа в локации пользователя.
// @Tags Subscriptions
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body models.PurchaseRequest true "Тариф и платёж"
// @Success 201 {object} Response
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 404 {object} response.ErrorResponse "Тариф не найден"
// @Failure 409 {object} response.ErrorResponse "Подписка уже есть"
// @Router /subscriptions/purchase [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriptions.purchase"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.RequireUser(w, r)
	if !ok {
		return
	}

	var req models.PurchaseRequest
	if err := response.Decode(r, h.validate, &req); err != nil {
		log.Error("invalid purchase request", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	sub, err := h.service.Purchase(r.Context(), user, req)
	if err != nil {
		log.Error("subscription purchase failed", slog.String("user_id", user.ID), sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("subscription purchased", slog.String("user_id", user.ID), slog.String("subscription_id", sub.ID))
	response.Created(w, r, Response{Message: "Subscription purchased successfully", Subscription: sub})
}
