// Package paymentinit создаёт транзакцию в платёжном шлюзе и возвращает ссылку на оплату.
package paymentinit

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

// Service инициализирует платёж.
type Service interface {
	Initialize(ctx context.Context, user *models.User, req models.PaymentInit) (*models.PaymentCheckout, error)
}

// Handler обрабатывает POST /payments/initialize.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Инициализация платежа
// @Description Создаёт транзакцию Paystack. Сумма передаётся в основной валюте и переводится в минимальные единицы.
// @Tags Payments
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body models.PaymentInit true "Сумма и назначение платежа"
// @Success 200 {object} models.PaymentCheckout
// @Failure 400 {object} response.ErrorResponse "Неверная сумма"
// @Failure 402 {object} response.ErrorResponse "Ошибка платёжного шлюза"
// @Router /payments/initialize [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.init"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.RequireUser(w, r)
	if !ok {
		return
	}

	var req models.PaymentInit
	if err := response.Decode(r, nil, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	checkout, err := h.service.Initialize(r.Context(), user, req)
	if err != nil {
		log.Error("payment initialization failed", slog.String("user_id", user.ID), sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("payment initialized", slog.String("reference", checkout.Reference))
	response.OK(w, r, checkout)
}
