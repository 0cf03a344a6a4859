// Package renew продлевает подписку на следующий период.
package renew

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
	Message      string                   `json:"message"`
	Subscription *models.UserSubscription `json:"subscription"`
}

// Service продлевает подписку.
type Service interface {
	Renew(ctx context.Context, userID, paymentReference string) (*models.UserSubscription, error)
}

// Handler обрабатывает POST /subscriptions/renew.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Продление подписки
// @Tags Subscriptions
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body models.RenewRequest true "Платёж"
// @Success 200 {object} Response
// @Failure 400 {object} response.ErrorResponse "Нет reference платежа"
// @Failure 404 {object} response.ErrorResponse "Нет активной подписки"
// @Router /subscriptions/renew [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriptions.renew"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.RequireUser(w, r)
	if !ok {
		return
	}

	var req models.RenewRequest
	if err := response.Decode(r, nil, &req); err != nil {
		response.Fail(w, r, err)
		return
	}

	sub, err := h.service.Renew(r.Context(), user.ID, req.PaymentReference)
	if err != nil {
		log.Error("subscription renewal failed", slog.String("user_id", user.ID), sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, Response{Message: "Subscription renewed successfully", Subscription: sub})
}
