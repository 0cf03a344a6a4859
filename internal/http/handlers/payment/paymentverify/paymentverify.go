// Package paymentverify запрашивает у шлюза итоговый статус платежа.
package paymentverify

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/quickmarket/internal/http/middlewarectx"
	"github.com/magabrotheeeer/quickmarket/internal/http/response"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

// Request: тело запроса.
type Request struct {
	Reference string `json:"reference"`
}

// Response: тело ответа. PaymentData заполняется только при успешной оплате.
type Response struct {
	Success     bool                  `json:"success"`
	Message     string                `json:"message"`
	PaymentData *models.PaymentResult `json:"paymentData,omitempty"`
}

// Service проверяет платёж.
type Service interface {
	Verify(ctx context.Context, user *models.User, reference string) (*models.PaymentResult, error)
}

// Handler обрабатывает POST /payments/verify.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Проверка платежа
// @Tags Payments
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body Request true "Reference платежа"
// @Success 200 {object} Response
// @Failure 400 {object} Response "Платёж не прошёл"
// @Failure 402 {object} response.ErrorResponse "Ошибка платёжного шлюза"
// @Router /payments/verify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.verify"

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
		response.Fail(w, r, err)
		return
	}

	res, err := h.service.Verify(r.Context(), user, req.Reference)
	if err != nil {
		log.Error("payment verification failed", slog.String("reference", req.Reference), sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	if res.Status != models.PaymentStatusSuccess {
		log.Info("payment not successful", slog.String("reference", req.Reference), slog.String("status", res.Status))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, Response{Success: false, Message: "Payment verification failed"})
		return
	}

	response.OK(w, r, Response{
		Success:     true,
		Message:     "Payment verified successfully",
		PaymentData: res,
	})
}
