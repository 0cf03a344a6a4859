// Package paymentwebhook принимает уведомления Paystack о смене статуса транзакций.
package paymentwebhook

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/quickmarket/internal/apperr"
	"github.com/magabrotheeeer/quickmarket/internal/http/response"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
)

// SignatureHeader: заголовок с HMAC‑SHA512 подписью тела запроса.
const SignatureHeader = "x-paystack-signature"

const maxBodySize = 1 << 20

// Service проверяет подпись и применяет событие к платежу.
type Service interface {
	HandleWebhook(ctx context.Context, body []byte, signature string) error
}

// Handler обрабатывает POST /payments/webhook.
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

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		response.Fail(w, r, apperr.ErrInvalidBody.Wrap(err))
		return
	}
	defer r.Body.Close()

	if err = h.service.HandleWebhook(r.Context(), body, r.Header.Get(SignatureHeader)); err != nil {
		log.Error("failed to process webhook", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("webhook processed successfully")
	w.WriteHeader(http.StatusOK)
}
