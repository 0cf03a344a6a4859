// Package forgotpassword принимает запрос на сброс пароля. Ответ одинаков
// для существующих и несуществующих аккаунтов.
package forgotpassword

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/quickmarket/internal/http/response"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
)

// Request: тело запроса.
type Request struct {
	Email string `json:"email"`
}

// Service принимает запрос на сброс пароля.
type Service interface {
	ForgotPassword(ctx context.Context, email string) error
}

// Handler обрабатывает POST /auth/forgot-password.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.forgotpassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := response.Decode(r, nil, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		response.Fail(w, r, err)
		return
	}

	response.OK(w, r, response.Message{
		Message: "If an account exists with this email, you will receive password reset instructions.",
	})
}
