// Package resendverification повторно отправляет письмо для подтверждения email.
package resendverification

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

// Service выпускает новый токен подтверждения.
type Service interface {
	ResendVerification(ctx context.Context, user *models.User) error
}

// Handler обрабатывает POST /auth/resend-verification.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Повторная отправка письма подтверждения
// @Tags Auth
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} response.Message
// @Failure 400 {object} response.ErrorResponse "Email уже подтверждён"
// @Failure 502 {object} response.ErrorResponse "Не удалось отправить письмо"
// @Router /auth/resend-verification [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.resendverification"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.RequireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.ResendVerification(r.Context(), user); err != nil {
		log.Error("failed to resend verification", slog.String("user_id", user.ID), sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	response.OK(w, r, response.Message{Message: "Verification email sent successfully"})
}
