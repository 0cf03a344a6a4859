// Package verifyemail реализует подтверждение email по токену из письма.
package verifyemail

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/quickmarket/internal/http/response"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

// Request: тело запроса.
type Request struct {
	Token string `json:"token"`
}

// Response: тело успешного ответа.
type Response struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

// Service подтверждает email.
type Service interface {
	VerifyEmail(ctx context.Context, token string) (*models.User, error)
}

// Handler обрабатывает POST /auth/verify-email.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Подтверждение email
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Токен из письма"
// @Success 200 {object} Response
// @Failure 400 {object} response.ErrorResponse "Токен отсутствует или недействителен"
// @Router /auth/verify-email [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verifyemail"

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

	user, err := h.service.VerifyEmail(r.Context(), req.Token)
	if err != nil {
		log.Warn("email verification failed", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("email verified", slog.String("user_id", user.ID))
	response.OK(w, r, Response{Message: "Email verified successfully", User: user})
}
