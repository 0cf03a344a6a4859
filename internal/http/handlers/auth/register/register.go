// Package register реализует HTTP-обработчик регистрации пользователя по email и паролю.
package register

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/quickmarket/internal/http/response"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

// Response: тело успешного ответа.
type Response struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
	Token   string       `json:"token"`
}

// Service описывает бизнес-логику регистрации.
type Service interface {
	Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error)
}

// Handler обрабатывает запросы на регистрацию.
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
// @Summary Регистрация пользователя
// @Description Создаёт аккаунт, отправляет письмо для подтверждения email и возвращает токен доступа.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.Registration true "Данные регистрации"
// @Success 201 {object} Response
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 409 {object} response.ErrorResponse "Пользователь уже существует"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.Registration
	if err := response.Decode(r, h.validate, &req); err != nil {
		log.Error("invalid registration request", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	res, err := h.service.Register(r.Context(), req)
	if err != nil {
		log.Error("registration failed", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("user registered", slog.String("user_id", res.User.ID))
	response.Created(w, r, Response{
		Message: "Registration successful! Please check your email for verification.",
		User:    res.User,
		Token:   res.Token,
	})
}
