// Package login реализует HTTP-обработчик входа по email и паролю.
//
// При успешной аутентификации возвращается JSON с данными пользователя и токеном доступа.
// Неизвестный email и неверный пароль дают одинаковый ответ 401 INVALID_CREDENTIALS.
package login

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

// Handler обрабатывает HTTP-запросы для авторизации.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Авторизация пользователя
// @Description Аутентифицирует пользователя по email и паролю. Возвращает токен доступа.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.Credentials true "Учетные данные пользователя"
// @Success 200 {object} Response
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.Credentials
	if err := response.Decode(r, h.validate, &req); err != nil {
		log.Error("invalid login request", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	res, err := h.service.Login(r.Context(), req)
	if err != nil {
		log.Warn("login failed", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("login success", slog.String("user_id", res.User.ID))
	response.OK(w, r, Response{
		Message: "Login successful",
		User:    res.User,
		Token:   res.Token,
	})
}
