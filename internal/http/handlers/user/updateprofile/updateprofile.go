// Package updateprofile изменяет имя, фамилию и телефон пользователя.
package updateprofile

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
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

// Service обновляет профиль.
type Service interface {
	UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error)
}

// Handler обрабатывает PUT /users/profile.
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
// @Summary Обновление профиля
// @Tags Users
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body models.ProfileUpdate true "Новые данные профиля"
// @Success 200 {object} Response
// @Failure 400 {object} response.ErrorResponse
// @Router /users/profile [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.updateprofile"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.RequireUser(w, r)
	if !ok {
		return
	}

	var req models.ProfileUpdate
	if err := response.Decode(r, h.validate, &req); err != nil {
		log.Error("invalid profile update", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), user.ID, req)
	if err != nil {
		log.Error("failed to update profile", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, Response{Message: "Profile updated successfully", User: updated})
}
