// Package deleteaccount обезличивает аккаунт пользователя.
package deleteaccount

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

// Service удаляет аккаунт.
type Service interface {
	DeleteAccount(ctx context.Context, userID string, confirm bool) error
}

// Handler обрабатывает DELETE /users/account.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удаление аккаунта
// @Description Обезличивает аккаунт. Запрещено при активной подписке или незавершённых заказах.
// @Tags Users
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body models.AccountDeletion true "Подтверждение"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.ErrorResponse "Нет подтверждения"
// @Failure 409 {object} response.ErrorResponse "Есть активные данные"
// @Router /users/account [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.deleteaccount"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.RequireUser(w, r)
	if !ok {
		return
	}

	var req models.AccountDeletion
	if err := response.Decode(r, nil, &req); err != nil {
		response.Fail(w, r, err)
		return
	}

	if err := h.service.DeleteAccount(r.Context(), user.ID, req.ConfirmDelete); err != nil {
		log.Warn("account deletion rejected", slog.String("user_id", user.ID), sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, response.Message{Message: "Account deleted successfully"})
}
