// Package selectlocation сохраняет выбранную пользователем локацию доставки.
package selectlocation

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
	Message  string `json:"message"`
	Location string `json:"location"`
}

// Service сохраняет локацию.
type Service interface {
	SelectLocation(ctx context.Context, userID, location string) (string, error)
}

// Handler обрабатывает POST /users/select-location.
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
// @Summary Выбор локации доставки
// @Tags Users
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body models.LocationSelection true "Локация"
// @Success 200 {object} Response
// @Failure 400 {object} response.ErrorResponse "Неизвестная локация"
// @Router /users/select-location [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.selectlocation"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.RequireUser(w, r)
	if !ok {
		return
	}

	var req models.LocationSelection
	if err := response.Decode(r, h.validate, &req); err != nil {
		log.Error("invalid location selection", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	location, err := h.service.SelectLocation(r.Context(), user.ID, req.Location)
	if err != nil {
		log.Error("failed to select location", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("location selected", slog.String("user_id", user.ID), slog.String("location", location))
	response.OK(w, r, Response{Message: "Location selected successfully", Location: location})
}
