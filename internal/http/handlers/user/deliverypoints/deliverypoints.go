// Package deliverypoints возвращает пункты выдачи в локации пользователя.
package deliverypoints

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/magabrotheeeer/quickmarket/internal/http/middlewarectx"
	"github.com/magabrotheeeer/quickmarket/internal/http/response"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

// Response: тело ответа.
type Response struct {
	DeliveryPoints []*models.DeliveryPoint `json:"deliveryPoints"`
}

// Service возвращает пункты выдачи.
type Service interface {
	DeliveryPoints(ctx context.Context, location string) ([]*models.DeliveryPoint, error)
}

// Handler обрабатывает GET /users/delivery-points. Подключается за RequireLocation.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := middlewarectx.RequireUser(w, r)
	if !ok {
		return
	}

	points, err := h.service.DeliveryPoints(r.Context(), *user.Location)
	if err != nil {
		h.log.Error("failed to list delivery points", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	if points == nil {
		points = []*models.DeliveryPoint{}
	}
	response.OK(w, r, Response{DeliveryPoints: points})
}
