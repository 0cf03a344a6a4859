// Package locations возвращает локации доставки с пунктами выдачи. Доступен без авторизации.
package locations

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/magabrotheeeer/quickmarket/internal/http/response"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

// Response: тело ответа.
type Response struct {
	Locations []*models.Location `json:"locations"`
}

// Service возвращает список локаций.
type Service interface {
	Locations(ctx context.Context) ([]*models.Location, error)
}

// Handler обрабатывает GET /users/locations.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	locs, err := h.service.Locations(r.Context())
	if err != nil {
		h.log.Error("failed to list locations", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	if locs == nil {
		locs = []*models.Location{}
	}
	response.OK(w, r, Response{Locations: locs})
}
