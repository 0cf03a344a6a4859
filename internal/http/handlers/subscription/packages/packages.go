// Package packages возвращает тарифы, доступные в локации пользователя.
package packages

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

// Service возвращает каталог тарифов.
type Service interface {
	Packages(ctx context.Context, location string) (*models.PackageCatalog, error)
}

// Handler обрабатывает GET /subscriptions/packages. Подключается за RequireLocation.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Тарифы для локации пользователя
// @Tags Subscriptions
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} models.PackageCatalog
// @Failure 403 {object} response.ErrorResponse "Локация не выбрана"
// @Router /subscriptions/packages [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriptions.packages"

	user, ok := middlewarectx.RequireUser(w, r)
	if !ok {
		return
	}

	catalog, err := h.service.Packages(r.Context(), *user.Location)
	if err != nil {
		h.log.Error("failed to list packages",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
		response.Fail(w, r, err)
		return
	}
	if catalog.Packages == nil {
		catalog.Packages = []*models.PackageOffer{}
	}
	response.OK(w, r, catalog)
}
