// Package details возвращает карточку товара по slug вместе с похожими товарами.
package details

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/quickmarket/internal/http/response"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

// Service возвращает карточку товара.
type Service interface {
	Details(ctx context.Context, slug string) (*models.ProductDetails, error)
}

// Handler обрабатывает GET /products/{slug}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Карточка товара
// @Tags Products
// @Produce  json
// @Param slug path string true "Slug товара"
// @Success 200 {object} models.ProductDetails
// @Failure 404 {object} response.ErrorResponse "Товар не найден"
// @Router /products/{slug} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.products.details"

	slug := chi.URLParam(r, "slug")
	res, err := h.service.Details(r.Context(), slug)
	if err != nil {
		h.log.Warn("failed to load product",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("slug", slug),
			sl.Err(err),
		)
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, res)
}
