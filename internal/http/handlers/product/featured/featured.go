// Package featured возвращает доступные товары с наибольшим остатком.
package featured

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/magabrotheeeer/quickmarket/internal/http/params"
	"github.com/magabrotheeeer/quickmarket/internal/http/response"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

// Response: тело ответа.
type Response struct {
	Products []*models.Product `json:"products"`
}

// Service возвращает рекомендуемые товары.
type Service interface {
	Featured(ctx context.Context, limit int) ([]*models.Product, error)
}

// Handler обрабатывает GET /products/featured.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Featured(r.Context(), params.Int(r, "limit", 0))
	if err != nil {
		h.log.Error("failed to list featured products", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	if products == nil {
		products = []*models.Product{}
	}
	response.OK(w, r, Response{Products: products})
}
