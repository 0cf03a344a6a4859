// Package productlist возвращает страницу каталога с фильтрами по категории,
// подкатегории, строке поиска и доступности. Доступен без авторизации.
package productlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/quickmarket/internal/http/params"
	"github.com/magabrotheeeer/quickmarket/internal/http/response"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

// Service возвращает страницу каталога.
type Service interface {
	List(ctx context.Context, f models.ProductFilter, page, limit int) (*models.ProductPage, error)
}

// Handler обрабатывает GET /products.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Каталог товаров
// @Tags Products
// @Produce  json
// @Param category query string false "Slug категории"
// @Param subcategory query string false "Slug подкатегории"
// @Param search query string false "Поиск по названию и описанию"
// @Param availability query string false "Статус доступности"
// @Param page query int false "Номер страницы" default(1)
// @Param limit query int false "Размер страницы (не больше 50)" default(20)
// @Success 200 {object} models.ProductPage
// @Router /products [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.products.list"

	q := r.URL.Query()
	filter := models.ProductFilter{
		Category:     q.Get("category"),
		Subcategory:  q.Get("subcategory"),
		Search:       q.Get("search"),
		Availability: q.Get("availability"),
	}

	page, err := h.service.List(r.Context(), filter, params.Int(r, "page", 1), params.Int(r, "limit", 0))
	if err != nil {
		h.log.Error("failed to list products",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
		response.Fail(w, r, err)
		return
	}
	if page.Products == nil {
		page.Products = []*models.Product{}
	}
	response.OK(w, r, page)
}
