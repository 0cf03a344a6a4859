// Package categories возвращает категории каталога с подкатегориями.
package categories

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
	Categories []*models.Category `json:"categories"`
}

// Service возвращает категории.
type Service interface {
	Categories(ctx context.Context) ([]*models.Category, error)
}

// Handler обрабатывает GET /products/categories.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cats, err := h.service.Categories(r.Context())
	if err != nil {
		h.log.Error("failed to list categories", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	if cats == nil {
		cats = []*models.Category{}
	}
	response.OK(w, r, Response{Categories: cats})
}
