// Package suggestions возвращает подсказки названий товаров для строки поиска.
package suggestions

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/magabrotheeeer/quickmarket/internal/http/response"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
)

// Response: тело ответа.
type Response struct {
	Suggestions []string `json:"suggestions"`
}

// Service ищет подсказки.
type Service interface {
	Suggestions(ctx context.Context, q string) ([]string, error)
}

// Handler обрабатывает GET /products/search-suggestions?q=.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.Suggestions(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.log.Error("failed to search suggestions", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	response.OK(w, r, Response{Suggestions: names})
}
