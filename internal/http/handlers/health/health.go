// Package health отдаёт состояние сервиса с учётом доступности базы данных.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
)

// Статусы сервиса.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

const pingTimeout = 2 * time.Second

// Pinger проверяет соединение с зависимостью.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Response: тело ответа.
type Response struct {
	Status    string    `json:"status" example:"healthy"`
	Timestamp time.Time `json:"timestamp"`
}

// Handler обрабатывает GET /health.
type Handler struct {
	log *slog.Logger
	db  Pinger
	now func() time.Time
}

// New создает новый Handler.
func New(log *slog.Logger, db Pinger) *Handler {
	return &Handler{
		log: log,
		db:  db,
		now: time.Now,
	}
}

// ServeHTTP godoc
// @Summary Состояние сервиса
// @Tags Health
// @Produce  json
// @Success 200 {object} Response
// @Failure 503 {object} Response
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	resp := Response{Status: StatusHealthy, Timestamp: h.now().UTC()}
	status := http.StatusOK
	if err := h.db.Ping(ctx); err != nil {
		h.log.Error("database ping failed", slog.String("op", op), sl.Err(err))
		resp.Status = StatusUnhealthy
		status = http.StatusServiceUnavailable
	}

	render.Status(r, status)
	render.JSON(w, r, resp)
}
