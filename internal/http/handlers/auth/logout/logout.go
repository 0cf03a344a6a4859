// Package logout подтверждает выход. Токен удаляется на стороне клиента.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/quickmarket/internal/http/middlewarectx"
	"github.com/magabrotheeeer/quickmarket/internal/http/response"
)

// Handler обрабатывает POST /auth/logout.
type Handler struct {
	log *slog.Logger
}

// New создает новый Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := middlewarectx.RequireUser(w, r)
	if !ok {
		return
	}
	h.log.Info("user logged out",
		slog.String("user_id", user.ID),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	response.OK(w, r, response.Message{Message: "Logout successful"})
}
