package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/magabrotheeeer/quickmarket/internal/apperr"
	"github.com/magabrotheeeer/quickmarket/internal/http/response"
	"github.com/magabrotheeeer/quickmarket/internal/lib/orderwindow"
)

// OrderWindow отклоняет запросы вне разрешённых дней недели.
func OrderWindow(window *orderwindow.Window, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			status := window.Check()
			if !status.Open {
				log.Info("order rejected outside order window", slog.String("current_day", status.CurrentDay))
				response.Fail(w, r, apperr.ErrOutsideOrderWindow.WithDetails(status))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
