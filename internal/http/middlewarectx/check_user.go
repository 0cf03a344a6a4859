package middlewarectx

import (
	"net/http"

	"github.com/magabrotheeeer/quickmarket/internal/apperr"
	"github.com/magabrotheeeer/quickmarket/internal/http/response"
)

// RequireEmailVerified пропускает только пользователей с подтверждённым email.
func RequireEmailVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := RequireUser(w, r)
		if !ok {
			return
		}
		if !user.EmailVerified {
			response.Fail(w, r, apperr.ErrEmailNotVerified)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireLocation пропускает только пользователей, выбравших локацию доставки.
func RequireLocation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := RequireUser(w, r)
		if !ok {
			return
		}
		if !user.HasLocation() {
			response.Fail(w, r, apperr.ErrNoLocation)
			return
		}
		next.ServeHTTP(w, r)
	})
}
