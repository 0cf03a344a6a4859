// Package google реализует вход через Google OAuth 2.0: редирект на страницу
// согласия и обработку callback с обменом authorization code.
package google

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/quickmarket/internal/apperr"
	"github.com/magabrotheeeer/quickmarket/internal/http/response"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
)

// StateCookie хранит state между редиректом и callback.
const StateCookie = "qm_oauth_state"

const stateTTL = 10 * time.Minute

// Service описывает вход через Google.
type Service interface {
	GoogleAuthURL(state string) string
	GoogleLogin(ctx context.Context, code string) (string, error)
}

// Handler обслуживает /auth/google и /auth/google/callback.
type Handler struct {
	log          *slog.Logger
	service      Service
	secureCookie bool
}

// New создает новый Handler. secureCookie выставляет флаг Secure у cookie со state.
func New(log *slog.Logger, service Service, secureCookie bool) *Handler {
	return &Handler{log: log, service: service, secureCookie: secureCookie}
}

// Start godoc
// @Summary Вход через Google
// @Description Перенаправляет на страницу согласия Google.
// @Tags Auth
// @Success 307
// @Router /auth/google [get]
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookie,
		Value:    state,
		Path:     "/api/auth/google",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.service.GoogleAuthURL(state), http.StatusTemporaryRedirect)
}

// Callback godoc
// @Summary Callback Google OAuth
// @Description Обменивает code на профиль, находит или создаёт пользователя и перенаправляет на фронтенд с токеном.
// @Tags Auth
// @Param code query string true "Authorization code"
// @Param state query string true "State"
// @Success 302
// @Failure 400 {object} response.ErrorResponse "Неверный state"
// @Failure 401 {object} response.ErrorResponse "Не удалось обменять code"
// @Router /auth/google/callback [get]
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.google.callback"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	cookie, err := r.Cookie(StateCookie)
	state := r.URL.Query().Get("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		log.Warn("oauth state mismatch")
		response.Fail(w, r, apperr.ErrInvalidOAuthState)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:   StateCookie,
		Path:   "/api/auth/google",
		MaxAge: -1,
	})

	if e := r.URL.Query().Get("error"); e != "" {
		log.Warn("google consent denied", slog.String("error", e))
		response.Fail(w, r, apperr.ErrInvalidCredentials.WithDetails(e))
		return
	}

	target, err := h.service.GoogleLogin(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		log.Error("google login failed", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
