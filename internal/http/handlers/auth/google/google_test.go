package google

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/quickmarket/internal/apperr"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) GoogleAuthURL(state string) string {
	return m.Called(state).String(0)
}

func (m *ServiceMock) GoogleLogin(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStart_SetsStateCookieAndRedirects(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("GoogleAuthURL", mock.AnythingOfType("string")).Return("https://accounts.google.test/auth").Once()
	h := New(newNoopLogger(), svc, true)

	rec := httptest.NewRecorder()
	h.Start(rec, httptest.NewRequest(http.MethodGet, "/api/auth/google", nil))

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "https://accounts.google.test/auth", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, StateCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)

	state := svc.Calls[0].Arguments.String(0)
	assert.Equal(t, state, cookies[0].Value)
}

func TestCallback(t *testing.T) {
	tests := []struct {
		name       string
		cookie     string
		query      string
		setupMock  func(*ServiceMock)
		wantStatus int
		wantTarget string
	}{
		{
			name:       "missing cookie",
			query:      "?state=s1&code=c1",
			setupMock:  func(_ *ServiceMock) {},
			wantStatus: apperr.ErrInvalidOAuthState.Status,
		},
		{
			name:       "state mismatch",
			cookie:     "s2",
			query:      "?state=s1&code=c1",
			setupMock:  func(_ *ServiceMock) {},
			wantStatus: apperr.ErrInvalidOAuthState.Status,
		},
		{
			name:       "consent denied",
			cookie:     "s1",
			query:      "?state=s1&error=access_denied",
			setupMock:  func(_ *ServiceMock) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "exchange failed",
			cookie: "s1",
			query:  "?state=s1&code=bad",
			setupMock: func(m *ServiceMock) {
				m.On("GoogleLogin", mock.Anything, "bad").Return("", apperr.ErrInvalidCredentials).Once()
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "success redirects with token",
			cookie: "s1",
			query:  "?state=s1&code=c1",
			setupMock: func(m *ServiceMock) {
				m.On("GoogleLogin", mock.Anything, "c1").
					Return("https://app.quickmarket.test/select-location?token=tok", nil).Once()
			},
			wantStatus: http.StatusFound,
			wantTarget: "https://app.quickmarket.test/select-location?token=tok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)
			h := New(newNoopLogger(), svc, false)

			req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback"+tt.query, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: StateCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()

			h.Callback(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantTarget != "" {
				assert.Equal(t, tt.wantTarget, rec.Header().Get("Location"))
			}
			svc.AssertExpectations(t)
		})
	}
}
