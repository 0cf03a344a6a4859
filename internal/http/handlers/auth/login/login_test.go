package login

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/quickmarket/internal/apperr"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthResult), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	creds := models.Credentials{Email: "ada@example.com", Password: "password123"}

	tests := []struct {
		name       string
		body       any
		mockResp   *models.AuthResult
		mockErr    error
		callMock   bool
		wantStatus int
		wantCode   string
	}{
		{
			name:       "valid login",
			body:       creds,
			mockResp:   &models.AuthResult{User: &models.User{ID: "u-1", Email: creds.Email}, Token: "tok"},
			callMock:   true,
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid json body",
			body:       "not a json",
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_BODY",
		},
		{
			name:       "validation error - missing password",
			body:       models.Credentials{Email: "ada@example.com"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "wrong password",
			body:       creds,
			mockErr:    apperr.ErrInvalidCredentials,
			callMock:   true,
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_CREDENTIALS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callMock {
				svc.On("Login", mock.Anything, creds).Return(tt.mockResp, tt.mockErr).Once()
			}
			handler := New(newNoopLogger(), svc)

			var bodyBytes []byte
			switch v := tt.body.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(v)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, got["code"])
			} else {
				assert.Equal(t, "Login successful", got["message"])
				assert.Equal(t, "tok", got["token"])
				user, ok := got["user"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "u-1", user["id"])
			}
			svc.AssertExpectations(t)
		})
	}
}
