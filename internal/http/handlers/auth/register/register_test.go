package register

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
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

func (m *ServiceMock) Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error) {
	args := m.Called(ctx, reg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthResult), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	valid := models.Registration{
		Email:         "ada@example.com",
		Password:      "password123",
		FirstName:     "Ada",
		LastName:      "Obi",
		TermsAccepted: true,
	}

	tests := []struct {
		name       string
		body       any
		setupMock  func(*ServiceMock)
		wantStatus int
		wantCode   string
	}{
		{
			name: "valid registration",
			body: valid,
			setupMock: func(m *ServiceMock) {
				m.On("Register", mock.Anything, valid).Return(&models.AuthResult{
					User:  &models.User{ID: "u-1", Email: valid.Email},
					Token: "tok",
				}, nil).Once()
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "invalid json body",
			body:       "not a json",
			setupMock:  func(_ *ServiceMock) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_BODY",
		},
		{
			name: "validation error - short password",
			body: models.Registration{
				Email: "ada@example.com", Password: "short", FirstName: "Ada", LastName: "Obi", TermsAccepted: true,
			},
			setupMock:  func(_ *ServiceMock) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name: "terms not accepted",
			body: models.Registration{
				Email: "ada@example.com", Password: "password123", FirstName: "Ada", LastName: "Obi",
			},
			setupMock:  func(_ *ServiceMock) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name: "user exists",
			body: valid,
			setupMock: func(m *ServiceMock) {
				m.On("Register", mock.Anything, valid).Return(nil, apperr.ErrUserExists).Once()
			},
			wantStatus: http.StatusConflict,
			wantCode:   "USER_EXISTS",
		},
		{
			name: "internal error",
			body: valid,
			setupMock: func(m *ServiceMock) {
				m.On("Register", mock.Anything, valid).Return(nil, errors.New("db down")).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)
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

			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, got["code"])
			} else {
				assert.Equal(t, "tok", got["token"])
				assert.Contains(t, got["message"], "Registration successful")
			}
			svc.AssertExpectations(t)
		})
	}
}
