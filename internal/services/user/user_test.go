package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/quickmarket/internal/apperr"
	"github.com/magabrotheeeer/quickmarket/internal/models"
	services "github.com/magabrotheeeer/quickmarket/internal/services/user"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error) {
	args := m.Called(ctx, userID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) SetLocation(ctx context.Context, userID, location string) error {
	return m.Called(ctx, userID, location).Error(0)
}

func (m *RepoMock) ActiveData(ctx context.Context, userID string) (models.ActiveData, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.ActiveData), args.Error(1)
}

func (m *RepoMock) SoftDeleteUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *RepoMock) CurrentSubscription(ctx context.Context, userID string) (*models.UserSubscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserSubscription), args.Error(1)
}

func (m *RepoMock) Locations(ctx context.Context) ([]*models.Location, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Location), args.Error(1)
}

func (m *RepoMock) DeliveryPoints(ctx context.Context, location string) ([]*models.DeliveryPoint, error) {
	args := m.Called(ctx, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DeliveryPoint), args.Error(1)
}

func (m *RepoMock) LocationExists(ctx context.Context, location string) (bool, error) {
	args := m.Called(ctx, location)
	return args.Bool(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUserService_Profile(t *testing.T) {
	user := &models.User{ID: "u1", Email: "ada@example.com"}

	t.Run("without subscription", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("CurrentSubscription", mock.Anything, "u1").Return(nil, apperr.ErrSubscriptionNotFound)

		p, err := services.NewUserService(repo, newNoopLogger()).Profile(context.Background(), user)
		require.NoError(t, err)
		assert.Nil(t, p.Subscription)
		assert.Equal(t, "ada@example.com", p.Email)
	})

	t.Run("with subscription", func(t *testing.T) {
		repo := new(RepoMock)
		expires := time.Now().Add(48 * time.Hour)
		repo.On("CurrentSubscription", mock.Anything, "u1").Return(&models.UserSubscription{
			ID: "s1", Status: "active", PackageName: "4_slots", SlotsUsed: 1, ExpiresAt: expires,
		}, nil)

		p, err := services.NewUserService(repo, newNoopLogger()).Profile(context.Background(), user)
		require.NoError(t, err)
		require.NotNil(t, p.Subscription)
		assert.Equal(t, "4_slots", p.Subscription.PackageName)
		assert.Equal(t, 1, p.Subscription.SlotsUsed)
	})

	t.Run("db error", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("CurrentSubscription", mock.Anything, "u1").Return(nil, errors.New("conn reset"))

		_, err := services.NewUserService(repo, newNoopLogger()).Profile(context.Background(), user)
		assert.Error(t, err)
	})
}

func TestUserService_SelectLocation(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		setupMocks func(r *RepoMock)
		want       string
		wantErr    error
	}{
		{
			name:  "known location is normalized",
			input: " Yaba ",
			setupMocks: func(r *RepoMock) {
				r.On("LocationExists", mock.Anything, "yaba").Return(true, nil)
				r.On("SetLocation", mock.Anything, "u1", "yaba").Return(nil)
			},
			want: "yaba",
		},
		{
			name:  "unknown location",
			input: "abuja",
			setupMocks: func(r *RepoMock) {
				r.On("LocationExists", mock.Anything, "abuja").Return(false, nil)
			},
			wantErr: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)

			got, err := services.NewUserService(repo, newNoopLogger()).SelectLocation(context.Background(), "u1", tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "SetLocation", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserService_DeleteAccount(t *testing.T) {
	tests := []struct {
		name       string
		confirm    bool
		setupMocks func(r *RepoMock)
		wantErr    error
	}{
		{name: "not confirmed", confirm: false, setupMocks: func(*RepoMock) {}, wantErr: apperr.ErrConfirmationRequired},
		{
			name:    "active subscription blocks deletion",
			confirm: true,
			setupMocks: func(r *RepoMock) {
				r.On("ActiveData", mock.Anything, "u1").Return(models.ActiveData{ActiveSubscriptions: 1}, nil)
			},
			wantErr: apperr.ErrActiveDataExists,
		},
		{
			name:    "pending order blocks deletion",
			confirm: true,
			setupMocks: func(r *RepoMock) {
				r.On("ActiveData", mock.Anything, "u1").Return(models.ActiveData{PendingOrders: 2}, nil)
			},
			wantErr: apperr.ErrActiveDataExists,
		},
		{
			name:    "success",
			confirm: true,
			setupMocks: func(r *RepoMock) {
				r.On("ActiveData", mock.Anything, "u1").Return(models.ActiveData{}, nil)
				r.On("SoftDeleteUser", mock.Anything, "u1").Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)

			err := services.NewUserService(repo, newNoopLogger()).DeleteAccount(context.Background(), "u1", tt.confirm)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}

func TestUserService_DeleteAccount_Details(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ActiveData", mock.Anything, "u1").Return(models.ActiveData{ActiveSubscriptions: 1, PendingOrders: 3}, nil)

	err := services.NewUserService(repo, newNoopLogger()).DeleteAccount(context.Background(), "u1", true)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, models.ActiveData{ActiveSubscriptions: 1, PendingOrders: 3}, appErr.Details)
}
