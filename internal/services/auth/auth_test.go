package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/quickmarket/internal/apperr"
	"github.com/magabrotheeeer/quickmarket/internal/config"
	"github.com/magabrotheeeer/quickmarket/internal/lib/jwt"
	"github.com/magabrotheeeer/quickmarket/internal/lib/password"
	"github.com/magabrotheeeer/quickmarket/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/quickmarket/internal/models"
	services "github.com/magabrotheeeer/quickmarket/internal/services/auth"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func userOrNil(args mock.Arguments) (*models.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) CreateUser(ctx context.Context, nu models.NewUser) (*models.User, error) {
	return userOrNil(m.Called(ctx, nu))
}

func (m *UserRepoMock) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return userOrNil(m.Called(ctx, id))
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return userOrNil(m.Called(ctx, email))
}

func (m *UserRepoMock) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return userOrNil(m.Called(ctx, googleID))
}

func (m *UserRepoMock) GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	return userOrNil(m.Called(ctx, token))
}

func (m *UserRepoMock) MarkEmailVerified(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *UserRepoMock) SetVerificationToken(ctx context.Context, userID, token string) error {
	return m.Called(ctx, userID, token).Error(0)
}

func (m *UserRepoMock) LinkGoogleAccount(ctx context.Context, userID, googleID string) error {
	return m.Called(ctx, userID, googleID).Error(0)
}

// Мок для jwt.Maker
type JwtMakerMock struct {
	mock.Mock
}

func (m *JwtMakerMock) GenerateToken(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *JwtMakerMock) ParseToken(token string) (*jwt.CustomClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jwt.CustomClaims), args.Error(1)
}

type HasherMock struct {
	mock.Mock
}

func (m *HasherMock) Hash(pw string) (string, error) {
	args := m.Called(pw)
	return args.String(0), args.Error(1)
}

func (m *HasherMock) Compare(hash, pw string) error {
	return m.Called(hash, pw).Error(0)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, message any) error {
	return m.Called(ctx, routingKey, message).Error(0)
}

type GoogleMock struct {
	mock.Mock
}

func (m *GoogleMock) AuthCodeURL(state string) string {
	return m.Called(state).String(0)
}

func (m *GoogleMock) Exchange(ctx context.Context, code string) (*models.GoogleProfile, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GoogleProfile), args.Error(1)
}

type deps struct {
	repo   *UserRepoMock
	jwt    *JwtMakerMock
	hasher *HasherMock
	pub    *PublisherMock
	google *GoogleMock
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService() (*services.AuthService, deps) {
	d := deps{
		repo:   new(UserRepoMock),
		jwt:    new(JwtMakerMock),
		hasher: new(HasherMock),
		pub:    new(PublisherMock),
		google: new(GoogleMock),
	}
	frontend := config.Frontend{
		URL:             "https://app.quickmarket.test/",
		LoginSuccessURL: "https://app.quickmarket.test/login/success",
	}
	svc := services.NewAuthService(d.repo, d.jwt, d.hasher, d.pub, d.google, frontend, newNoopLogger())
	return svc, d
}

func strPtr(s string) *string { return &s }

func TestAuthService_Register(t *testing.T) {
	reg := models.Registration{
		Email:         "  Ada@Example.COM ",
		Password:      "password123",
		FirstName:     "Ada",
		LastName:      "Obi",
		TermsAccepted: true,
	}
	created := &models.User{ID: "u-1", Email: "ada@example.com", FirstName: "Ada", LastName: "Obi"}

	tests := []struct {
		name       string
		setupMocks func(d deps)
		wantErr    error
	}{
		{
			name: "success",
			setupMocks: func(d deps) {
				d.repo.On("GetUserByEmail", mock.Anything, "ada@example.com").Return(nil, apperr.ErrUserNotFound)
				d.hasher.On("Hash", "password123").Return("hashed", nil)
				d.repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(nu models.NewUser) bool {
					return nu.Email == "ada@example.com" && *nu.PasswordHash == "hashed" &&
						nu.EmailVerificationToken != nil && !nu.EmailVerified && nu.TermsAccepted
				})).Return(created, nil)
				d.pub.On("Publish", mock.Anything, rabbitmq.RoutingEmailVerification, mock.AnythingOfType("models.VerificationEmail")).Return(nil)
				d.jwt.On("GenerateToken", "u-1").Return("token", nil)
			},
		},
		{
			name: "email failure does not fail registration",
			setupMocks: func(d deps) {
				d.repo.On("GetUserByEmail", mock.Anything, "ada@example.com").Return(nil, apperr.ErrUserNotFound)
				d.hasher.On("Hash", "password123").Return("hashed", nil)
				d.repo.On("CreateUser", mock.Anything, mock.Anything).Return(created, nil)
				d.pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))
				d.jwt.On("GenerateToken", "u-1").Return("token", nil)
			},
		},
		{
			name: "user exists",
			setupMocks: func(d deps) {
				d.repo.On("GetUserByEmail", mock.Anything, "ada@example.com").Return(created, nil)
			},
			wantErr: apperr.ErrUserExists,
		},
		{
			name: "unique violation on insert",
			setupMocks: func(d deps) {
				d.repo.On("GetUserByEmail", mock.Anything, "ada@example.com").Return(nil, apperr.ErrUserNotFound)
				d.hasher.On("Hash", "password123").Return("hashed", nil)
				d.repo.On("CreateUser", mock.Anything, mock.Anything).Return(nil, apperr.ErrDuplicate.WithDetails("users_email_key"))
			},
			wantErr: apperr.ErrUserExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newService()
			tt.setupMocks(d)

			res, err := svc.Register(context.Background(), reg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "token", res.Token)
			assert.Equal(t, "u-1", res.User.ID)
			d.repo.AssertExpectations(t)
			d.pub.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	user := &models.User{ID: "u-1", Email: "ada@example.com", PasswordHash: strPtr("hashed")}
	oauthOnly := &models.User{ID: "u-2", Email: "oauth@example.com"}

	tests := []struct {
		name       string
		email      string
		setupMocks func(d deps)
		wantErr    error
	}{
		{
			name:  "success",
			email: "ADA@example.com",
			setupMocks: func(d deps) {
				d.repo.On("GetUserByEmail", mock.Anything, "ada@example.com").Return(user, nil)
				d.hasher.On("Compare", "hashed", "secret").Return(nil)
				d.jwt.On("GenerateToken", "u-1").Return("token", nil)
			},
		},
		{
			name:  "unknown email",
			email: "nobody@example.com",
			setupMocks: func(d deps) {
				d.repo.On("GetUserByEmail", mock.Anything, "nobody@example.com").Return(nil, apperr.ErrUserNotFound)
			},
			wantErr: apperr.ErrInvalidCredentials,
		},
		{
			name:  "wrong password",
			email: "ada@example.com",
			setupMocks: func(d deps) {
				d.repo.On("GetUserByEmail", mock.Anything, "ada@example.com").Return(user, nil)
				d.hasher.On("Compare", "hashed", "secret").Return(password.ErrMismatch)
			},
			wantErr: apperr.ErrInvalidCredentials,
		},
		{
			name:  "account without password",
			email: "oauth@example.com",
			setupMocks: func(d deps) {
				d.repo.On("GetUserByEmail", mock.Anything, "oauth@example.com").Return(oauthOnly, nil)
			},
			wantErr: apperr.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newService()
			tt.setupMocks(d)

			res, err := svc.Login(context.Background(), models.Credentials{Email: tt.email, Password: "secret"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "token", res.Token)
		})
	}
}

func TestAuthService_VerifyEmail(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		svc, _ := newService()
		_, err := svc.VerifyEmail(context.Background(), "")
		assert.ErrorIs(t, err, apperr.ErrVerificationTokenMissing)
	})

	t.Run("unknown token", func(t *testing.T) {
		svc, d := newService()
		d.repo.On("GetUserByVerificationToken", mock.Anything, "abc").Return(nil, apperr.ErrUserNotFound)
		_, err := svc.VerifyEmail(context.Background(), "abc")
		assert.ErrorIs(t, err, apperr.ErrVerificationTokenInvalid)
	})

	t.Run("success", func(t *testing.T) {
		svc, d := newService()
		d.repo.On("GetUserByVerificationToken", mock.Anything, "abc").
			Return(&models.User{ID: "u-1", EmailVerificationToken: strPtr("abc")}, nil)
		d.repo.On("MarkEmailVerified", mock.Anything, "u-1").Return(nil)

		user, err := svc.VerifyEmail(context.Background(), "abc")
		require.NoError(t, err)
		assert.True(t, user.EmailVerified)
		assert.Nil(t, user.EmailVerificationToken)
	})
}

func TestAuthService_ResendVerification(t *testing.T) {
	t.Run("already verified", func(t *testing.T) {
		svc, _ := newService()
		err := svc.ResendVerification(context.Background(), &models.User{ID: "u-1", EmailVerified: true})
		assert.ErrorIs(t, err, apperr.ErrAlreadyVerified)
	})

	t.Run("send failure", func(t *testing.T) {
		svc, d := newService()
		d.repo.On("SetVerificationToken", mock.Anything, "u-1", mock.AnythingOfType("string")).Return(nil)
		d.pub.On("Publish", mock.Anything, rabbitmq.RoutingEmailVerification, mock.Anything).Return(errors.New("broker down"))

		err := svc.ResendVerification(context.Background(), &models.User{ID: "u-1"})
		assert.ErrorIs(t, err, apperr.ErrEmail)
	})

	t.Run("success", func(t *testing.T) {
		svc, d := newService()
		d.repo.On("SetVerificationToken", mock.Anything, "u-1", mock.AnythingOfType("string")).Return(nil)
		d.pub.On("Publish", mock.Anything, rabbitmq.RoutingEmailVerification, mock.Anything).Return(nil)

		require.NoError(t, svc.ResendVerification(context.Background(), &models.User{ID: "u-1", Email: "a@b.c"}))
		d.pub.AssertExpectations(t)
	})
}

func TestAuthService_ForgotPassword(t *testing.T) {
	svc, d := newService()
	assert.ErrorIs(t, svc.ForgotPassword(context.Background(), " "), apperr.ErrEmailRequired)

	d.repo.On("GetUserByEmail", mock.Anything, "nobody@example.com").Return(nil, apperr.ErrUserNotFound)
	d.repo.On("GetUserByEmail", mock.Anything, "ada@example.com").Return(&models.User{ID: "u-1"}, nil)
	assert.NoError(t, svc.ForgotPassword(context.Background(), "nobody@example.com"))
	assert.NoError(t, svc.ForgotPassword(context.Background(), "ada@example.com"))
}

func TestAuthService_Authenticate(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		setupMocks func(d deps)
		wantErr    error
	}{
		{name: "no token", token: "", setupMocks: func(deps) {}, wantErr: apperr.ErrNoToken},
		{
			name:  "expired",
			token: "t",
			setupMocks: func(d deps) {
				d.jwt.On("ParseToken", "t").Return(nil, jwt.ErrTokenExpired)
			},
			wantErr: apperr.ErrTokenExpired,
		},
		{
			name:  "malformed",
			token: "t",
			setupMocks: func(d deps) {
				d.jwt.On("ParseToken", "t").Return(nil, jwt.ErrTokenInvalid)
			},
			wantErr: apperr.ErrInvalidToken,
		},
		{
			name:  "user deleted",
			token: "t",
			setupMocks: func(d deps) {
				d.jwt.On("ParseToken", "t").Return(&jwt.CustomClaims{UserID: "u-1"}, nil)
				d.repo.On("GetUserByID", mock.Anything, "u-1").Return(nil, apperr.ErrUserNotFound)
			},
			wantErr: apperr.ErrInvalidUser,
		},
		{
			name:  "success",
			token: "t",
			setupMocks: func(d deps) {
				d.jwt.On("ParseToken", "t").Return(&jwt.CustomClaims{UserID: "u-1"}, nil)
				d.repo.On("GetUserByID", mock.Anything, "u-1").Return(&models.User{ID: "u-1"}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newService()
			tt.setupMocks(d)

			user, err := svc.Authenticate(context.Background(), tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u-1", user.ID)
		})
	}
}

func TestAuthService_GoogleLogin(t *testing.T) {
	profile := &models.GoogleProfile{ID: "g-1", Email: "Ada@Example.com", GivenName: "Ada", FamilyName: "Obi"}

	t.Run("existing google user with location", func(t *testing.T) {
		svc, d := newService()
		d.google.On("Exchange", mock.Anything, "code").Return(profile, nil)
		d.repo.On("GetUserByGoogleID", mock.Anything, "g-1").Return(&models.User{ID: "u-1", Location: strPtr("yaba")}, nil)
		d.jwt.On("GenerateToken", "u-1").Return("tok en", nil)

		target, err := svc.GoogleLogin(context.Background(), "code")
		require.NoError(t, err)
		assert.Equal(t, "https://app.quickmarket.test/login/success?token="+url.QueryEscape("tok en"), target)
	})

	t.Run("links account found by email", func(t *testing.T) {
		svc, d := newService()
		d.google.On("Exchange", mock.Anything, "code").Return(profile, nil)
		d.repo.On("GetUserByGoogleID", mock.Anything, "g-1").Return(nil, apperr.ErrUserNotFound)
		d.repo.On("GetUserByEmail", mock.Anything, "ada@example.com").Return(&models.User{ID: "u-1"}, nil)
		d.repo.On("LinkGoogleAccount", mock.Anything, "u-1", "g-1").Return(nil)
		d.jwt.On("GenerateToken", "u-1").Return("tok", nil)

		target, err := svc.GoogleLogin(context.Background(), "code")
		require.NoError(t, err)
		assert.Equal(t, "https://app.quickmarket.test/select-location?token=tok", target)
		d.repo.AssertExpectations(t)
	})

	t.Run("creates verified user", func(t *testing.T) {
		svc, d := newService()
		d.google.On("Exchange", mock.Anything, "code").Return(profile, nil)
		d.repo.On("GetUserByGoogleID", mock.Anything, "g-1").Return(nil, apperr.ErrUserNotFound)
		d.repo.On("GetUserByEmail", mock.Anything, "ada@example.com").Return(nil, apperr.ErrUserNotFound)
		d.repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(nu models.NewUser) bool {
			return nu.EmailVerified && nu.TermsAccepted && nu.PasswordHash == nil &&
				nu.GoogleID != nil && *nu.GoogleID == "g-1" && nu.FirstName == "Ada"
		})).Return(&models.User{ID: "u-9"}, nil)
		d.jwt.On("GenerateToken", "u-9").Return("tok", nil)

		_, err := svc.GoogleLogin(context.Background(), "code")
		require.NoError(t, err)
		d.repo.AssertExpectations(t)
	})

	t.Run("exchange failure", func(t *testing.T) {
		svc, d := newService()
		d.google.On("Exchange", mock.Anything, "bad").Return(nil, errors.New("invalid_grant"))

		_, err := svc.GoogleLogin(context.Background(), "bad")
		assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	})
}
