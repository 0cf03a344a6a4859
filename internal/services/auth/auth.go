// Package services содержит логику регистрации, входа и подтверждения email,
// а также вход через Google.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/quickmarket/internal/apperr"
	"github.com/magabrotheeeer/quickmarket/internal/config"
	"github.com/magabrotheeeer/quickmarket/internal/lib/jwt"
	"github.com/magabrotheeeer/quickmarket/internal/lib/password"
	"github.com/magabrotheeeer/quickmarket/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	CreateUser(ctx context.Context, nu models.NewUser) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error)
	MarkEmailVerified(ctx context.Context, userID string) error
	SetVerificationToken(ctx context.Context, userID, token string) error
	LinkGoogleAccount(ctx context.Context, userID, googleID string) error
}

// PasswordHasher хэширует и сверяет пароли.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Publisher отправляет события в очередь уведомлений.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// GoogleProvider выполняет обмен authorization code на профиль Google.
type GoogleProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*models.GoogleProfile, error)
}

// AuthService отвечает за регистрацию, вход и проверку токенов доступа.
type AuthService struct {
	users     UserRepository
	jwtMaker  jwt.Maker
	hasher    PasswordHasher
	publisher Publisher
	google    GoogleProvider
	frontend  config.Frontend
	log       *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, hasher PasswordHasher, publisher Publisher,
	google GoogleProvider, frontend config.Frontend, log *slog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		jwtMaker:  jwtMaker,
		hasher:    hasher,
		publisher: publisher,
		google:    google,
		frontend:  frontend,
		log:       log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создает пользователя, отправляет письмо для подтверждения email и выдаёт токен.
// Ошибка отправки письма не отменяет регистрацию.
func (s *AuthService) Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error) {
	const op = "services.AuthService.Register"
	email := normalizeEmail(reg.Email)

	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, apperr.ErrUserExists
	}
	if !errors.Is(err, apperr.ErrUserNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	token := uuid.NewString()

	user, err := s.users.CreateUser(ctx, models.NewUser{
		Email:                  email,
		PasswordHash:           &hash,
		FirstName:              reg.FirstName,
		LastName:               reg.LastName,
		TermsAccepted:          reg.TermsAccepted,
		EmailVerificationToken: &token,
	})
	if errors.Is(err, apperr.ErrDuplicate) {
		return nil, apperr.ErrUserExists
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = s.sendVerification(ctx, user, token); err != nil {
		s.log.Warn("failed to send verification email", slog.String("user_id", user.ID), sl.Err(err))
	}

	access, err := s.jwtMaker.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user registered", slog.String("user_id", user.ID))
	return &models.AuthResult{User: user, Token: access}, nil
}

// Login проверяет пароль и выдаёт токен. Неизвестный email и неверный пароль
// неразличимы для клиента.
func (s *AuthService) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	const op = "services.AuthService.Login"

	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(creds.Email))
	if errors.Is(err, apperr.ErrUserNotFound) {
		return nil, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user.PasswordHash == nil {
		return nil, apperr.ErrInvalidCredentials
	}
	if err = s.hasher.Compare(*user.PasswordHash, creds.Password); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	access, err := s.jwtMaker.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.AuthResult{User: user, Token: access}, nil
}

// VerifyEmail подтверждает email по токену из письма.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	const op = "services.AuthService.VerifyEmail"
	if token == "" {
		return nil, apperr.ErrVerificationTokenMissing
	}

	user, err := s.users.GetUserByVerificationToken(ctx, token)
	if errors.Is(err, apperr.ErrUserNotFound) {
		return nil, apperr.ErrVerificationTokenInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = s.users.MarkEmailVerified(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.EmailVerified = true
	user.EmailVerificationToken = nil
	return user, nil
}

// ResendVerification выпускает новый токен подтверждения и отправляет письмо повторно.
func (s *AuthService) ResendVerification(ctx context.Context, user *models.User) error {
	const op = "services.AuthService.ResendVerification"
	if user.EmailVerified {
		return apperr.ErrAlreadyVerified
	}

	token := uuid.NewString()
	if err := s.users.SetVerificationToken(ctx, user.ID, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.sendVerification(ctx, user, token); err != nil {
		return apperr.ErrEmail.Wrap(err)
	}
	return nil
}

// ForgotPassword принимает запрос на сброс пароля. Ответ не раскрывает,
// существует ли аккаунт с таким email.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return apperr.ErrEmailRequired
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		// TODO: отправлять письмо со ссылкой на сброс, когда появится таблица токенов сброса.
		s.log.Info("password reset requested", slog.String("user_id", user.ID))
	case !errors.Is(err, apperr.ErrUserNotFound):
		s.log.Error("failed to look up user for password reset", sl.Err(err))
	}
	return nil
}

// Authenticate проверяет токен доступа и загружает актуальные данные пользователя.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	const op = "services.AuthService.Authenticate"
	if token == "" {
		return nil, apperr.ErrNoToken
	}

	claims, err := s.jwtMaker.ParseToken(token)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, apperr.ErrTokenExpired
	}
	if err != nil {
		return nil, apperr.ErrInvalidToken.Wrap(err)
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, apperr.ErrUserNotFound) {
		return nil, apperr.ErrInvalidUser
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// GoogleAuthURL возвращает адрес страницы согласия Google.
func (s *AuthService) GoogleAuthURL(state string) string {
	return s.google.AuthCodeURL(state)
}

// GoogleLogin обменивает code на профиль Google, находит или создаёт пользователя
// и возвращает адрес фронтенда, на который нужно перенаправить браузер с токеном.
func (s *AuthService) GoogleLogin(ctx context.Context, code string) (string, error) {
	const op = "services.AuthService.GoogleLogin"

	profile, err := s.google.Exchange(ctx, code)
	if err != nil {
		return "", apperr.ErrInvalidCredentials.Wrap(err)
	}

	user, err := s.resolveGoogleUser(ctx, profile)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	access, err := s.jwtMaker.GenerateToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	target := s.frontend.LoginSuccessURL
	if !user.HasLocation() {
		target = strings.TrimRight(s.frontend.URL, "/") + "/select-location"
	}
	return target + "?token=" + url.QueryEscape(access), nil
}

// resolveGoogleUser ищет пользователя по google_id, затем по email (и привязывает аккаунт),
// иначе создаёт нового пользователя с подтверждённым email.
func (s *AuthService) resolveGoogleUser(ctx context.Context, p *models.GoogleProfile) (*models.User, error) {
	user, err := s.users.GetUserByGoogleID(ctx, p.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperr.ErrUserNotFound) {
		return nil, err
	}

	email := normalizeEmail(p.Email)
	user, err = s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if err = s.users.LinkGoogleAccount(ctx, user.ID, p.ID); err != nil {
			return nil, err
		}
		user.GoogleID = &p.ID
		user.EmailVerified = true
		s.log.Info("linked google account", slog.String("user_id", user.ID))
		return user, nil
	case !errors.Is(err, apperr.ErrUserNotFound):
		return nil, err
	}

	user, err = s.users.CreateUser(ctx, models.NewUser{
		Email:         email,
		GoogleID:      &p.ID,
		FirstName:     p.GivenName,
		LastName:      p.FamilyName,
		EmailVerified: true,
		TermsAccepted: true,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("user registered via google", slog.String("user_id", user.ID))
	return user, nil
}

func (s *AuthService) sendVerification(ctx context.Context, user *models.User, token string) error {
	return s.publisher.Publish(ctx, rabbitmq.RoutingEmailVerification, models.VerificationEmail{
		Email:    user.Email,
		Token:    token,
		UserName: user.FullName(),
	})
}
