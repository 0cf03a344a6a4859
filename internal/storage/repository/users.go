package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/quickmarket/internal/apperr"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

const userColumns = `id, email, password_hash, google_id, first_name, last_name, phone, location,
	role, email_verified, email_verification_token, terms_accepted, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.GoogleID, &u.FirstName, &u.LastName,
		&u.Phone, &u.Location, &u.Role, &u.EmailVerified, &u.EmailVerificationToken,
		&u.TermsAccepted, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser сохраняет нового пользователя и возвращает его.
func (s *Storage) CreateUser(ctx context.Context, nu models.NewUser) (*models.User, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (email, password_hash, google_id, first_name, last_name,
			      email_verified, email_verification_token, terms_accepted, role)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query,
		nu.Email, nu.PasswordHash, nu.GoogleID, nu.FirstName, nu.LastName,
		nu.EmailVerified, nu.EmailVerificationToken, nu.TermsAccepted, models.RoleUser))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, apperr.FromDB(err))
	}
	return u, nil
}

func (s *Storage) getUserBy(ctx context.Context, op, column string, value any) (*models.User, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByID возвращает пользователя по его ID.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUserBy(ctx, "storage.GetUserByID", "id", id)
}

// GetUserByEmail возвращает пользователя по email. Email хранится в нижнем регистре.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUserBy(ctx, "storage.GetUserByEmail", "email", email)
}

// GetUserByGoogleID возвращает пользователя, привязанного к аккаунту Google.
func (s *Storage) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return s.getUserBy(ctx, "storage.GetUserByGoogleID", "google_id", googleID)
}

// GetUserByVerificationToken возвращает пользователя по токену подтверждения email.
func (s *Storage) GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	return s.getUserBy(ctx, "storage.GetUserByVerificationToken", "email_verification_token", token)
}

// MarkEmailVerified подтверждает email и сбрасывает токен подтверждения.
func (s *Storage) MarkEmailVerified(ctx context.Context, userID string) error {
	const op = "storage.MarkEmailVerified"

	query := `UPDATE users
			  SET email_verified = true, email_verification_token = NULL, updated_at = CURRENT_TIMESTAMP
			  WHERE id = $1`
	return s.execOne(ctx, op, query, userID)
}

// SetVerificationToken сохраняет новый токен подтверждения email.
func (s *Storage) SetVerificationToken(ctx context.Context, userID, token string) error {
	const op = "storage.SetVerificationToken"

	query := `UPDATE users SET email_verification_token = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	return s.execOne(ctx, op, query, token, userID)
}

// UpdateProfile обновляет имя, фамилию и телефон пользователя.
func (s *Storage) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error) {
	const op = "storage.UpdateProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET first_name = $1, last_name = $2, phone = $3, updated_at = CURRENT_TIMESTAMP
			  WHERE id = $4
			  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, upd.FirstName, upd.LastName, upd.Phone, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// SetLocation сохраняет выбранную пользователем локацию доставки.
func (s *Storage) SetLocation(ctx context.Context, userID, location string) error {
	const op = "storage.SetLocation"

	query := `UPDATE users SET location = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	return s.execOne(ctx, op, query, location, userID)
}

// LinkGoogleAccount привязывает аккаунт Google к существующему пользователю.
// Email, подтверждённый Google, считается подтверждённым.
func (s *Storage) LinkGoogleAccount(ctx context.Context, userID, googleID string) error {
	const op = "storage.LinkGoogleAccount"

	query := `UPDATE users
			  SET google_id = $1, email_verified = true, email_verification_token = NULL,
			      updated_at = CURRENT_TIMESTAMP
			  WHERE id = $2`
	return s.execOne(ctx, op, query, googleID, userID)
}

// ActiveData считает активные подписки и незавершённые заказы пользователя.
func (s *Storage) ActiveData(ctx context.Context, userID string) (models.ActiveData, error) {
	const op = "storage.ActiveData"
	var d models.ActiveData
	select {
	case <-ctx.Done():
		return d, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT
			      (SELECT COUNT(*) FROM user_subscriptions WHERE user_id = $1 AND status = 'active'),
			      (SELECT COUNT(*) FROM orders WHERE user_id = $1 AND status IN ('pending', 'confirmed', 'preparing'))`
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&d.ActiveSubscriptions, &d.PendingOrders); err != nil {
		return d, fmt.Errorf("%s: %w", op, err)
	}
	return d, nil
}

// SoftDeleteUser обезличивает аккаунт, сохраняя строку ради истории заказов.
func (s *Storage) SoftDeleteUser(ctx context.Context, userID string) error {
	const op = "storage.SoftDeleteUser"

	query := `UPDATE users
			  SET email = 'deleted_' || id::text || '@deleted.quickmarket.com',
			      first_name = 'Deleted', last_name = 'User',
			      password_hash = NULL, google_id = NULL, phone = NULL,
			      email_verified = false, email_verification_token = NULL,
			      updated_at = CURRENT_TIMESTAMP
			  WHERE id = $1`
	return s.execOne(ctx, op, query, userID)
}

// execOne выполняет UPDATE, который должен затронуть ровно одного пользователя.
func (s *Storage) execOne(ctx context.Context, op, query string, args ...any) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, apperr.FromDB(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, apperr.ErrUserNotFound)
	}
	return nil
}
