package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/quickmarket/internal/apperr"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

// ActiveSubscription возвращает действующую подписку пользователя: статус active
// и срок ещё не истёк. Если таких несколько, берётся самая новая.
func (s *Storage) ActiveSubscription(ctx context.Context, userID string) (*models.ActiveSubscription, error) {
	const op = "storage.ActiveSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT us.id, us.slots_used, p.slots, p.max_quantity_per_item
			  FROM user_subscriptions us
			  JOIN packages p ON us.package_id = p.id
			  WHERE us.user_id = $1 AND us.status = 'active' AND us.expires_at > CURRENT_TIMESTAMP
			  ORDER BY us.created_at DESC
			  LIMIT 1`
	var a models.ActiveSubscription
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(&a.ID, &a.SlotsUsed, &a.Slots, &a.MaxQuantityPerItem)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNoActiveSubscription)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &a, nil
}

const subscriptionColumns = `us.id, us.user_id, us.package_id, p.name, us.location, us.status, us.slots_used,
	p.slots, p.max_quantity_per_item, us.price_paid, us.starts_at, us.expires_at,
	us.payment_reference, us.created_at`

func scanSubscription(row rowScanner) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	if err := row.Scan(&sub.ID, &sub.UserID, &sub.PackageID, &sub.PackageName, &sub.Location, &sub.Status,
		&sub.SlotsUsed, &sub.Slots, &sub.MaxQuantityPerItem, &sub.PricePaid, &sub.StartsAt, &sub.ExpiresAt,
		&sub.PaymentReference, &sub.CreatedAt); err != nil {
		return nil, err
	}
	return &sub, nil
}

// CurrentSubscription возвращает последнюю подписку со статусом active,
// даже если её срок уже вышел и планировщик ещё не пометил её истёкшей.
func (s *Storage) CurrentSubscription(ctx context.Context, userID string) (*models.UserSubscription, error) {
	const op = "storage.CurrentSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM user_subscriptions us
			  JOIN packages p ON us.package_id = p.id
			  WHERE us.user_id = $1 AND us.status = 'active'
			  ORDER BY us.created_at DESC
			  LIMIT 1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrSubscriptionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// SubscriptionHistory возвращает все подписки пользователя, новые первыми.
func (s *Storage) SubscriptionHistory(ctx context.Context, userID string) ([]*models.UserSubscription, error) {
	const op = "storage.SubscriptionHistory"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM user_subscriptions us
			  JOIN packages p ON us.package_id = p.id
			  WHERE us.user_id = $1
			  ORDER BY us.created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []*models.UserSubscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// HasActiveSubscription сообщает, есть ли у пользователя подписка со статусом active.
// Проверка выполняется вне транзакции покупки, поэтому параллельные покупки
// могут создать две активные подписки.
func (s *Storage) HasActiveSubscription(ctx context.Context, userID string) (bool, error) {
	const op = "storage.HasActiveSubscription"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM user_subscriptions WHERE user_id = $1 AND status = 'active')`
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// PackageOffers возвращает тарифы, продающиеся в локации, от дешёвых к дорогим.
func (s *Storage) PackageOffers(ctx context.Context, location string) ([]*models.PackageOffer, error) {
	const op = "storage.PackageOffers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.id, p.name, p.slots, p.max_quantity_per_item, pp.price, pp.location
			  FROM packages p
			  JOIN package_pricing pp ON p.id = pp.package_id
			  WHERE pp.location = $1 AND pp.active = true
			  ORDER BY pp.price ASC`
	rows, err := s.DB.QueryContext(ctx, query, location)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []*models.PackageOffer{}
	for rows.Next() {
		var o models.PackageOffer
		if err = rows.Scan(&o.ID, &o.Name, &o.Slots, &o.MaxQuantityPerItem, &o.Price, &o.Location); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// PackageOffer возвращает тариф с ценой для локации.
func (s *Storage) PackageOffer(ctx context.Context, packageID, location string) (*models.PackageOffer, error) {
	const op = "storage.PackageOffer"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.id, p.name, p.slots, p.max_quantity_per_item, pp.price, pp.location
			  FROM packages p
			  JOIN package_pricing pp ON p.id = pp.package_id
			  WHERE p.id = $1 AND pp.location = $2 AND pp.active = true`
	var o models.PackageOffer
	err := s.DB.QueryRowContext(ctx, query, packageID, location).
		Scan(&o.ID, &o.Name, &o.Slots, &o.MaxQuantityPerItem, &o.Price, &o.Location)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrPackageNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &o, nil
}

// CreateSubscription вставляет новый период подписки.
func (s *Storage) CreateSubscription(ctx context.Context, ns models.NewSubscription) (*models.UserSubscription, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = insertSubscription(ctx, tx, ns)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.subscriptionByID(ctx, op, id)
}

// RenewSubscription помечает текущую подписку истёкшей и открывает следующий период,
// который начинается в момент окончания текущего.
func (s *Storage) RenewSubscription(ctx context.Context, current *models.UserSubscription,
	price models.PackageOffer, paymentReference string) (*models.UserSubscription, error) {
	const op = "storage.RenewSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE user_subscriptions SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
			models.SubscriptionExpired, current.ID); err != nil {
			return err
		}

		var err error
		id, err = insertSubscription(ctx, tx, models.NewSubscription{
			UserID:           current.UserID,
			PackageID:        current.PackageID,
			Location:         current.Location,
			PricePaid:        price.Price,
			StartsAt:         current.ExpiresAt,
			ExpiresAt:        current.ExpiresAt.Add(models.SubscriptionPeriod),
			PaymentReference: paymentReference,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.subscriptionByID(ctx, op, id)
}

func insertSubscription(ctx context.Context, tx *sql.Tx, ns models.NewSubscription) (string, error) {
	query := `INSERT INTO user_subscriptions
			      (user_id, package_id, location, price_paid, starts_at, expires_at, payment_reference)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var id string
	if err := tx.QueryRowContext(ctx, query, ns.UserID, ns.PackageID, ns.Location, ns.PricePaid,
		ns.StartsAt, ns.ExpiresAt, ns.PaymentReference).Scan(&id); err != nil {
		return "", apperr.FromDB(err)
	}
	return id, nil
}

func (s *Storage) subscriptionByID(ctx context.Context, op, id string) (*models.UserSubscription, error) {
	query := `SELECT ` + subscriptionColumns + `
			  FROM user_subscriptions us
			  JOIN packages p ON us.package_id = p.id
			  WHERE us.id = $1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// CancelSubscription переводит активную подписку в статус cancelled.
func (s *Storage) CancelSubscription(ctx context.Context, subscriptionID string) error {
	const op = "storage.CancelSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE user_subscriptions SET status = $1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $2 AND status = 'active'`,
		models.SubscriptionCancelled, subscriptionID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, apperr.ErrSubscriptionNotFound)
	}
	return nil
}

// ExpireSubscriptions помечает истёкшими активные подписки, срок которых прошёл к моменту now.
func (s *Storage) ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	const op = "storage.ExpireSubscriptions"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE user_subscriptions SET status = 'expired', updated_at = CURRENT_TIMESTAMP
		 WHERE status = 'active' AND expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// FindExpiringSubscriptions находит активные подписки, истекающие в интервале (now, now+within].
func (s *Storage) FindExpiringSubscriptions(ctx context.Context, now time.Time,
	within time.Duration) ([]*models.ExpiringSubscription, error) {
	const op = "storage.FindExpiringSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT us.id, u.id, u.email, u.first_name, p.name, us.expires_at
			  FROM user_subscriptions us
			  JOIN users u ON us.user_id = u.id
			  JOIN packages p ON us.package_id = p.id
			  WHERE us.status = 'active' AND us.expires_at > $1 AND us.expires_at <= $2
			  ORDER BY us.expires_at`
	rows, err := s.DB.QueryContext(ctx, query, now, now.Add(within))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ExpiringSubscription
	for rows.Next() {
		var e models.ExpiringSubscription
		if err = rows.Scan(&e.SubscriptionID, &e.UserID, &e.Email, &e.FirstName, &e.PackageName,
			&e.ExpiresAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
