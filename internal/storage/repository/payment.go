package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/quickmarket/internal/apperr"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

// CreatePayment сохраняет платёж в статусе pending и возвращает его ID.
func (s *Storage) CreatePayment(ctx context.Context, p models.Payment) (int, error) {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payments (user_id, reference, amount, currency, status, order_id, package_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var id int
	if err := s.DB.QueryRowContext(ctx, query, p.UserID, p.Reference, p.Amount, p.Currency,
		models.PaymentStatusPending, p.OrderID, p.PackageID).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, apperr.FromDB(err))
	}
	return id, nil
}

// GetPaymentByReference возвращает платёж по его reference в платёжном шлюзе.
func (s *Storage) GetPaymentByReference(ctx context.Context, reference string) (*models.Payment, error) {
	const op = "storage.GetPaymentByReference"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, reference, amount, currency, status, order_id, package_id, created_at
			  FROM payments
			  WHERE reference = $1`
	var p models.Payment
	err := s.DB.QueryRowContext(ctx, query, reference).Scan(&p.ID, &p.UserID, &p.Reference, &p.Amount,
		&p.Currency, &p.Status, &p.OrderID, &p.PackageID, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrPaymentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// CompletePayment фиксирует итоговый статус платежа. Если платёж успешен и привязан к заказу,
// заказ помечается оплаченным в той же транзакции. Повторный вызов ничего не меняет.
func (s *Storage) CompletePayment(ctx context.Context, reference, status string, orderID *string) error {
	const op = "storage.CompletePayment"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE payments SET status = $1, updated_at = CURRENT_TIMESTAMP
			 WHERE reference = $2 AND status = 'pending'`,
			status, reference); err != nil {
			return err
		}

		if status != models.PaymentStatusSuccess || orderID == nil {
			return nil
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE orders SET payment_status = $1, payment_reference = $2, updated_at = CURRENT_TIMESTAMP
			 WHERE id = $3`,
			models.PaymentPaid, reference, *orderID)
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
