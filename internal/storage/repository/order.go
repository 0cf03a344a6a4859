package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/quickmarket/internal/apperr"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

// CreateOrder записывает заказ, его позиции и итоговые суммы и расходует один слот подписки.
// Всё выполняется в одной транзакции: если хотя бы один товар не найден, заказ не создаётся
// и слот не списывается.
//
// Остатки на складе здесь не проверяются и не уменьшаются, строки товаров и подписки
// не блокируются. Два параллельных заказа могут продать больше, чем есть на складе.
func (s *Storage) CreateOrder(ctx context.Context, userID, subscriptionID string,
	draft models.OrderDraft) (*models.Order, error) {
	const op = "storage.CreateOrder"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	order := &models.Order{}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO orders (user_id, subscription_id, delivery_address, delivery_notes, status)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			userID, subscriptionID, draft.DeliveryAddress, draft.DeliveryNotes, models.OrderPending).
			Scan(&order.ID)
		if err != nil {
			return apperr.FromDB(err)
		}

		var totals models.OrderTotals
		for _, item := range draft.Items {
			var p models.PricedProduct
			err = tx.QueryRowContext(ctx,
				`SELECT base_price, delivery_fee FROM products WHERE id = $1 AND active = true`,
				item.ProductID).Scan(&p.BasePrice, &p.DeliveryFee)
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.ErrProductNotFound.WithDetails(item.ProductID)
			}
			if err != nil {
				return err
			}

			line := totals.Add(item.ProductID, p, item.Quantity)
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal)
				 VALUES ($1, $2, $3, $4, $5)`,
				order.ID, line.ProductID, line.Quantity, line.UnitPrice, line.Subtotal); err != nil {
				return apperr.FromDB(err)
			}
			order.Items = append(order.Items, line)
		}

		if _, err = tx.ExecContext(ctx,
			`UPDATE orders SET total_amount = $1, delivery_fee = $2 WHERE id = $3`,
			totals.Amount, totals.DeliveryFee, order.ID); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx,
			`UPDATE user_subscriptions SET slots_used = slots_used + 1 WHERE id = $1`,
			subscriptionID); err != nil {
			return err
		}

		order.TotalAmount = totals.Amount
		order.TotalDeliveryFee = totals.DeliveryFee
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}

const orderSummaryQuery = `SELECT o.id, o.total_amount, o.delivery_fee, o.status, o.payment_status,
	o.delivery_date, o.created_at, COUNT(oi.id)
	FROM orders o
	LEFT JOIN order_items oi ON o.id = oi.order_id
	WHERE o.user_id = $1
	GROUP BY o.id
	ORDER BY o.created_at DESC
	LIMIT $2 OFFSET $3`

// ListOrders возвращает заказы пользователя, новые первыми.
func (s *Storage) ListOrders(ctx context.Context, userID string, limit, offset int) ([]*models.OrderSummary, error) {
	const op = "storage.ListOrders"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, orderSummaryQuery, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []*models.OrderSummary{}
	for rows.Next() {
		var o models.OrderSummary
		if err = rows.Scan(&o.ID, &o.TotalAmount, &o.DeliveryFee, &o.Status, &o.PaymentStatus,
			&o.DeliveryDate, &o.CreatedAt, &o.ItemCount); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountOrders возвращает количество заказов пользователя.
func (s *Storage) CountOrders(ctx context.Context, userID string) (int, error) {
	const op = "storage.CountOrders"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).
		Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
