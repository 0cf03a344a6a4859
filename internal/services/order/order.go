// Package services содержит логику оформления заказов по подписке.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/quickmarket/internal/apperr"
	"github.com/magabrotheeeer/quickmarket/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
	"github.com/magabrotheeeer/quickmarket/internal/metrics"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

// Ограничения выборок истории заказов.
const (
	RecentOrdersLimit   = 20
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 50
)

// OrderRepository описывает хранение заказов.
type OrderRepository interface {
	// CreateOrder в одной транзакции создаёт заказ с позициями и расходует слот подписки.
	CreateOrder(ctx context.Context, userID, subscriptionID string, draft models.OrderDraft) (*models.Order, error)
	ListOrders(ctx context.Context, userID string, limit, offset int) ([]*models.OrderSummary, error)
	CountOrders(ctx context.Context, userID string) (int, error)
}

// SubscriptionGate возвращает действующую подписку пользователя.
type SubscriptionGate interface {
	ActiveSubscription(ctx context.Context, userID string) (*models.ActiveSubscription, error)
}

// Publisher отправляет события в очередь уведомлений.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// OrderService реализует оформление и просмотр заказов.
type OrderService struct {
	repo      OrderRepository
	gate      SubscriptionGate
	publisher Publisher
	log       *slog.Logger
}

// NewOrderService создает новый экземпляр OrderService.
func NewOrderService(repo OrderRepository, gate SubscriptionGate, publisher Publisher, log *slog.Logger) *OrderService {
	return &OrderService{
		repo:      repo,
		gate:      gate,
		publisher: publisher,
		log:       log,
	}
}

// Create оформляет заказ. До открытия транзакции проверяются состав заказа,
// наличие действующей подписки и свободного слота. Остаток товара не проверяется
// и не списывается.
func (s *OrderService) Create(ctx context.Context, user *models.User, draft models.OrderDraft) (*models.Order, error) {
	if len(draft.Items) == 0 {
		return nil, apperr.ErrOrderItemsRequired
	}

	sub, err := s.gate.ActiveSubscription(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if !sub.HasFreeSlot() {
		return nil, apperr.ErrNoSlotsRemaining
	}

	order, err := s.repo.CreateOrder(ctx, user.ID, sub.ID, draft)
	if err != nil {
		return nil, err
	}
	metrics.OrdersCreated.Inc()
	s.log.Info("order created",
		slog.String("user_id", user.ID),
		slog.String("order_id", order.ID),
		slog.String("subscription_id", sub.ID),
		slog.Int("items", len(order.Items)))

	err = s.publisher.Publish(ctx, rabbitmq.RoutingOrderConfirmation, models.OrderConfirmationEmail{
		Email:       user.Email,
		OrderID:     order.ID,
		TotalAmount: order.TotalAmount,
		DeliveryFee: order.TotalDeliveryFee,
	})
	if err != nil {
		s.log.Warn("failed to publish order confirmation", slog.String("order_id", order.ID), sl.Err(err))
	}
	return order, nil
}

// ListRecent возвращает последние заказы пользователя.
func (s *OrderService) ListRecent(ctx context.Context, userID string) ([]*models.OrderSummary, error) {
	orders, err := s.repo.ListOrders(ctx, userID, RecentOrdersLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// History возвращает страницу истории заказов.
func (s *OrderService) History(ctx context.Context, userID string, page, limit int) (*models.OrderHistory, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	orders, err := s.repo.ListOrders(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	total, err := s.repo.CountOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	return &models.OrderHistory{
		Orders:     orders,
		Pagination: models.NewPagination(page, limit, total),
	}, nil
}
