package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/quickmarket/internal/apperr"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

func TestStorage_CreateOrder_YabaScenario(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	userID := factory.CreateUser(t, "ada@example.com")
	offer, err := storage.PackageOffer(ctx, factory.PackageID(t, "4_slots"), "yaba")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(11000).Equal(offer.Price))

	now := time.Now()
	sub, err := storage.CreateSubscription(ctx, models.NewSubscription{
		UserID:           userID,
		PackageID:        offer.ID,
		Location:         "yaba",
		PricePaid:        offer.Price,
		StartsAt:         now,
		ExpiresAt:        now.Add(models.SubscriptionPeriod),
		PaymentReference: "qm_1_ref",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, sub.SlotsUsed)

	productID := factory.CreateProduct(t, TestProduct{Name: "Ofada Rice", Price: "1200", DeliveryFee: "500", Stock: 10})

	order, err := storage.CreateOrder(ctx, userID, sub.ID, models.OrderDraft{
		Items: []models.OrderItemRequest{{ProductID: productID, Quantity: 2}},
	})
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(2400).Equal(order.TotalAmount), "total = 1200 x 2")
	assert.True(t, decimal.NewFromInt(500).Equal(order.TotalDeliveryFee))
	assert.Equal(t, 1, factory.SlotsUsed(t, sub.ID))

	var stored decimal.Decimal
	require.NoError(t, storage.DB.QueryRow(`SELECT total_amount FROM orders WHERE id = $1`, order.ID).Scan(&stored))
	assert.True(t, decimal.NewFromInt(2400).Equal(stored))
}

func TestStorage_CreateOrder_TotalsMatchItems(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	userID := factory.CreateUser(t, "ada@example.com")
	subID := factory.CreateSubscription(t, userID, "unlimited", models.SubscriptionActive, 0, time.Now().Add(24*time.Hour))

	rice := factory.CreateProduct(t, TestProduct{Name: "Rice", Price: "1999.99", DeliveryFee: "300", Stock: 5})
	beans := factory.CreateProduct(t, TestProduct{Name: "Beans", Price: "750.50", DeliveryFee: "200.25", Stock: 5})
	tomato := factory.CreateProduct(t, TestProduct{Name: "Tomato", Price: "100", Category: "produce", Stock: 5})

	order, err := storage.CreateOrder(ctx, userID, subID, models.OrderDraft{
		Items: []models.OrderItemRequest{
			{ProductID: rice, Quantity: 3},
			{ProductID: beans, Quantity: 1},
			{ProductID: tomato, Quantity: 7},
		},
	})
	require.NoError(t, err)

	rows, err := storage.DB.Query(`
		SELECT oi.quantity, oi.unit_price, oi.subtotal, p.base_price
		FROM order_items oi JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1`, order.ID)
	require.NoError(t, err)
	defer rows.Close()

	sum := decimal.Zero
	count := 0
	for rows.Next() {
		var (
			qty                        int
			unitPrice, subtotal, price decimal.Decimal
		)
		require.NoError(t, rows.Scan(&qty, &unitPrice, &subtotal, &price))
		assert.True(t, unitPrice.Equal(price), "unit price is copied from the product")
		assert.True(t, subtotal.Equal(unitPrice.Mul(decimal.NewFromInt(int64(qty)))))
		sum = sum.Add(subtotal)
		count++
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, 3, count)

	var total, fee decimal.Decimal
	require.NoError(t, storage.DB.QueryRow(`SELECT total_amount, delivery_fee FROM orders WHERE id = $1`, order.ID).
		Scan(&total, &fee))
	assert.True(t, total.Equal(sum))
	assert.True(t, decimal.RequireFromString("7450.47").Equal(total))
	assert.True(t, decimal.RequireFromString("500.25").Equal(fee), "delivery fee is flat per product line")
}

func TestStorage_CreateOrder_MissingProductRollsBack(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, f *TestDataFactory) string
	}{
		{
			name: "unknown product",
			setup: func(_ *testing.T, _ *TestDataFactory) string {
				return "00000000-0000-0000-0000-000000000001"
			},
		},
		{
			name: "inactive product",
			setup: func(t *testing.T, f *TestDataFactory) string {
				return f.CreateProduct(t, TestProduct{Name: "Old Yam", Price: "900", Stock: 3, Inactive: true})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := setupTestDatabase(t)
			factory := NewTestDataFactory(storage)

			userID := factory.CreateUser(t, "ada@example.com")
			subID := factory.CreateSubscription(t, userID, "4_slots", models.SubscriptionActive, 1, time.Now().Add(24*time.Hour))
			good := factory.CreateProduct(t, TestProduct{Name: "Garri", Price: "500", Stock: 10})
			missing := tt.setup(t, factory)

			_, err := storage.CreateOrder(context.Background(), userID, subID, models.OrderDraft{
				Items: []models.OrderItemRequest{
					{ProductID: good, Quantity: 1},
					{ProductID: missing, Quantity: 1},
				},
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrProductNotFound)

			e, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, missing, e.Details)

			assert.Equal(t, 0, factory.Count(t, "orders"))
			assert.Equal(t, 0, factory.Count(t, "order_items"))
			assert.Equal(t, 1, factory.SlotsUsed(t, subID), "slot counter is untouched")
		})
	}
}

// Остатки не проверяются и не списываются при заказе: два параллельных заказа
// на единственную единицу товара проходят оба. Тест фиксирует это поведение.
func TestStorage_CreateOrder_ConcurrentOrdersOversellStock(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	productID := factory.CreateProduct(t, TestProduct{Name: "Last Crate", Price: "2500", Stock: 1})

	type buyer struct{ userID, subID string }
	buyers := []buyer{}
	for _, email := range []string{"a@example.com", "b@example.com"} {
		userID := factory.CreateUser(t, email)
		buyers = append(buyers, buyer{
			userID: userID,
			subID:  factory.CreateSubscription(t, userID, "4_slots", models.SubscriptionActive, 0, time.Now().Add(24*time.Hour)),
		})
	}

	var wg sync.WaitGroup
	errs := make([]error, len(buyers))
	for i, b := range buyers {
		wg.Add(1)
		go func(i int, b buyer) {
			defer wg.Done()
			_, errs[i] = storage.CreateOrder(ctx, b.userID, b.subID, models.OrderDraft{
				Items: []models.OrderItemRequest{{ProductID: productID, Quantity: 1}},
			})
		}(i, b)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 2, factory.Count(t, "orders"))

	var stock int
	require.NoError(t, storage.DB.QueryRow(`SELECT stock_quantity FROM products WHERE id = $1`, productID).Scan(&stock))
	assert.Equal(t, 1, stock, "stock is not decremented by orders")
}

func TestStorage_ListOrders(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	userID := factory.CreateUser(t, "ada@example.com")
	subID := factory.CreateSubscription(t, userID, "unlimited", models.SubscriptionActive, 0, time.Now().Add(24*time.Hour))
	productID := factory.CreateProduct(t, TestProduct{Name: "Rice", Price: "100", Stock: 10})

	for range 3 {
		_, err := storage.CreateOrder(ctx, userID, subID, models.OrderDraft{
			Items: []models.OrderItemRequest{{ProductID: productID, Quantity: 1}, {ProductID: productID, Quantity: 2}},
		})
		require.NoError(t, err)
	}

	total, err := storage.CountOrders(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	page, err := storage.ListOrders(ctx, userID, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, 2, page[0].ItemCount)
	assert.Equal(t, models.OrderPending, page[0].Status)
	assert.Equal(t, models.PaymentPending, page[0].PaymentStatus)
	assert.False(t, page[0].CreatedAt.Before(page[1].CreatedAt))

	rest, err := storage.ListOrders(ctx, userID, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	other, err := storage.ListOrders(ctx, factory.CreateUser(t, "b@example.com"), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, other)
}
