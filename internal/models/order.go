package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Статусы заказа.
const (
	OrderPending        = "pending"
	OrderConfirmed      = "confirmed"
	OrderPreparing      = "preparing"
	OrderOutForDelivery = "out_for_delivery"
	OrderDelivered      = "delivered"
	OrderCancelled      = "cancelled"
)

// Статусы оплаты заказа.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// OrderItemRequest: позиция заказа, пришедшая от клиента.
type OrderItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gte=1,lte=10000"`
}

// OrderDraft: заказ до записи в базу.
type OrderDraft struct {
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryAddress *string            `json:"deliveryAddress,omitempty" validate:"omitempty,max=500"`
	DeliveryNotes   *string            `json:"deliveryNotes,omitempty" validate:"omitempty,max=1000"`
}

// PricedProduct: цена и стоимость доставки товара на момент заказа.
type PricedProduct struct {
	BasePrice   decimal.Decimal
	DeliveryFee decimal.Decimal
}

// OrderItem: строка заказа. Цена копируется из товара, чтобы последующие
// изменения цены не меняли исторические заказы.
type OrderItem struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderTotals накапливает сумму заказа и стоимость доставки по мере добавления позиций.
type OrderTotals struct {
	Amount      decimal.Decimal
	DeliveryFee decimal.Decimal
}

// Add учитывает позицию и возвращает строку заказа с зафиксированной ценой.
// Стоимость доставки фиксирована для товара и не зависит от количества.
func (t *OrderTotals) Add(productID string, p PricedProduct, quantity int) OrderItem {
	subtotal := p.BasePrice.Mul(decimal.NewFromInt(int64(quantity)))
	t.Amount = t.Amount.Add(subtotal)
	t.DeliveryFee = t.DeliveryFee.Add(p.DeliveryFee)
	return OrderItem{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: p.BasePrice,
		Subtotal:  subtotal,
	}
}

// Order: созданный заказ с итоговыми суммами.
type Order struct {
	ID               string          `json:"id"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	TotalDeliveryFee decimal.Decimal `json:"totalDeliveryFee"`
	Items            []OrderItem     `json:"items,omitempty"`
}

// OrderSummary: строка истории заказов пользователя.
type OrderSummary struct {
	ID            string          `json:"id"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	DeliveryFee   decimal.Decimal `json:"deliveryFee"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
	DeliveryDate  *time.Time      `json:"deliveryDate,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	ItemCount     int             `json:"itemCount"`
}

// OrderHistory: страница истории заказов пользователя.
type OrderHistory struct {
	Orders     []*OrderSummary `json:"orders"`
	Pagination Pagination      `json:"pagination"`
}
