package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Статусы платежа.
const (
	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
)

// PaymentInit: запрос на инициализацию платежа.
type PaymentInit struct {
	Amount                decimal.Decimal `json:"amount"`
	OrderID               *string         `json:"orderId,omitempty"`
	SubscriptionPackageID *string         `json:"subscriptionPackageId,omitempty"`
}

// Payment: платёж, инициированный пользователем через платёжный шлюз.
type Payment struct {
	ID        int             `json:"id"`
	UserID    string          `json:"userId"`
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Status    string          `json:"status"`
	OrderID   *string         `json:"orderId,omitempty"`
	PackageID *string         `json:"packageId,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// PaymentCheckout: данные для перехода пользователя на страницу оплаты.
type PaymentCheckout struct {
	AuthorizationURL string `json:"authorizationUrl"`
	AccessCode       string `json:"accessCode"`
	Reference        string `json:"reference"`
}

// PaymentResult: результат проверки платежа у шлюза.
type PaymentResult struct {
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	OrderID   *string         `json:"-"`
}
