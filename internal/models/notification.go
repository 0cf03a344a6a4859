package models

import "github.com/shopspring/decimal"

// VerificationEmail: событие отправки письма для подтверждения email.
type VerificationEmail struct {
	Email    string `json:"email"`
	Token    string `json:"token"`
	UserName string `json:"userName"`
}

// OrderConfirmationEmail: событие отправки подтверждения заказа.
type OrderConfirmationEmail struct {
	Email        string          `json:"email"`
	OrderID      string          `json:"orderId"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	DeliveryFee  decimal.Decimal `json:"deliveryFee"`
	DeliveryDate string          `json:"deliveryDate,omitempty"`
}
