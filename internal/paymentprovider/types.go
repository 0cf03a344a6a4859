package paymentprovider

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Статусы транзакции Paystack.
const (
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
)

// EventChargeSuccess: событие вебхука об успешном списании.
const EventChargeSuccess = "charge.success"

// InitializeRequest: запрос на создание транзакции. Amount указывается в кобо.
type InitializeRequest struct {
	Email       string         `json:"email"`
	Amount      int64          `json:"amount"`
	Currency    string         `json:"currency,omitempty"`
	Reference   string         `json:"reference"`
	CallbackURL string         `json:"callback_url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// InitializeData: данные для перехода пользователя на страницу оплаты.
type InitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// Transaction: транзакция, возвращаемая проверкой и вебхуком.
type Transaction struct {
	ID        int64           `json:"id"`
	Status    string          `json:"status"`
	Reference string          `json:"reference"`
	Amount    int64           `json:"amount"`
	Currency  string          `json:"currency"`
	Metadata  json.RawMessage `json:"metadata"`
}

// MetadataValue возвращает строковое значение из metadata. Paystack присылает
// пустую строку вместо объекта, если metadata не задавались.
func (t *Transaction) MetadataValue(key string) string {
	var m map[string]any
	if err := json.Unmarshal(t.Metadata, &m); err != nil {
		return ""
	}
	v, _ := m[key].(string)
	return v
}

// WebhookEvent: тело вебхука Paystack.
type WebhookEvent struct {
	Event string      `json:"event"`
	Data  Transaction `json:"data"`
}

type envelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// ToKobo переводит сумму в основной валюте в минимальные единицы.
func ToKobo(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// FromKobo переводит минимальные единицы в сумму в основной валюте.
func FromKobo(kobo int64) decimal.Decimal {
	return decimal.New(kobo, -2)
}
