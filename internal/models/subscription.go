package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Статусы подписки пользователя.
const (
	SubscriptionActive    = "active"
	SubscriptionExpired   = "expired"
	SubscriptionCancelled = "cancelled"
)

// SubscriptionPeriod: длительность одного оплаченного периода подписки.
const SubscriptionPeriod = 30 * 24 * time.Hour

// Package описывает тариф подписки. Slots и MaxQuantityPerItem равны nil,
// если тариф не ограничивает количество доставок или единиц товара.
type Package struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Slots              *int   `json:"slots"`
	MaxQuantityPerItem *int   `json:"maxQuantityPerItem"`
}

// PackageOffer: тариф с ценой для конкретной локации.
type PackageOffer struct {
	Package
	DisplayName string          `json:"displayName"`
	Price       decimal.Decimal `json:"price"`
	Location    string          `json:"location"`
	Features    []string        `json:"features"`
}

// UserSubscription: купленный экземпляр тарифа.
type UserSubscription struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"userId"`
	PackageID          string          `json:"packageId"`
	PackageName        string          `json:"packageName"`
	Location           string          `json:"location"`
	Status             string          `json:"status"`
	SlotsUsed          int             `json:"slotsUsed"`
	Slots              *int            `json:"totalSlots"`
	MaxQuantityPerItem *int            `json:"maxQuantityPerItem"`
	PricePaid          decimal.Decimal `json:"pricePaid"`
	StartsAt           time.Time       `json:"startsAt"`
	ExpiresAt          time.Time       `json:"expiresAt"`
	PaymentReference   *string         `json:"paymentReference,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// SlotsRemaining возвращает количество оставшихся слотов или nil для безлимитного тарифа.
func (s *UserSubscription) SlotsRemaining() *int {
	if s.Slots == nil {
		return nil
	}
	left := *s.Slots - s.SlotsUsed
	return &left
}

// ActiveSubscription: результат проверки подписки перед созданием заказа
// или проверкой доступности товара.
type ActiveSubscription struct {
	ID                 string
	SlotsUsed          int
	Slots              *int
	MaxQuantityPerItem *int
}

// HasFreeSlot сообщает, можно ли израсходовать ещё один слот.
func (a *ActiveSubscription) HasFreeSlot() bool {
	return a.Slots == nil || a.SlotsUsed < *a.Slots
}

// NewSubscription: данные для вставки нового периода подписки.
type NewSubscription struct {
	UserID           string
	PackageID        string
	Location         string
	PricePaid        decimal.Decimal
	StartsAt         time.Time
	ExpiresAt        time.Time
	PaymentReference string
}

// ExpiringSubscription: подписка, о скором окончании которой нужно напомнить.
type ExpiringSubscription struct {
	SubscriptionID string    `json:"subscriptionId"`
	UserID         string    `json:"userId"`
	Email          string    `json:"email"`
	FirstName      string    `json:"firstName"`
	PackageName    string    `json:"packageName"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

// DisplayName превращает системное имя ("4_slots", "yaba") в отображаемое ("4 Slots", "Yaba").
func DisplayName(name string) string {
	name = strings.Replace(name, "_", " ", 1)
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// PackageCatalog: тарифы, доступные в локации пользователя.
type PackageCatalog struct {
	Packages            []*PackageOffer `json:"packages"`
	Location            string          `json:"location"`
	LocationDisplayName string          `json:"locationDisplayName"`
}

// CurrentSubscription: активная подписка с вычисленными сроками.
type CurrentSubscription struct {
	UserSubscription
	DisplayName     string `json:"displayName"`
	SlotsRemaining  *int   `json:"slotsRemaining"`
	DaysUntilExpiry int    `json:"daysUntilExpiry"`
	IsExpiringSoon  bool   `json:"isExpiringSoon"`
	IsExpired       bool   `json:"isExpired"`
}

// SubscriptionStatus: краткое состояние подписки для страницы профиля.
type SubscriptionStatus struct {
	ID                 string          `json:"id"`
	Status             string          `json:"status"`
	PackageName        string          `json:"packageName"`
	TotalSlots         *int            `json:"totalSlots"`
	SlotsUsed          int             `json:"slotsUsed"`
	SlotsRemaining     *int            `json:"slotsRemaining"`
	MaxQuantityPerItem *int            `json:"maxQuantityPerItem"`
	PricePaid          decimal.Decimal `json:"pricePaid"`
	StartsAt           time.Time       `json:"startsAt"`
	ExpiresAt          time.Time       `json:"expiresAt"`
	IsExpiringSoon     bool            `json:"isExpiringSoon"`
}

// PurchaseRequest: запрос на покупку тарифа.
type PurchaseRequest struct {
	PackageID        string `json:"packageId" validate:"required,uuid"`
	PaymentReference string `json:"paymentReference" validate:"required,max=255"`
}

// RenewRequest: запрос на продление подписки.
type RenewRequest struct {
	PaymentReference string `json:"paymentReference"`
}

// CancelRequest: запрос на отмену подписки.
type CancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}
