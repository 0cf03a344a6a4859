package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Статусы доступности товара. Не зависят от количества на складе.
const (
	AvailabilityAvailable  = "available"
	AvailabilityOutOfStock = "out_of_stock"
	AvailabilitySeasonal   = "seasonal"
)

// Product: товар каталога.
type Product struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Slug               string          `json:"slug"`
	ShortDescription   *string         `json:"shortDescription,omitempty"`
	LongDescription    *string         `json:"longDescription,omitempty"`
	BasePrice          decimal.Decimal `json:"basePrice"`
	DeliveryFee        decimal.Decimal `json:"deliveryFee"`
	Unit               *string         `json:"unit,omitempty"`
	StockQuantity      int             `json:"stockQuantity"`
	AvailabilityStatus string          `json:"availabilityStatus"`
	MainImageURL       *string         `json:"mainImageUrl,omitempty"`
	GalleryImages      []string        `json:"galleryImages,omitempty"`
	OriginSource       *string         `json:"originSource,omitempty"`
	CategoryID         *string         `json:"-"`
	Category           *CategoryRef    `json:"category,omitempty"`
	Subcategory        *CategoryRef    `json:"subcategory,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// CategoryRef: имя и slug категории или подкатегории.
type CategoryRef struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Category: категория каталога со списком подкатегорий.
type Category struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Slug          string        `json:"slug"`
	Description   *string       `json:"description,omitempty"`
	Subcategories []Subcategory `json:"subcategories"`
}

// Subcategory: подкатегория каталога.
type Subcategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ProductFilter: параметры выборки каталога. Пустые строки означают отсутствие фильтра.
type ProductFilter struct {
	Category     string `json:"category,omitempty"`
	Subcategory  string `json:"subcategory,omitempty"`
	Search       string `json:"search,omitempty"`
	Availability string `json:"availability,omitempty"`
	Limit        int    `json:"-"`
	Offset       int    `json:"-"`
}

// ProductPage: страница каталога.
type ProductPage struct {
	Products   []*Product    `json:"products"`
	Pagination Pagination    `json:"pagination"`
	Filters    ProductFilter `json:"filters"`
}

// Pagination: сведения о странице выборки.
type Pagination struct {
	Page            int  `json:"page"`
	Limit           int  `json:"limit"`
	Total           int  `json:"total"`
	TotalPages      int  `json:"totalPages"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// NewPagination вычисляет количество страниц и флаги навигации.
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Page:            page,
		Limit:           limit,
		Total:           total,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}

// ProductDetails: товар вместе с похожими товарами той же категории.
type ProductDetails struct {
	Product         *Product   `json:"product"`
	RelatedProducts []*Product `json:"relatedProducts"`
}

// StockInfo: данные товара, необходимые для проверки доступности.
type StockInfo struct {
	StockQuantity      int
	AvailabilityStatus string
}

// Коды результата проверки доступности.
const (
	AvailabilityCodeNotAvailable      = "NOT_AVAILABLE"
	AvailabilityCodeInsufficientStock = "INSUFFICIENT_STOCK"
	AvailabilityCodeLimitExceeded     = "SUBSCRIPTION_LIMIT_EXCEEDED"
	AvailabilityCodeOK                = "AVAILABLE"
)

// Availability: результат проверки доступности товара в запрошенном количестве.
type Availability struct {
	Available         bool   `json:"available"`
	Code              string `json:"code,omitempty"`
	Reason            string `json:"reason,omitempty"`
	Message           string `json:"message,omitempty"`
	AvailableQuantity *int   `json:"availableQuantity,omitempty"`
	MaxAllowed        *int   `json:"maxAllowed,omitempty"`
}
