// Package services содержит логику каталога: выборку товаров, категории,
// подсказки поиска и проверку доступности товара перед заказом.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/quickmarket/internal/apperr"
	"github.com/magabrotheeeer/quickmarket/internal/cache"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
	"github.com/magabrotheeeer/quickmarket/internal/metrics"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

// Ограничения выборок каталога.
const (
	DefaultPageLimit     = 20
	MaxPageLimit         = 50
	DefaultFeaturedLimit = 12
	MaxFeaturedLimit     = 24
	relatedLimit         = 4
	suggestionsLimit     = 10
	minSuggestionLength  = 2
)

// ProductRepository описывает чтение каталога из хранилища.
type ProductRepository interface {
	ListProducts(ctx context.Context, f models.ProductFilter) ([]*models.Product, int, error)
	FeaturedProducts(ctx context.Context, limit int) ([]*models.Product, error)
	RelatedProducts(ctx context.Context, categoryID, productID string, limit int) ([]*models.Product, error)
	ProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	StockInfo(ctx context.Context, productID string) (*models.StockInfo, error)
	SearchSuggestions(ctx context.Context, q string, limit int) ([]string, error)
	Categories(ctx context.Context) ([]*models.Category, error)
}

// SubscriptionGate возвращает действующую подписку пользователя.
type SubscriptionGate interface {
	ActiveSubscription(ctx context.Context, userID string) (*models.ActiveSubscription, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// CatalogService реализует чтение каталога.
type CatalogService struct {
	repo          ProductRepository
	gate          SubscriptionGate
	cache         Cache
	categoriesTTL time.Duration
	log           *slog.Logger
}

// NewCatalogService создает новый экземпляр CatalogService.
func NewCatalogService(repo ProductRepository, gate SubscriptionGate, cache Cache, categoriesTTL time.Duration,
	log *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:          repo,
		gate:          gate,
		cache:         cache,
		categoriesTTL: categoriesTTL,
		log:           log,
	}
}

// NormalizePage приводит номер страницы и размер выборки к допустимым значениям.
func NormalizePage(page, limit, defaultLimit, maxLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// List возвращает страницу каталога по фильтрам.
func (s *CatalogService) List(ctx context.Context, f models.ProductFilter, page, limit int) (*models.ProductPage, error) {
	page, limit = NormalizePage(page, limit, DefaultPageLimit, MaxPageLimit)
	f.Limit = limit
	f.Offset = (page - 1) * limit

	products, total, err := s.repo.ListProducts(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return &models.ProductPage{
		Products:   products,
		Pagination: models.NewPagination(page, limit, total),
		Filters:    f,
	}, nil
}

// Categories возвращает категории с подкатегориями, используя кеш.
func (s *CatalogService) Categories(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	found, err := s.cache.Get(ctx, cache.KeyCategories, &categories)
	if err != nil {
		s.log.Warn("failed to read categories from cache", sl.Err(err))
	}
	if found {
		return categories, nil
	}

	categories, err = s.repo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if err = s.cache.Set(ctx, cache.KeyCategories, categories, s.categoriesTTL); err != nil {
		s.log.Warn("failed to cache categories", sl.Err(err))
	}
	return categories, nil
}

// Featured возвращает доступные товары с наибольшим остатком.
func (s *CatalogService) Featured(ctx context.Context, limit int) ([]*models.Product, error) {
	_, limit = NormalizePage(1, limit, DefaultFeaturedLimit, MaxFeaturedLimit)
	products, err := s.repo.FeaturedProducts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list featured products: %w", err)
	}
	return products, nil
}

// Suggestions возвращает до десяти названий товаров, содержащих q.
// Для запросов короче двух символов возвращается пустой список.
func (s *CatalogService) Suggestions(ctx context.Context, q string) ([]string, error) {
	q = strings.TrimSpace(q)
	if len([]rune(q)) < minSuggestionLength {
		return []string{}, nil
	}
	names, err := s.repo.SearchSuggestions(ctx, q, suggestionsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search suggestions: %w", err)
	}
	return names, nil
}

// Details возвращает карточку товара и несколько похожих товаров той же категории.
func (s *CatalogService) Details(ctx context.Context, slug string) (*models.ProductDetails, error) {
	product, err := s.repo.ProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	related := []*models.Product{}
	if product.CategoryID != nil {
		related, err = s.repo.RelatedProducts(ctx, *product.CategoryID, product.ID, relatedLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to list related products: %w", err)
		}
	}
	return &models.ProductDetails{Product: product, RelatedProducts: related}, nil
}

// CheckAvailability проверяет, можно ли заказать quantity единиц товара.
// Проверки выполняются по порядку до первой неудачной: подписка, товар,
// статус доступности, остаток, лимит тарифа на позицию. Состояние не меняется.
func (s *CatalogService) CheckAvailability(ctx context.Context, userID, productID string,
	quantity int) (*models.Availability, error) {
	res, err := s.checkAvailability(ctx, userID, productID, quantity)
	code := models.AvailabilityCodeOK
	switch {
	case err != nil:
		code = apperr.ErrInternal.Code
		if appErr, ok := apperr.As(err); ok {
			code = appErr.Code
		}
	case !res.Available:
		code = res.Code
	}
	metrics.AvailabilityChecks.WithLabelValues(code).Inc()
	return res, err
}

func (s *CatalogService) checkAvailability(ctx context.Context, userID, productID string,
	quantity int) (*models.Availability, error) {
	if quantity < 1 {
		return nil, apperr.ErrInvalidQuantity
	}

	sub, err := s.gate.ActiveSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err = uuid.Parse(productID); err != nil {
		return nil, apperr.ErrProductNotFound.WithDetails(productID)
	}
	stock, err := s.repo.StockInfo(ctx, productID)
	if err != nil {
		return nil, err
	}

	if stock.AvailabilityStatus != models.AvailabilityAvailable {
		return &models.Availability{
			Code:   models.AvailabilityCodeNotAvailable,
			Reason: "Product is not currently available",
		}, nil
	}
	if stock.StockQuantity < quantity {
		left := stock.StockQuantity
		return &models.Availability{
			Code:              models.AvailabilityCodeInsufficientStock,
			Reason:            fmt.Sprintf("Only %d units available", left),
			AvailableQuantity: &left,
		}, nil
	}
	if sub.MaxQuantityPerItem != nil && quantity > *sub.MaxQuantityPerItem {
		allowed := *sub.MaxQuantityPerItem
		return &models.Availability{
			Code:       models.AvailabilityCodeLimitExceeded,
			Reason:     fmt.Sprintf("Maximum %d units allowed per item for your subscription", allowed),
			MaxAllowed: &allowed,
		}, nil
	}

	return &models.Availability{
		Available: true,
		Message:   "Product available for requested quantity",
	}, nil
}
