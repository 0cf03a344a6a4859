// Package services содержит бизнес-логику тарифов и подписок пользователей.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/magabrotheeeer/quickmarket/internal/apperr"
	"github.com/magabrotheeeer/quickmarket/internal/cache"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

const expiringSoonDays = 7

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	// ActiveSubscription возвращает действующую подписку или ErrNoActiveSubscription.
	ActiveSubscription(ctx context.Context, userID string) (*models.ActiveSubscription, error)
	// CurrentSubscription возвращает последнюю подписку со статусом active.
	CurrentSubscription(ctx context.Context, userID string) (*models.UserSubscription, error)
	SubscriptionHistory(ctx context.Context, userID string) ([]*models.UserSubscription, error)
	HasActiveSubscription(ctx context.Context, userID string) (bool, error)
	PackageOffers(ctx context.Context, location string) ([]*models.PackageOffer, error)
	PackageOffer(ctx context.Context, packageID, location string) (*models.PackageOffer, error)
	CreateSubscription(ctx context.Context, ns models.NewSubscription) (*models.UserSubscription, error)
	RenewSubscription(ctx context.Context, current *models.UserSubscription, price models.PackageOffer,
		paymentReference string) (*models.UserSubscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// SubscriptionService реализует бизнес-логику работы с подписками, включая кеширование тарифов.
type SubscriptionService struct {
	repo       SubscriptionRepository
	cache      Cache
	packageTTL time.Duration
	now        func() time.Time
	log        *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, cache Cache, packageTTL time.Duration,
	log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:       repo,
		cache:      cache,
		packageTTL: packageTTL,
		now:        time.Now,
		log:        log,
	}
}

// ActiveSubscription проверяет, что у пользователя есть действующая подписка.
// Возвращает ErrNoActiveSubscription, если её нет или срок истёк.
func (s *SubscriptionService) ActiveSubscription(ctx context.Context, userID string) (*models.ActiveSubscription, error) {
	return s.repo.ActiveSubscription(ctx, userID)
}

// Packages возвращает тарифы для локации. Список берётся из кеша, при промахе
// или ошибке кеша читается из базы.
func (s *SubscriptionService) Packages(ctx context.Context, location string) (*models.PackageCatalog, error) {
	key := cache.PackagesKey(location)

	var offers []*models.PackageOffer
	found, err := s.cache.Get(ctx, key, &offers)
	if err != nil {
		s.log.Warn("failed to read packages from cache", slog.String("key", key), sl.Err(err))
	}
	if !found {
		offers, err = s.repo.PackageOffers(ctx, location)
		if err != nil {
			return nil, fmt.Errorf("failed to list packages: %w", err)
		}
		for _, o := range offers {
			o.DisplayName = models.DisplayName(o.Name)
			o.Features = packageFeatures(o.Name, o.Slots, o.MaxQuantityPerItem)
		}
		if err = s.cache.Set(ctx, key, offers, s.packageTTL); err != nil {
			s.log.Warn("failed to cache packages", slog.String("key", key), sl.Err(err))
		}
	}

	return &models.PackageCatalog{
		Packages:            offers,
		Location:            location,
		LocationDisplayName: models.DisplayName(location),
	}, nil
}

func packageFeatures(name string, slots, maxPerItem *int) []string {
	features := make([]string, 0, 6)
	if slots != nil {
		features = append(features, fmt.Sprintf("%d delivery slots per cycle", *slots))
	} else {
		features = append(features, "Unlimited delivery slots")
	}
	if maxPerItem != nil {
		features = append(features, fmt.Sprintf("Up to %d units per item", *maxPerItem))
	} else {
		features = append(features, "No quantity limits per item")
	}
	features = append(features, "Bulk pricing discounts", "Thursday-Saturday delivery", "Email notifications")
	if name == "6_slots" || name == "unlimited" {
		features = append(features, "Priority customer support")
	}
	return features
}

// Current возвращает текущую подписку с числом дней до окончания.
// Если активной подписки нет, возвращает nil без ошибки.
func (s *SubscriptionService) Current(ctx context.Context, userID string) (*models.CurrentSubscription, error) {
	sub, err := s.repo.CurrentSubscription(ctx, userID)
	if errors.Is(err, apperr.ErrSubscriptionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current subscription: %w", err)
	}

	days := int(math.Ceil(sub.ExpiresAt.Sub(s.now()).Hours() / 24))
	return &models.CurrentSubscription{
		UserSubscription: *sub,
		DisplayName:      models.DisplayName(sub.PackageName),
		SlotsRemaining:   sub.SlotsRemaining(),
		DaysUntilExpiry:  days,
		IsExpiringSoon:   days <= expiringSoonDays && days > 0,
		IsExpired:        days <= 0,
	}, nil
}

// Status возвращает краткое состояние подписки или nil, если активной подписки нет.
func (s *SubscriptionService) Status(ctx context.Context, userID string) (*models.SubscriptionStatus, error) {
	sub, err := s.repo.CurrentSubscription(ctx, userID)
	if errors.Is(err, apperr.ErrSubscriptionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription status: %w", err)
	}

	return &models.SubscriptionStatus{
		ID:                 sub.ID,
		Status:             sub.Status,
		PackageName:        sub.PackageName,
		TotalSlots:         sub.Slots,
		SlotsUsed:          sub.SlotsUsed,
		SlotsRemaining:     sub.SlotsRemaining(),
		MaxQuantityPerItem: sub.MaxQuantityPerItem,
		PricePaid:          sub.PricePaid,
		StartsAt:           sub.StartsAt,
		ExpiresAt:          sub.ExpiresAt,
		IsExpiringSoon:     sub.ExpiresAt.Sub(s.now()) < expiringSoonDays*24*time.Hour,
	}, nil
}

// Purchase оформляет подписку на тариф по цене локации пользователя.
// Проверка на уже существующую подписку выполняется вне транзакции.
func (s *SubscriptionService) Purchase(ctx context.Context, user *models.User,
	req models.PurchaseRequest) (*models.CurrentSubscription, error) {
	has, err := s.repo.HasActiveSubscription(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check active subscription: %w", err)
	}
	if has {
		return nil, apperr.ErrActiveSubscriptionExists
	}

	location := ""
	if user.Location != nil {
		location = *user.Location
	}
	offer, err := s.repo.PackageOffer(ctx, req.PackageID, location)
	if err != nil {
		return nil, err
	}

	startsAt := s.now().UTC()
	sub, err := s.repo.CreateSubscription(ctx, models.NewSubscription{
		UserID:           user.ID,
		PackageID:        offer.ID,
		Location:         location,
		PricePaid:        offer.Price,
		StartsAt:         startsAt,
		ExpiresAt:        startsAt.Add(models.SubscriptionPeriod),
		PaymentReference: req.PaymentReference,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	s.log.Info("subscription purchased",
		slog.String("user_id", user.ID),
		slog.String("subscription_id", sub.ID),
		slog.String("package", offer.Name))
	return &models.CurrentSubscription{
		UserSubscription: *sub,
		DisplayName:      models.DisplayName(sub.PackageName),
		SlotsRemaining:   sub.SlotsRemaining(),
		DaysUntilExpiry:  int(models.SubscriptionPeriod.Hours() / 24),
	}, nil
}

// Renew закрывает текущий период подписки и открывает следующий,
// начиная с даты окончания текущего.
func (s *SubscriptionService) Renew(ctx context.Context, userID, paymentReference string) (*models.UserSubscription, error) {
	if paymentReference == "" {
		return nil, apperr.ErrPaymentReferenceRequired
	}

	current, err := s.repo.CurrentSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	offer, err := s.repo.PackageOffer(ctx, current.PackageID, current.Location)
	if err != nil {
		return nil, err
	}

	next, err := s.repo.RenewSubscription(ctx, current, *offer, paymentReference)
	if err != nil {
		return nil, fmt.Errorf("failed to renew subscription: %w", err)
	}
	s.log.Info("subscription renewed",
		slog.String("user_id", userID),
		slog.String("previous_id", current.ID),
		slog.String("subscription_id", next.ID))
	return next, nil
}

// Cancel отменяет текущую подписку и возвращает дату, до которой она была оплачена.
func (s *SubscriptionService) Cancel(ctx context.Context, userID, reason string) (time.Time, error) {
	current, err := s.repo.CurrentSubscription(ctx, userID)
	if err != nil {
		return time.Time{}, err
	}
	if err = s.repo.CancelSubscription(ctx, current.ID); err != nil {
		return time.Time{}, err
	}

	if reason == "" {
		reason = "No reason provided"
	}
	s.log.Info("subscription cancelled",
		slog.String("user_id", userID),
		slog.String("subscription_id", current.ID),
		slog.String("reason", reason))
	return current.ExpiresAt, nil
}

// History возвращает все подписки пользователя.
func (s *SubscriptionService) History(ctx context.Context, userID string) ([]*models.UserSubscription, error) {
	subs, err := s.repo.SubscriptionHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription history: %w", err)
	}
	return subs, nil
}
