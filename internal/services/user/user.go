// Package services содержит логику профиля пользователя, выбора локации и удаления аккаунта.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/quickmarket/internal/apperr"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

// UserRepository описывает операции с профилем и локациями.
type UserRepository interface {
	UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error)
	SetLocation(ctx context.Context, userID, location string) error
	ActiveData(ctx context.Context, userID string) (models.ActiveData, error)
	SoftDeleteUser(ctx context.Context, userID string) error
	CurrentSubscription(ctx context.Context, userID string) (*models.UserSubscription, error)
	Locations(ctx context.Context) ([]*models.Location, error)
	DeliveryPoints(ctx context.Context, location string) ([]*models.DeliveryPoint, error)
	LocationExists(ctx context.Context, location string) (bool, error)
}

// UserService реализует операции над профилем пользователя.
type UserService struct {
	repo UserRepository
	log  *slog.Logger
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(repo UserRepository, log *slog.Logger) *UserService {
	return &UserService{
		repo: repo,
		log:  log,
	}
}

// Profile возвращает профиль с кратким описанием активной подписки.
func (s *UserService) Profile(ctx context.Context, user *models.User) (*models.Profile, error) {
	profile := &models.Profile{User: *user}

	sub, err := s.repo.CurrentSubscription(ctx, user.ID)
	switch {
	case errors.Is(err, apperr.ErrSubscriptionNotFound):
		return profile, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load profile subscription: %w", err)
	}

	profile.Subscription = &models.ProfileSubscription{
		ID:          sub.ID,
		Status:      sub.Status,
		PackageName: sub.PackageName,
		SlotsUsed:   sub.SlotsUsed,
		ExpiresAt:   sub.ExpiresAt,
	}
	return profile, nil
}

// UpdateProfile меняет имя, фамилию и телефон.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error) {
	user, err := s.repo.UpdateProfile(ctx, userID, upd)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SelectLocation сохраняет локацию доставки. Локация должна входить в число тех,
// для которых заданы цены тарифов.
func (s *UserService) SelectLocation(ctx context.Context, userID, location string) (string, error) {
	location = strings.ToLower(strings.TrimSpace(location))

	ok, err := s.repo.LocationExists(ctx, location)
	if err != nil {
		return "", fmt.Errorf("failed to check location: %w", err)
	}
	if !ok {
		return "", apperr.ErrValidation.WithDetails([]string{
			fmt.Sprintf("location %q is not available for delivery", location),
		})
	}

	if err = s.repo.SetLocation(ctx, userID, location); err != nil {
		return "", err
	}
	s.log.Info("location selected", slog.String("user_id", userID), slog.String("location", location))
	return location, nil
}

// Locations возвращает список локаций доставки с пунктами выдачи.
func (s *UserService) Locations(ctx context.Context) ([]*models.Location, error) {
	return s.repo.Locations(ctx)
}

// DeliveryPoints возвращает активные пункты выдачи в локации.
func (s *UserService) DeliveryPoints(ctx context.Context, location string) ([]*models.DeliveryPoint, error) {
	return s.repo.DeliveryPoints(ctx, location)
}

// DeleteAccount обезличивает аккаунт. Удаление запрещено, пока у пользователя есть
// активная подписка или незавершённые заказы.
func (s *UserService) DeleteAccount(ctx context.Context, userID string, confirm bool) error {
	if !confirm {
		return apperr.ErrConfirmationRequired
	}

	data, err := s.repo.ActiveData(ctx, userID)
	if err != nil {
		return err
	}
	if data.ActiveSubscriptions > 0 || data.PendingOrders > 0 {
		return apperr.ErrActiveDataExists.WithDetails(data)
	}

	if err = s.repo.SoftDeleteUser(ctx, userID); err != nil {
		return err
	}
	s.log.Info("account deleted", slog.String("user_id", userID))
	return nil
}
