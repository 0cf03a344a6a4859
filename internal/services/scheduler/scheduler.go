// Package services содержит задачи планировщика: перевод просроченных подписок
// в статус expired и рассылку напоминаний об окончании подписки.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/quickmarket/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
	"github.com/magabrotheeeer/quickmarket/internal/metrics"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

// Имена задач планировщика.
const (
	JobExpire    = "expire_subscriptions"
	JobReminders = "expiry_reminders"
)

// SubscriptionRepository описывает выборки подписок для задач планировщика.
type SubscriptionRepository interface {
	ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error)
	FindExpiringSubscriptions(ctx context.Context, now time.Time, within time.Duration) ([]*models.ExpiringSubscription, error)
}

// Publisher отправляет события в очередь уведомлений.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Locker не даёт нескольким экземплярам выполнять одну задачу одновременно.
type Locker interface {
	Lock(ctx context.Context, job string) (unlock func(context.Context) error, err error)
}

// SchedulerService выполняет периодические задачи над подписками.
type SchedulerService struct {
	repo           SubscriptionRepository
	publisher      Publisher
	locker         Locker
	reminderWithin time.Duration
	now            func() time.Time
	log            *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo SubscriptionRepository, publisher Publisher, locker Locker, reminderDays int,
	log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo:           repo,
		publisher:      publisher,
		locker:         locker,
		reminderWithin: time.Duration(reminderDays) * 24 * time.Hour,
		now:            time.Now,
		log:            log,
	}
}

// RunExpire выполняет задачу JobExpire под блокировкой.
func (s *SchedulerService) RunExpire(ctx context.Context) {
	s.runLocked(ctx, JobExpire, s.ExpireSubscriptions)
}

// RunReminders выполняет задачу JobReminders под блокировкой.
func (s *SchedulerService) RunReminders(ctx context.Context) {
	s.runLocked(ctx, JobReminders, s.SendExpiryReminders)
}

func (s *SchedulerService) runLocked(ctx context.Context, job string, fn func(context.Context) error) {
	log := s.log.With(slog.String("job", job))

	unlock, err := s.locker.Lock(ctx, job)
	if errors.Is(err, ErrLockBusy) {
		log.Info("job lock not acquired, skipping", sl.Err(err))
		metrics.SchedulerRuns.WithLabelValues(job, "skipped").Inc()
		return
	}
	if err != nil {
		log.Error("failed to acquire job lock", sl.Err(err))
		metrics.SchedulerRuns.WithLabelValues(job, "error").Inc()
		return
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			log.Warn("failed to release job lock", sl.Err(err))
		}
	}()

	if err = fn(ctx); err != nil {
		log.Error("job failed", sl.Err(err))
		metrics.SchedulerRuns.WithLabelValues(job, "error").Inc()
		return
	}
	metrics.SchedulerRuns.WithLabelValues(job, "ok").Inc()
}

// ExpireSubscriptions переводит в статус expired подписки, срок которых истёк.
func (s *SchedulerService) ExpireSubscriptions(ctx context.Context) error {
	n, err := s.repo.ExpireSubscriptions(ctx, s.now())
	if err != nil {
		return fmt.Errorf("failed to expire subscriptions: %w", err)
	}
	if n > 0 {
		s.log.Info("subscriptions expired", slog.Int64("count", n))
	}
	return nil
}

// SendExpiryReminders публикует напоминания по подпискам, истекающим в ближайшие дни.
// Ошибка публикации одного напоминания не останавливает остальные.
func (s *SchedulerService) SendExpiryReminders(ctx context.Context) error {
	subs, err := s.repo.FindExpiringSubscriptions(ctx, s.now(), s.reminderWithin)
	if err != nil {
		return fmt.Errorf("failed to find expiring subscriptions: %w", err)
	}
	if len(subs) == 0 {
		s.log.Info("no expiring subscriptions found")
		return nil
	}

	s.log.Info("found expiring subscriptions", slog.Int("count", len(subs)))
	failed := 0
	for _, sub := range subs {
		if err = s.publisher.Publish(ctx, rabbitmq.RoutingSubscriptionExpiring, sub); err != nil {
			failed++
			s.log.Error("failed to publish reminder", slog.String("subscription_id", sub.SubscriptionID), sl.Err(err))
		}
	}
	if failed == len(subs) {
		return fmt.Errorf("failed to publish %d reminders", failed)
	}
	return nil
}
