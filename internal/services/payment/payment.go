// Package payment реализует приём платежей через Paystack: инициализацию
// транзакции, проверку её статуса и обработку вебхука.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/quickmarket/internal/apperr"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
	"github.com/magabrotheeeer/quickmarket/internal/models"
	"github.com/magabrotheeeer/quickmarket/internal/paymentprovider"
)

// Gateway: клиент платёжного шлюза.
type Gateway interface {
	InitializeTransaction(ctx context.Context, r paymentprovider.InitializeRequest) (*paymentprovider.InitializeData, error)
	VerifyTransaction(ctx context.Context, reference string) (*paymentprovider.Transaction, error)
	VerifySignature(body []byte, signature string) bool
	Currency() string
}

// Repository хранит платежи.
type Repository interface {
	CreatePayment(ctx context.Context, p models.Payment) (int, error)
	GetPaymentByReference(ctx context.Context, reference string) (*models.Payment, error)
	CompletePayment(ctx context.Context, reference, status string, orderID *string) error
}

// PaymentService связывает платёжный шлюз с заказами и подписками.
type PaymentService struct {
	repo        Repository
	gateway     Gateway
	callbackURL string
	now         func() time.Time
	log         *slog.Logger
}

// New создает новый экземпляр PaymentService. frontendURL используется для адреса
// возврата пользователя после оплаты.
func New(repo Repository, gateway Gateway, frontendURL string, log *slog.Logger) *PaymentService {
	return &PaymentService{
		repo:        repo,
		gateway:     gateway,
		callbackURL: strings.TrimRight(frontendURL, "/") + "/payment/callback",
		now:         time.Now,
		log:         log,
	}
}

// Initialize создаёт платёж в статусе pending и транзакцию в шлюзе.
func (s *PaymentService) Initialize(ctx context.Context, user *models.User, req models.PaymentInit) (*models.PaymentCheckout, error) {
	if !req.Amount.IsPositive() {
		return nil, apperr.ErrValidation.WithDetails([]string{"amount must be greater than zero"})
	}

	reference := fmt.Sprintf("qm_%d_%s", s.now().UnixMilli(), user.ID)
	_, err := s.repo.CreatePayment(ctx, models.Payment{
		UserID:    user.ID,
		Reference: reference,
		Amount:    req.Amount,
		Currency:  s.gateway.Currency(),
		OrderID:   req.OrderID,
		PackageID: req.SubscriptionPackageID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store payment: %w", err)
	}

	metadata := map[string]any{
		"userId":    user.ID,
		"userEmail": user.Email,
	}
	if req.OrderID != nil {
		metadata["orderId"] = *req.OrderID
	}
	if req.SubscriptionPackageID != nil {
		metadata["subscriptionPackageId"] = *req.SubscriptionPackageID
	}

	data, err := s.gateway.InitializeTransaction(ctx, paymentprovider.InitializeRequest{
		Email:       user.Email,
		Amount:      paymentprovider.ToKobo(req.Amount),
		Reference:   reference,
		CallbackURL: s.callbackURL,
		Metadata:    metadata,
	})
	if err != nil {
		if cerr := s.repo.CompletePayment(ctx, reference, models.PaymentStatusFailed, nil); cerr != nil {
			s.log.Error("failed to mark payment failed", slog.String("reference", reference), sl.Err(cerr))
		}
		return nil, apperr.ErrPayment.Wrap(err)
	}

	s.log.Info("payment initialized", slog.String("user_id", user.ID), slog.String("reference", reference))
	return &models.PaymentCheckout{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}

// Verify запрашивает статус транзакции у шлюза. При успехе платёж и связанный
// заказ помечаются оплаченными.
func (s *PaymentService) Verify(ctx context.Context, user *models.User, reference string) (*models.PaymentResult, error) {
	if reference == "" {
		return nil, apperr.ErrPaymentReferenceRequired
	}

	stored, err := s.repo.GetPaymentByReference(ctx, reference)
	switch {
	case err == nil:
		if stored.UserID != user.ID {
			return nil, apperr.ErrPaymentNotFound
		}
	case errors.Is(err, apperr.ErrPaymentNotFound):
		stored = nil
	default:
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}

	tx, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		return nil, apperr.ErrPayment.Wrap(err)
	}

	result := &models.PaymentResult{
		Amount:    paymentprovider.FromKobo(tx.Amount),
		Currency:  tx.Currency,
		Reference: tx.Reference,
		Status:    tx.Status,
		OrderID:   orderIDOf(tx, stored),
	}

	switch tx.Status {
	case paymentprovider.StatusSuccess:
		if err = s.repo.CompletePayment(ctx, reference, models.PaymentStatusSuccess, result.OrderID); err != nil {
			return nil, fmt.Errorf("failed to complete payment: %w", err)
		}
		s.log.Info("payment verified", slog.String("reference", reference))
	case paymentprovider.StatusFailed:
		if err = s.repo.CompletePayment(ctx, reference, models.PaymentStatusFailed, nil); err != nil {
			return nil, fmt.Errorf("failed to complete payment: %w", err)
		}
	}
	return result, nil
}

// HandleWebhook проверяет подпись вебхука и применяет событие charge.success.
// Остальные события игнорируются.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !s.gateway.VerifySignature(body, signature) {
		return apperr.ErrInvalidSignature
	}

	var event paymentprovider.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return apperr.ErrInvalidBody.Wrap(err)
	}
	if event.Event != paymentprovider.EventChargeSuccess {
		s.log.Debug("webhook event ignored", slog.String("event", event.Event))
		return nil
	}

	reference := event.Data.Reference
	stored, err := s.repo.GetPaymentByReference(ctx, reference)
	if err != nil && !errors.Is(err, apperr.ErrPaymentNotFound) {
		return fmt.Errorf("failed to load payment: %w", err)
	}
	if err != nil {
		stored = nil
	}

	if err = s.repo.CompletePayment(ctx, reference, models.PaymentStatusSuccess, orderIDOf(&event.Data, stored)); err != nil {
		return fmt.Errorf("failed to complete payment: %w", err)
	}
	s.log.Info("payment confirmed by webhook", slog.String("reference", reference))
	return nil
}

// orderIDOf берёт заказ из сохранённого платежа, иначе из metadata транзакции.
func orderIDOf(tx *paymentprovider.Transaction, stored *models.Payment) *string {
	if stored != nil && stored.OrderID != nil {
		return stored.OrderID
	}
	if id := tx.MetadataValue("orderId"); id != "" {
		return &id
	}
	return nil
}
