// Package apperr описывает ошибки предметной области: HTTP‑статус,
// машиночитаемый код и сообщение для клиента. Сервисы возвращают эти ошибки,
// а HTTP‑слой превращает их в ответ через response.Fail.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Error: ошибка с кодом и HTTP‑статусом.
type Error struct {
	Status  int
	Code    string
	Message string
	Details any
	Err     error
}

// New создаёт ошибку с заданным статусом, кодом и сообщением.
func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по коду и HTTP-статусу, поэтому копии с деталями совпадают
// с исходной переменной. Один код может принадлежать нескольким переменным с разным статусом.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Status == t.Status
}

// WithDetails возвращает копию ошибки с дополнительными данными для клиента.
func (e *Error) WithDetails(details any) *Error {
	c := *e
	c.Details = details
	return &c
}

// WithMessage возвращает копию ошибки с другим сообщением.
func (e *Error) WithMessage(message string) *Error {
	c := *e
	c.Message = message
	return &c
}

// Wrap возвращает копию ошибки, оборачивающую причину.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.Err = err
	return &c
}

// Валидация.
var (
	ErrValidation               = New(http.StatusBadRequest, "VALIDATION_ERROR", "validation error")
	ErrInvalidBody              = New(http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	ErrInvalidQuantity          = New(http.StatusBadRequest, "INVALID_QUANTITY", "valid quantity required")
	ErrOrderItemsRequired       = New(http.StatusBadRequest, "ORDER_ITEMS_REQUIRED", "order items required")
	ErrPaymentReferenceRequired = New(http.StatusBadRequest, "PAYMENT_REFERENCE_REQUIRED", "payment reference required")
	ErrConfirmationRequired     = New(http.StatusBadRequest, "CONFIRMATION_REQUIRED", "account deletion confirmation required")
	ErrEmailRequired            = New(http.StatusBadRequest, "EMAIL_REQUIRED", "email is required")
	ErrVerificationTokenMissing = New(http.StatusBadRequest, "NO_TOKEN", "verification token required")
	ErrVerificationTokenInvalid = New(http.StatusBadRequest, "INVALID_TOKEN", "invalid or expired verification token")
	ErrAlreadyVerified          = New(http.StatusBadRequest, "ALREADY_VERIFIED", "email already verified")
	ErrInvalidReference         = New(http.StatusBadRequest, "INVALID_REFERENCE", "referenced resource does not exist")
	ErrMissingField             = New(http.StatusBadRequest, "MISSING_REQUIRED_FIELD", "required field is missing")
	ErrInvalidOAuthState        = New(http.StatusBadRequest, "INVALID_OAUTH_STATE", "invalid oauth state")
)

// Аутентификация и авторизация.
var (
	ErrNoToken              = New(http.StatusUnauthorized, "NO_TOKEN", "access token required")
	ErrInvalidToken         = New(http.StatusUnauthorized, "INVALID_TOKEN", "invalid token")
	ErrTokenExpired         = New(http.StatusUnauthorized, "TOKEN_EXPIRED", "token expired")
	ErrInvalidUser          = New(http.StatusUnauthorized, "INVALID_USER", "invalid token - user not found")
	ErrInvalidCredentials   = New(http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
	ErrInvalidSignature     = New(http.StatusUnauthorized, "INVALID_SIGNATURE", "invalid webhook signature")
	ErrEmailNotVerified     = New(http.StatusForbidden, "EMAIL_NOT_VERIFIED", "email verification required")
	ErrNoLocation           = New(http.StatusForbidden, "NO_LOCATION", "location selection required")
	ErrOutsideOrderWindow   = New(http.StatusForbidden, "OUTSIDE_ORDER_WINDOW", "orders can only be placed during the order window")
	ErrNoActiveSubscription = New(http.StatusForbidden, "NO_ACTIVE_SUBSCRIPTION", "active subscription required")
	ErrNoSlotsRemaining     = New(http.StatusForbidden, "NO_SLOTS_REMAINING", "no delivery slots remaining in your subscription")
)

// Конфликты.
var (
	ErrUserExists               = New(http.StatusConflict, "USER_EXISTS", "user already exists with this email")
	ErrActiveSubscriptionExists = New(http.StatusConflict, "ACTIVE_SUBSCRIPTION_EXISTS", "user already has an active subscription")
	ErrActiveDataExists         = New(http.StatusConflict, "ACTIVE_DATA_EXISTS", "cannot delete account with active subscriptions or pending orders")
	ErrDuplicate                = New(http.StatusConflict, "DUPLICATE_RESOURCE", "resource already exists")
)

// Не найдено.
var (
	ErrProductNotFound = New(http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found")
	ErrPackageNotFound = New(http.StatusNotFound, "PACKAGE_NOT_FOUND", "package not found or not available for your location")
	ErrUserNotFound    = New(http.StatusNotFound, "USER_NOT_FOUND", "user not found")
	// Тот же код, что и у ErrNoActiveSubscription, но для операций над самой подпиской.
	ErrSubscriptionNotFound = New(http.StatusNotFound, "NO_ACTIVE_SUBSCRIPTION", "no active subscription found")
	ErrPaymentNotFound      = New(http.StatusNotFound, "PAYMENT_NOT_FOUND", "payment not found")
	ErrRouteNotFound        = New(http.StatusNotFound, "ROUTE_NOT_FOUND", "route not found")
)

// Внешние сервисы и прочее.
var (
	ErrPayment     = New(http.StatusPaymentRequired, "PAYMENT_ERROR", "payment processing failed")
	ErrEmail       = New(http.StatusBadGateway, "EMAIL_ERROR", "failed to send email")
	ErrRateLimit   = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "too many requests")
	ErrInternal    = New(http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	ErrUnavailable = New(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "service unavailable")
)

// As извлекает *Error из цепочки ошибок.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// FromDB переводит нарушения ограничений PostgreSQL в ошибки предметной области.
// Остальные ошибки возвращаются без изменений.
func FromDB(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return ErrDuplicate.WithDetails(pgErr.ConstraintName).Wrap(err)
	case pgerrcode.ForeignKeyViolation:
		return ErrInvalidReference.WithDetails(pgErr.ConstraintName).Wrap(err)
	case pgerrcode.NotNullViolation:
		return ErrMissingField.WithDetails(pgErr.ColumnName).Wrap(err)
	default:
		return err
	}
}
