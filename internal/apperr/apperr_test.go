package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("storage.CreateOrder: %w", ErrProductNotFound.WithDetails("p-1"))

	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.NotErrorIs(t, err, ErrPackageNotFound)

	got, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, "p-1", got.Details)
	assert.Nil(t, ErrProductNotFound.Details, "sentinel must stay untouched")
}

func TestError_IsDistinguishesSharedCodes(t *testing.T) {
	tests := []struct {
		name  string
		err   *Error
		other *Error
	}{
		{name: "subscription gate vs lookup", err: ErrSubscriptionNotFound, other: ErrNoActiveSubscription},
		{name: "missing tokens", err: ErrVerificationTokenMissing, other: ErrNoToken},
		{name: "invalid tokens", err: ErrVerificationTokenInvalid, other: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.err.Code, tt.other.Code)
			wrapped := fmt.Errorf("op: %w", tt.err.WithDetails("x"))

			assert.ErrorIs(t, wrapped, tt.err)
			assert.NotErrorIs(t, wrapped, tt.other)
			assert.NotErrorIs(t, fmt.Errorf("op: %w", tt.other), tt.err)
		})
	}
}

func TestError_WrapKeepsCause(t *testing.T) {
	cause := errors.New("gateway timeout")
	err := ErrPayment.Wrap(cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrPayment)
	assert.Contains(t, err.Error(), "gateway timeout")
}

func TestFromDB(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{
			name:       "unique violation",
			err:        &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"},
			wantCode:   "DUPLICATE_RESOURCE",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "foreign key violation",
			err:        fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}),
			wantCode:   "INVALID_REFERENCE",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not null violation",
			err:        &pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "email"},
			wantCode:   "MISSING_REQUIRED_FIELD",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := As(FromDB(tt.err))
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantStatus, got.Status)
		})
	}
}

func TestFromDB_PassThrough(t *testing.T) {
	plain := errors.New("connection refused")
	assert.Same(t, plain, FromDB(plain))

	other := &pgconn.PgError{Code: pgerrcode.SerializationFailure}
	_, ok := As(FromDB(other))
	assert.False(t, ok)
}
