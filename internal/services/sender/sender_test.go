package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/quickmarket/internal/config"
	"github.com/magabrotheeeer/quickmarket/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/quickmarket/internal/lib/smtp"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) Sender() string {
	args := m.Called()
	return args.String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	args := m.Called(from)
	return args.Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSMTPClient) Quit() error {
	args := m.Called()
	return args.Error(0)
}

// captureWriter запоминает записанное письмо.
type captureWriter struct {
	buf      []byte
	closeErr error
}

func (w *captureWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *captureWriter) Close() error {
	return w.closeErr
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

var testFrontend = config.Frontend{
	URL:                      "https://app.quickmarket.test/",
	EmailVerificationBaseURL: "https://app.quickmarket.test/verify-email",
}

// expectDelivery настраивает успешную отправку одного письма и возвращает writer с его содержимым.
func expectDelivery(tr *MockTransport, to string) *captureWriter {
	client := new(MockSMTPClient)
	w := &captureWriter{}

	tr.On("Sender").Return("noreply@quickmarket.test")
	tr.On("Connect").Return(client, nil).Once()
	client.On("Mail", "noreply@quickmarket.test").Return(nil).Once()
	client.On("Rcpt", to).Return(nil).Once()
	client.On("Data").Return(w, nil).Once()
	client.On("Quit").Return(nil).Once()
	client.On("Close").Return(nil).Once()
	return w
}

func TestSenderService_SendVerification(t *testing.T) {
	tr := new(MockTransport)
	w := expectDelivery(tr, "ada@example.com")
	s := NewSenderService(testFrontend, newNoopLogger(), tr)

	err := s.SendVerification(context.Background(),
		[]byte(`{"email":"ada@example.com","token":"abc-123","userName":"Ada Obi"}`))
	require.NoError(t, err)

	mail := string(w.buf)
	assert.Contains(t, mail, "Subject: Verify your Quick Market account")
	assert.Contains(t, mail, "Content-Type: text/html")
	assert.Contains(t, mail, "Welcome to Quick Market, Ada Obi!")
	assert.Contains(t, mail, "https://app.quickmarket.test/verify-email?token=abc-123")
	tr.AssertExpectations(t)
}

func TestSenderService_SendOrderConfirmation(t *testing.T) {
	tr := new(MockTransport)
	w := expectDelivery(tr, "ada@example.com")
	s := NewSenderService(testFrontend, newNoopLogger(), tr)

	err := s.SendOrderConfirmation(context.Background(),
		[]byte(`{"email":"ada@example.com","orderId":"ord-1","totalAmount":"2500.5","deliveryFee":"0","deliveryDate":"Friday"}`))
	require.NoError(t, err)

	mail := string(w.buf)
	assert.Contains(t, mail, "Subject: Order Confirmation #ord-1")
	assert.Contains(t, mail, "2500.50")
	assert.Contains(t, mail, "Expected Delivery:</strong> Friday")
	tr.AssertExpectations(t)
}

func TestSenderService_SendSubscriptionExpiring(t *testing.T) {
	tr := new(MockTransport)
	w := expectDelivery(tr, "ada@example.com")
	s := NewSenderService(testFrontend, newNoopLogger(), tr)

	err := s.SendSubscriptionExpiring(context.Background(),
		[]byte(`{"email":"ada@example.com","firstName":"Ada","packageName":"basic_family","expiresAt":"2026-03-06T00:00:00Z"}`))
	require.NoError(t, err)

	mail := string(w.buf)
	assert.Contains(t, mail, "Hi Ada")
	assert.Contains(t, mail, "Basic Family")
	assert.Contains(t, mail, "Friday, 6 March 2026")
	assert.Contains(t, mail, "https://app.quickmarket.test/dashboard")
	tr.AssertExpectations(t)
}

func TestSenderService_Errors(t *testing.T) {
	body := []byte(`{"email":"ada@example.com","token":"t","userName":"Ada"}`)

	tests := []struct {
		name         string
		body         []byte
		setupMocks   func(*MockTransport)
		permanent    bool
		errorMessage string
	}{
		{
			name:         "invalid JSON",
			body:         []byte(`invalid json`),
			setupMocks:   func(_ *MockTransport) {},
			permanent:    true,
			errorMessage: "error unmarshalling message",
		},
		{
			name: "SMTP connection error",
			body: body,
			setupMocks: func(tr *MockTransport) {
				tr.On("Sender").Return("noreply@quickmarket.test")
				tr.On("Connect").Return(nil, errors.New("connection error")).Once()
			},
			errorMessage: "connection error",
		},
		{
			name: "recipient rejected",
			body: body,
			setupMocks: func(tr *MockTransport) {
				client := new(MockSMTPClient)
				tr.On("Sender").Return("noreply@quickmarket.test")
				tr.On("Connect").Return(client, nil).Once()
				client.On("Mail", "noreply@quickmarket.test").Return(nil).Once()
				client.On("Rcpt", "ada@example.com").Return(errors.New("550 mailbox unavailable")).Once()
				client.On("Close").Return(nil).Once()
			},
			errorMessage: "550 mailbox unavailable",
		},
		{
			name: "data writer close error",
			body: body,
			setupMocks: func(tr *MockTransport) {
				client := new(MockSMTPClient)
				tr.On("Sender").Return("noreply@quickmarket.test")
				tr.On("Connect").Return(client, nil).Once()
				client.On("Mail", "noreply@quickmarket.test").Return(nil).Once()
				client.On("Rcpt", "ada@example.com").Return(nil).Once()
				client.On("Data").Return(&captureWriter{closeErr: errors.New("close error")}, nil).Once()
				client.On("Close").Return(nil).Once()
			},
			errorMessage: "close error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := new(MockTransport)
			tt.setupMocks(tr)
			s := NewSenderService(testFrontend, newNoopLogger(), tr)

			err := s.SendVerification(context.Background(), tt.body)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMessage)
			assert.Equal(t, tt.permanent, errors.Is(err, rabbitmq.ErrPermanent))
			tr.AssertExpectations(t)
		})
	}
}

func TestSenderService_Handlers(t *testing.T) {
	s := NewSenderService(testFrontend, newNoopLogger(), new(MockTransport))
	handlers := s.Handlers()

	for _, q := range rabbitmq.NotificationQueues() {
		assert.Contains(t, handlers, q.RoutingKey)
	}
}
