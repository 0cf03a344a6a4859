// Package services содержит отправку писем по событиям из очереди уведомлений.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"strings"

	"github.com/magabrotheeeer/quickmarket/internal/config"
	"github.com/magabrotheeeer/quickmarket/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
	"github.com/magabrotheeeer/quickmarket/internal/lib/smtp"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

// SenderService формирует и отправляет письма.
type SenderService struct {
	transport smtp.TransportInterface
	frontend  config.Frontend
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(frontend config.Frontend, log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		frontend:  frontend,
		log:       log,
	}
}

// Handlers возвращает обработчики для очередей уведомлений по ключу маршрутизации.
func (s *SenderService) Handlers() map[string]rabbitmq.Handler {
	return map[string]rabbitmq.Handler{
		rabbitmq.RoutingEmailVerification:    s.SendVerification,
		rabbitmq.RoutingOrderConfirmation:    s.SendOrderConfirmation,
		rabbitmq.RoutingSubscriptionExpiring: s.SendSubscriptionExpiring,
	}
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: error unmarshalling message: %v", rabbitmq.ErrPermanent, err)
	}
	return nil
}

// SendVerification отправляет ссылку для подтверждения email.
func (s *SenderService) SendVerification(_ context.Context, body []byte) error {
	var msg models.VerificationEmail
	if err := decode(body, &msg); err != nil {
		return err
	}

	link := s.frontend.EmailVerificationBaseURL + "?token=" + url.QueryEscape(msg.Token)
	html, err := render(verificationTmpl, map[string]any{"UserName": msg.UserName, "URL": link})
	if err != nil {
		return err
	}
	return s.sendEmail([]string{msg.Email}, "Verify your Quick Market account", html)
}

// SendOrderConfirmation отправляет подтверждение заказа.
func (s *SenderService) SendOrderConfirmation(_ context.Context, body []byte) error {
	var msg models.OrderConfirmationEmail
	if err := decode(body, &msg); err != nil {
		return err
	}

	html, err := render(orderConfirmationTmpl, msg)
	if err != nil {
		return err
	}
	return s.sendEmail([]string{msg.Email}, "Order Confirmation #"+msg.OrderID, html)
}

// SendSubscriptionExpiring напоминает о скором окончании подписки.
func (s *SenderService) SendSubscriptionExpiring(_ context.Context, body []byte) error {
	var msg models.ExpiringSubscription
	if err := decode(body, &msg); err != nil {
		return err
	}

	html, err := render(expiringTmpl, map[string]any{
		"FirstName": msg.FirstName,
		"Package":   models.DisplayName(msg.PackageName),
		"ExpiresAt": msg.ExpiresAt.Format("Monday, 2 January 2006"),
		"RenewURL":  strings.TrimRight(s.frontend.URL, "/") + "/dashboard",
	})
	if err != nil {
		return err
	}
	return s.sendEmail([]string{msg.Email}, "Your Quick Market subscription is ending soon", html)
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: render %s: %v", rabbitmq.ErrPermanent, tmpl.Name(), err)
	}
	return buf.String(), nil
}

func (s *SenderService) sendEmail(to []string, subject, html string) error {
	from := s.transport.Sender()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		html,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err = client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err = client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}
	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent", slog.String("subject", subject), slog.Any("to", to))
	return nil
}
