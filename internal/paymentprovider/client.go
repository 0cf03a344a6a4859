// Package paymentprovider реализует HTTP‑клиент платёжного шлюза Paystack.
package paymentprovider

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/magabrotheeeer/quickmarket/internal/config"
)

// ErrGateway возвращается, если шлюз ответил ошибкой или status=false.
var ErrGateway = errors.New("payment gateway error")

// Client обращается к REST API Paystack с секретным ключом магазина.
type Client struct {
	secretKey  string
	apiURL     string
	currency   string
	httpClient *http.Client
}

// NewClient создаёт новый клиент Paystack.
func NewClient(cfg config.Paystack) *Client {
	return &Client{
		secretKey:  cfg.SecretKey,
		apiURL:     cfg.BaseURL,
		currency:   cfg.Currency,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Currency возвращает валюту платежей магазина.
func (c *Client) Currency() string {
	return c.currency
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func do[T any](c *Client, req *http.Request) (*T, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var env envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: unexpected response (%s)", ErrGateway, resp.Status)
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Status {
		return nil, fmt.Errorf("%w: %s: %s", ErrGateway, resp.Status, env.Message)
	}
	return &env.Data, nil
}

// InitializeTransaction создаёт транзакцию и возвращает ссылку на страницу оплаты.
func (c *Client) InitializeTransaction(ctx context.Context, r InitializeRequest) (*InitializeData, error) {
	const op = "paymentprovider.InitializeTransaction"

	if r.Currency == "" {
		r.Currency = c.currency
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/transaction/initialize", r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	data, err := do[InitializeData](c, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

// VerifyTransaction запрашивает итоговый статус транзакции по reference.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*Transaction, error) {
	const op = "paymentprovider.VerifyTransaction"

	req, err := c.newRequest(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	tx, err := do[Transaction](c, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tx, nil
}

// VerifySignature проверяет заголовок x-paystack-signature: HMAC-SHA512 тела
// запроса на секретном ключе, в hex.
func (c *Client) VerifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
