package clicker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"vcasino_wallet/internal/models"
)

var ErrAccountNotFound = errors.New("clicker account not found")

// Client talks to the clicker service, the external owner of VCoin balances.
// Conversion deliveries are idempotent on the clicker side per event id.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) GetAccount(ctx context.Context, accountID int64) (models.Account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/internal/accounts/%d", c.baseURL, accountID), nil)
	if err != nil {
		return models.Account{}, err
	}
	return c.do(req)
}

// DeductCoins removes amount VCoins from the account and returns the updated
// account. The ref ties the deduction to one conversion so a retried request
// is not applied twice.
func (c *Client) DeductCoins(ctx context.Context, accountID int64, amount decimal.Decimal, ref string) (models.Account, error) {
	body, _ := json.Marshal(map[string]any{
		"accountId":   accountID,
		"deductCoins": amount,
		"reference":   ref,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/internal/accounts/deduct", bytes.NewReader(body))
	if err != nil {
		return models.Account{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// RefundCoins returns a previously deducted amount to the account. The ref
// is the same one used for the deduction, so the clicker can pair the two
// and ignore a duplicate refund.
func (c *Client) RefundCoins(ctx context.Context, accountID int64, amount decimal.Decimal, ref string) (models.Account, error) {
	body, _ := json.Marshal(map[string]any{
		"accountId":   accountID,
		"refundCoins": amount,
		"reference":   ref,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/internal/accounts/refund", bytes.NewReader(body))
	if err != nil {
		return models.Account{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// ApplyConversion delivers one CURRENCY_CONVERSION outbox event. The clicker
// service deduplicates by event id, so redelivery is safe.
func (c *Client) ApplyConversion(ctx context.Context, event models.OutboxEvent) (models.Account, error) {
	payload, err := event.ConversionPayload()
	if err != nil {
		return models.Account{}, err
	}
	body, _ := json.Marshal(map[string]any{
		"eventId":   event.ID,
		"accountId": event.AggregateID,
		"from":      payload.From,
		"to":        payload.To,
		"amount":    payload.Amount,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/internal/currency-conversions", bytes.NewReader(body))
	if err != nil {
		return models.Account{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (models.Account, error) {
	res, err := c.http.Do(req)
	if err != nil {
		return models.Account{}, err
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return models.Account{}, ErrAccountNotFound
	}
	if res.StatusCode >= 300 {
		return models.Account{}, fmt.Errorf("clicker %s: http %d", req.URL.Path, res.StatusCode)
	}
	var account models.Account
	if err := json.NewDecoder(res.Body).Decode(&account); err != nil {
		return models.Account{}, err
	}
	return account, nil
}
