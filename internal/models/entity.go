package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet is the authoritative VDollar balance of one user. The id is the
// owning user's account id, shared with the clicker service. Version is the
// optimistic-concurrency token: every successful mutation increments it.
type Wallet struct {
	ID        int64           `db:"id" json:"walletId"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	Reserved  decimal.Decimal `db:"reserved" json:"reserved"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`
	Frozen    bool            `db:"frozen" json:"frozen"`
	Version   int             `db:"version" json:"version"`
}

type EventStatus string

const (
	EventStatusPending   EventStatus = "PENDING"
	EventStatusCompleted EventStatus = "COMPLETED"
	EventStatusFailed    EventStatus = "FAILED"
)

const (
	EventTypeCurrencyConversion = "CURRENCY_CONVERSION"

	ApplicantClicker = "CLICKER"
)

// OutboxEvent is one durable domain event, committed in the same transaction
// as the wallet mutation it describes. Events are append-only.
type OutboxEvent struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	AggregateID int64           `db:"aggregate_id" json:"aggregateId"`
	Type        string          `db:"type" json:"type"`
	Payload     json.RawMessage `db:"payload" json:"payload"`
	Status      EventStatus     `db:"status" json:"status"`
	Applicant   string          `db:"applicant" json:"applicant"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	ModifiedAt  time.Time       `db:"modified_at" json:"modifiedAt"`
	Version     int             `db:"version" json:"version"`
	Attempts    int             `db:"attempts" json:"-"`
}

const (
	CurrencyVCoin   = "VCoin"
	CurrencyVDollar = "VDollar"
)

// CurrencyConversionPayload carries the settled (rounded) amount, not the
// originally requested one.
type CurrencyConversionPayload struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// NewCurrencyConversionEvent builds a PENDING event addressed to the clicker
// service.
func NewCurrencyConversionEvent(walletID int64, payload CurrencyConversionPayload) (OutboxEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return OutboxEvent{}, err
	}
	now := time.Now().UTC()
	return OutboxEvent{
		ID:          uuid.New(),
		AggregateID: walletID,
		Type:        EventTypeCurrencyConversion,
		Payload:     body,
		Status:      EventStatusPending,
		Applicant:   ApplicantClicker,
		CreatedAt:   now,
		ModifiedAt:  now,
	}, nil
}

// ConversionPayload decodes the event body of a CURRENCY_CONVERSION event.
func (e OutboxEvent) ConversionPayload() (CurrencyConversionPayload, error) {
	var p CurrencyConversionPayload
	err := json.Unmarshal(e.Payload, &p)
	return p, err
}

// Account mirrors the clicker service's account representation, as returned
// by its HTTP API. Only the fields this service reads are mapped.
type Account struct {
	Level        int             `json:"level"`
	NetWorth     decimal.Decimal `json:"netWorth"`
	BalanceCoins decimal.Decimal `json:"balanceCoins"`
}
