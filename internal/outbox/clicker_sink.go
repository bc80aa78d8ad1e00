package outbox

import (
	"context"

	"vcasino_wallet/internal/clicker"
	"vcasino_wallet/internal/models"
)

// ClickerSink delivers events to the clicker service over HTTP.
type ClickerSink struct {
	client *clicker.Client
}

func NewClickerSink(client *clicker.Client) *ClickerSink {
	return &ClickerSink{client: client}
}

func (s *ClickerSink) Deliver(ctx context.Context, event models.OutboxEvent) error {
	_, err := s.client.ApplyConversion(ctx, event)
	return err
}
