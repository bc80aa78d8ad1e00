package repository_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"vcasino_wallet/internal/models"
	"vcasino_wallet/internal/repository"
	"vcasino_wallet/internal/testutil"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newConversionEvent(t *testing.T, walletID int64, amount string) models.OutboxEvent {
	t.Helper()
	event, err := models.NewCurrencyConversionEvent(walletID, models.CurrencyConversionPayload{
		From:   models.CurrencyVCoin,
		To:     models.CurrencyVDollar,
		Amount: decimal.RequireFromString(amount),
	})
	assert.NoError(t, err)
	return event
}

func TestCreateAndGetWallet(t *testing.T) {
	pool, teardown := testutil.SetupTestDB(t)
	defer teardown()
	repo := repository.NewWalletPGRepository(pool, testLogger)

	_, err := repo.GetWallet(context.Background(), 1)
	assert.ErrorIs(t, err, repository.ErrWalletNotFound)

	wallet, err := repo.CreateWallet(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), wallet.ID)
	assert.True(t, wallet.Balance.IsZero())
	assert.True(t, wallet.Reserved.IsZero())
	assert.False(t, wallet.Frozen)
	assert.Equal(t, 0, wallet.Version)

	_, err = repo.CreateWallet(context.Background(), 1)
	assert.ErrorIs(t, err, repository.ErrWalletAlreadyExist)
}

func TestApplyDelta_CommitsWalletAndOutboxAtomically(t *testing.T) {
	pool, teardown := testutil.SetupTestDB(t)
	defer teardown()
	repo := repository.NewWalletPGRepository(pool, testLogger)

	wallet, _ := repo.CreateWallet(context.Background(), 10)
	event := newConversionEvent(t, 10, "250000")

	updated, err := repo.ApplyDelta(context.Background(), 10, decimal.RequireFromString("2.50"), wallet.Version, &event)
	assert.NoError(t, err)
	assert.True(t, updated.Balance.Equal(decimal.RequireFromString("2.50")))
	assert.Equal(t, wallet.Version+1, updated.Version)
	assert.True(t, updated.UpdatedAt.After(wallet.UpdatedAt) || updated.UpdatedAt.Equal(wallet.UpdatedAt))

	events, err := repo.EventsByAggregate(context.Background(), 10)
	assert.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, event.ID, events[0].ID)
	assert.Equal(t, models.EventStatusPending, events[0].Status)
	assert.Equal(t, models.EventTypeCurrencyConversion, events[0].Type)
	assert.Equal(t, models.ApplicantClicker, events[0].Applicant)

	payload, err := events[0].ConversionPayload()
	assert.NoError(t, err)
	assert.True(t, payload.Amount.Equal(decimal.RequireFromString("250000")))
}

func TestApplyDelta_InsufficientFundsLeavesNoTrace(t *testing.T) {
	pool, teardown := testutil.SetupTestDB(t)
	defer teardown()
	repo := repository.NewWalletPGRepository(pool, testLogger)

	wallet, _ := repo.CreateWallet(context.Background(), 11)
	event := newConversionEvent(t, 11, "100000")

	_, err := repo.ApplyDelta(context.Background(), 11, decimal.NewFromInt(-5), wallet.Version, &event)
	assert.ErrorIs(t, err, repository.ErrInsufficientFunds)

	// Neither the balance nor the outbox changed
	fresh, err := repo.GetWallet(context.Background(), 11)
	assert.NoError(t, err)
	assert.True(t, fresh.Balance.IsZero())
	assert.Equal(t, wallet.Version, fresh.Version)

	events, err := repo.EventsByAggregate(context.Background(), 11)
	assert.NoError(t, err)
	assert.Empty(t, events)
}

func TestApplyDelta_VersionConflict(t *testing.T) {
	pool, teardown := testutil.SetupTestDB(t)
	defer teardown()
	repo := repository.NewWalletPGRepository(pool, testLogger)

	wallet, _ := repo.CreateWallet(context.Background(), 12)

	_, err := repo.ApplyDelta(context.Background(), 12, decimal.NewFromInt(1), wallet.Version, nil)
	assert.NoError(t, err)

	// Same stale version again
	_, err = repo.ApplyDelta(context.Background(), 12, decimal.NewFromInt(1), wallet.Version, nil)
	assert.ErrorIs(t, err, repository.ErrVersionConflict)
}

func TestApplyDelta_FrozenWallet(t *testing.T) {
	pool, teardown := testutil.SetupTestDB(t)
	defer teardown()
	repo := repository.NewWalletPGRepository(pool, testLogger)

	_, _ = repo.CreateWallet(context.Background(), 13)
	assert.NoError(t, repo.SetFrozen(context.Background(), 13, true))

	wallet, err := repo.GetWallet(context.Background(), 13)
	assert.NoError(t, err)
	assert.True(t, wallet.Frozen)

	_, err = repo.ApplyDelta(context.Background(), 13, decimal.NewFromInt(1), wallet.Version, nil)
	assert.ErrorIs(t, err, repository.ErrWalletFrozen)

	assert.NoError(t, repo.SetFrozen(context.Background(), 13, false))
	wallet, _ = repo.GetWallet(context.Background(), 13)
	_, err = repo.ApplyDelta(context.Background(), 13, decimal.NewFromInt(1), wallet.Version, nil)
	assert.NoError(t, err)
}

func TestReserveAndRelease(t *testing.T) {
	pool, teardown := testutil.SetupTestDB(t)
	defer teardown()
	repo := repository.NewWalletPGRepository(pool, testLogger)

	wallet, _ := repo.CreateWallet(context.Background(), 14)
	wallet, err := repo.ApplyDelta(context.Background(), 14, decimal.NewFromInt(100), wallet.Version, nil)
	assert.NoError(t, err)

	wallet, err = repo.Reserve(context.Background(), 14, decimal.NewFromInt(40), wallet.Version)
	assert.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(60)))
	assert.True(t, wallet.Reserved.Equal(decimal.NewFromInt(40)))

	// Reserved funds are not spendable
	_, err = repo.ApplyDelta(context.Background(), 14, decimal.NewFromInt(-70), wallet.Version, nil)
	assert.ErrorIs(t, err, repository.ErrInsufficientFunds)

	_, err = repo.ReleaseReserved(context.Background(), 14, decimal.NewFromInt(50), wallet.Version)
	assert.ErrorIs(t, err, repository.ErrInsufficientReserve)

	wallet, err = repo.ReleaseReserved(context.Background(), 14, decimal.NewFromInt(40), wallet.Version)
	assert.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(100)))
	assert.True(t, wallet.Reserved.IsZero())
}

func TestConcurrentApplyDelta_OnlyOneWinsPerVersion(t *testing.T) {
	pool, teardown := testutil.SetupTestDB(t)
	defer teardown()
	repo := repository.NewWalletPGRepository(pool, testLogger)

	wallet, _ := repo.CreateWallet(context.Background(), 15)

	// Both writers read the same version; exactly one CAS may win.
	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.ApplyDelta(context.Background(), 15, decimal.NewFromInt(1), wallet.Version, nil)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var conflicts, successes int
	for err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, repository.ErrVersionConflict)
			conflicts++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	fresh, _ := repo.GetWallet(context.Background(), 15)
	assert.True(t, fresh.Balance.Equal(decimal.NewFromInt(1)))
}

func TestOutboxLifecycle(t *testing.T) {
	pool, teardown := testutil.SetupTestDB(t)
	defer teardown()
	repo := repository.NewWalletPGRepository(pool, testLogger)

	wallet, _ := repo.CreateWallet(context.Background(), 16)

	first := newConversionEvent(t, 16, "100000")
	first.CreatedAt = time.Now().UTC().Add(-2 * time.Minute)
	second := newConversionEvent(t, 16, "200000")
	second.CreatedAt = time.Now().UTC().Add(-1 * time.Minute)

	wallet, err := repo.ApplyDelta(context.Background(), 16, decimal.RequireFromString("1.00"), wallet.Version, &first)
	assert.NoError(t, err)
	_, err = repo.ApplyDelta(context.Background(), 16, decimal.RequireFromString("2.00"), wallet.Version, &second)
	assert.NoError(t, err)

	// Oldest first
	pending, err := repo.PendingEvents(context.Background(), 10)
	assert.NoError(t, err)
	assert.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, second.ID, pending[1].ID)

	count, oldestAge, err := repo.PendingStats(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Greater(t, oldestAge, time.Minute)

	assert.NoError(t, repo.MarkEventCompleted(context.Background(), first.ID))
	// Completing twice is a no-op
	assert.NoError(t, repo.MarkEventCompleted(context.Background(), first.ID))

	pending, err = repo.PendingEvents(context.Background(), 10)
	assert.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	events, _ := repo.EventsByAggregate(context.Background(), 16)
	assert.Equal(t, models.EventStatusCompleted, events[0].Status)
	assert.Equal(t, 1, events[0].Version)
}

func TestRecordDeliveryFailure_ParksEventAfterMaxAttempts(t *testing.T) {
	pool, teardown := testutil.SetupTestDB(t)
	defer teardown()
	repo := repository.NewWalletPGRepository(pool, testLogger)

	wallet, _ := repo.CreateWallet(context.Background(), 17)
	event := newConversionEvent(t, 17, "100000")
	_, err := repo.ApplyDelta(context.Background(), 17, decimal.RequireFromString("1.00"), wallet.Version, &event)
	assert.NoError(t, err)

	status, err := repo.RecordDeliveryFailure(context.Background(), event.ID, 2)
	assert.NoError(t, err)
	assert.Equal(t, models.EventStatusPending, status)

	status, err = repo.RecordDeliveryFailure(context.Background(), event.ID, 2)
	assert.NoError(t, err)
	assert.Equal(t, models.EventStatusFailed, status)

	// FAILED events leave the pending queue
	pending, err := repo.PendingEvents(context.Background(), 10)
	assert.NoError(t, err)
	assert.Empty(t, pending)
}
