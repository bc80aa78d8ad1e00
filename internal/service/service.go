package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"vcasino_wallet/internal/conversion"
	"vcasino_wallet/internal/models"
	"vcasino_wallet/internal/repository"
)

//go:generate mockgen -source=service.go -destination=../../test/mock_wallet_repository.go -package=test WalletRepository,ClickerClient

type WalletRepository interface {
	CreateWallet(ctx context.Context, walletID int64) (models.Wallet, error)
	GetWallet(ctx context.Context, walletID int64) (models.Wallet, error)
	ApplyDelta(ctx context.Context, walletID int64, delta decimal.Decimal, expectedVersion int, event *models.OutboxEvent) (models.Wallet, error)
	Reserve(ctx context.Context, walletID int64, amount decimal.Decimal, expectedVersion int) (models.Wallet, error)
	ReleaseReserved(ctx context.Context, walletID int64, amount decimal.Decimal, expectedVersion int) (models.Wallet, error)
	SetFrozen(ctx context.Context, walletID int64, frozen bool) error
	MarkEventCompleted(ctx context.Context, eventID uuid.UUID) error
	HasOlderPending(ctx context.Context, aggregateID int64, before time.Time) (bool, error)
}

type ClickerClient interface {
	GetAccount(ctx context.Context, accountID int64) (models.Account, error)
	DeductCoins(ctx context.Context, accountID int64, amount decimal.Decimal, ref string) (models.Account, error)
	RefundCoins(ctx context.Context, accountID int64, amount decimal.Decimal, ref string) (models.Account, error)
	ApplyConversion(ctx context.Context, event models.OutboxEvent) (models.Account, error)
}

// WalletService is the conversion orchestrator. A conversion validates
// against policy, moves the VCoin side through the clicker service, then
// commits the wallet delta and the outbox event in one transaction. The
// synchronous response reflects local state immediately; cross-service
// consistency arrives via outbox delivery.
type WalletService struct {
	repo       WalletRepository
	clicker    ClickerClient
	policy     *conversion.Policy
	logger     *slog.Logger
	maxRetries int
}

func NewWalletService(repo WalletRepository, clicker ClickerClient, policy *conversion.Policy, logger *slog.Logger) *WalletService {
	return &WalletService{
		repo:       repo,
		clicker:    clicker,
		policy:     policy,
		logger:     logger,
		maxRetries: 3,
	}
}

func (s *WalletService) CreateWallet(ctx context.Context, walletID int64) (models.Wallet, error) {
	wallet, err := s.repo.CreateWallet(ctx, walletID)
	if err != nil {
		if errors.Is(err, repository.ErrWalletAlreadyExist) {
			return wallet, err
		}
		s.logger.Error("CreateWallet failed",
			slog.Int64("wallet_id", walletID),
			slog.Any("err", err),
		)
		return wallet, err
	}
	s.logger.Info("Wallet created", slog.Int64("wallet_id", walletID))
	return wallet, nil
}

func (s *WalletService) GetWallet(ctx context.Context, walletID int64) (models.Wallet, error) {
	wallet, err := s.repo.GetWallet(ctx, walletID)
	if err != nil && !errors.Is(err, repository.ErrWalletNotFound) {
		s.logger.Error("GetWallet failed",
			slog.Int64("wallet_id", walletID),
			slog.Any("err", err),
		)
	}
	return wallet, err
}

// ConvertVcoinsToVdollars converts VCoins from the clicker account into the
// wallet's VDollar balance. The clicker side loses the rounded amount; the
// sub-thousand remainder never leaves the account.
func (s *WalletService) ConvertVcoinsToVdollars(ctx context.Context, walletID int64, amount decimal.Decimal) (models.VcoinsToVdollarsResponse, error) {
	wallet, err := s.repo.GetWallet(ctx, walletID)
	if err != nil {
		return models.VcoinsToVdollarsResponse{}, err
	}
	if wallet.Frozen {
		return models.VcoinsToVdollarsResponse{}, repository.ErrWalletFrozen
	}

	account, err := s.clicker.GetAccount(ctx, walletID)
	if err != nil {
		s.logger.Error("Failed to read clicker account",
			slog.Int64("wallet_id", walletID),
			slog.Any("err", err),
		)
		return models.VcoinsToVdollarsResponse{}, err
	}

	quote, err := s.policy.VcoinsToVdollars(amount, account.BalanceCoins)
	if err != nil {
		return models.VcoinsToVdollarsResponse{}, err
	}

	event, err := models.NewCurrencyConversionEvent(walletID, models.CurrencyConversionPayload{
		From:   models.CurrencyVCoin,
		To:     models.CurrencyVDollar,
		Amount: quote.Rounded,
	})
	if err != nil {
		return models.VcoinsToVdollarsResponse{}, err
	}

	// External debit first: only the rounded amount leaves the account,
	// keyed by the event id so a retried request cannot double-deduct.
	account, err = s.clicker.DeductCoins(ctx, walletID, quote.Rounded, event.ID.String())
	if err != nil {
		s.logger.Error("Failed to deduct coins from clicker account",
			slog.Int64("wallet_id", walletID),
			slog.Any("amount", quote.Rounded),
			slog.Any("err", err),
		)
		return models.VcoinsToVdollarsResponse{}, err
	}

	wallet, err = s.applyWithRetry(ctx, walletID, quote.Credited, &event)
	if err != nil {
		// The account was already debited with nothing committed locally.
		// Put the coins back under the same ref before surfacing the error.
		if _, refundErr := s.clicker.RefundCoins(ctx, walletID, quote.Rounded, event.ID.String()); refundErr != nil {
			s.logger.Error("Failed to refund clicker debit after commit failure",
				slog.Int64("wallet_id", walletID),
				slog.Any("amount", quote.Rounded),
				slog.String("event_id", event.ID.String()),
				slog.Any("err", refundErr),
			)
		}
		return models.VcoinsToVdollarsResponse{}, err
	}

	s.logger.Info("Converted VCoins to VDollars",
		slog.Int64("wallet_id", walletID),
		slog.Any("vcoins", quote.Rounded),
		slog.Any("vdollars", quote.Credited),
	)

	account = s.deliverNow(ctx, event, account)
	return models.VcoinsToVdollarsResponse{
		Account:       account,
		WalletBalance: wallet.Balance,
	}, nil
}

// ConvertVdollarsToVcoins debits the wallet and credits the clicker account
// at the payout rate. The wallet debit is the local transaction; the VCoin
// credit travels through the outbox.
func (s *WalletService) ConvertVdollarsToVcoins(ctx context.Context, walletID int64, amount decimal.Decimal) (models.VdollarsToVcoinsResponse, error) {
	wallet, err := s.repo.GetWallet(ctx, walletID)
	if err != nil {
		return models.VdollarsToVcoinsResponse{}, err
	}
	if wallet.Frozen {
		return models.VdollarsToVcoinsResponse{}, repository.ErrWalletFrozen
	}

	if _, err := s.policy.VdollarsToVcoins(amount, wallet.Balance); err != nil {
		return models.VdollarsToVcoinsResponse{}, err
	}

	event, err := models.NewCurrencyConversionEvent(walletID, models.CurrencyConversionPayload{
		From:   models.CurrencyVDollar,
		To:     models.CurrencyVCoin,
		Amount: amount,
	})
	if err != nil {
		return models.VdollarsToVcoinsResponse{}, err
	}

	wallet, err = s.applyWithRetry(ctx, walletID, amount.Neg(), &event)
	if err != nil {
		return models.VdollarsToVcoinsResponse{}, err
	}

	s.logger.Info("Converted VDollars to VCoins",
		slog.Int64("wallet_id", walletID),
		slog.Any("vdollars", amount),
	)

	account := s.deliverNow(ctx, event, models.Account{})
	return models.VdollarsToVcoinsResponse{
		Account:              account,
		UpdatedWalletBalance: wallet.Balance,
	}, nil
}

func (s *WalletService) ReserveBalance(ctx context.Context, walletID int64, amount decimal.Decimal) (models.Wallet, error) {
	if amount.Sign() <= 0 {
		return models.Wallet{}, conversion.ErrInvalidAmount
	}
	return s.retryMutation(ctx, walletID, func(version int) (models.Wallet, error) {
		return s.repo.Reserve(ctx, walletID, amount, version)
	})
}

func (s *WalletService) ReleaseReserved(ctx context.Context, walletID int64, amount decimal.Decimal) (models.Wallet, error) {
	if amount.Sign() <= 0 {
		return models.Wallet{}, conversion.ErrInvalidAmount
	}
	return s.retryMutation(ctx, walletID, func(version int) (models.Wallet, error) {
		return s.repo.ReleaseReserved(ctx, walletID, amount, version)
	})
}

func (s *WalletService) FreezeWallet(ctx context.Context, walletID int64, frozen bool) error {
	if err := s.repo.SetFrozen(ctx, walletID, frozen); err != nil {
		return err
	}
	s.logger.Info("Wallet frozen flag changed",
		slog.Int64("wallet_id", walletID),
		slog.Bool("frozen", frozen),
	)
	return nil
}

// applyWithRetry commits the delta and the outbox event, re-reading the
// wallet after every version conflict. The policy has already been checked;
// the repository re-validates funds and frozen state against the fresh row.
func (s *WalletService) applyWithRetry(ctx context.Context, walletID int64, delta decimal.Decimal, event *models.OutboxEvent) (models.Wallet, error) {
	return s.retryMutation(ctx, walletID, func(version int) (models.Wallet, error) {
		return s.repo.ApplyDelta(ctx, walletID, delta, version, event)
	})
}

func (s *WalletService) retryMutation(ctx context.Context, walletID int64, op func(expectedVersion int) (models.Wallet, error)) (models.Wallet, error) {
	var lastErr error
	for i := 0; i < s.maxRetries; i++ {
		wallet, err := s.repo.GetWallet(ctx, walletID)
		if err != nil {
			return wallet, err
		}
		wallet, err = op(wallet.Version)
		if err == nil {
			return wallet, nil
		}
		if errors.Is(err, repository.ErrVersionConflict) || isRetryableError(err) {
			s.logger.Warn("Retrying wallet mutation",
				slog.Int64("wallet_id", walletID),
				slog.Int("attempt", i+1),
				slog.Any("err", err),
			)
			time.Sleep(time.Duration(1<<i) * 10 * time.Millisecond)
			lastErr = err
			continue
		}
		return wallet, err
	}
	s.logger.Error("Wallet mutation failed after retries",
		slog.Int64("wallet_id", walletID),
		slog.Any("err", lastErr),
	)
	return models.Wallet{}, lastErr
}

// deliverNow makes the first delivery attempt inline so the caller sees a
// settled clicker account in the response. Failure is not an error: the
// event stays PENDING and the background dispatcher retries it.
func (s *WalletService) deliverNow(ctx context.Context, event models.OutboxEvent, fallback models.Account) models.Account {
	// An older undelivered event means this wallet's queue is backed up.
	// Delivering the new event inline would reorder it past the queue head,
	// so leave both to the dispatcher.
	older, err := s.repo.HasOlderPending(ctx, event.AggregateID, event.CreatedAt)
	if err != nil || older {
		return s.accountOrFallback(ctx, event.AggregateID, fallback)
	}

	account, err := s.clicker.ApplyConversion(ctx, event)
	if err != nil {
		s.logger.Warn("Inline outbox delivery failed, leaving event pending",
			slog.String("event_id", event.ID.String()),
			slog.Int64("wallet_id", event.AggregateID),
			slog.Any("err", err),
		)
		return s.accountOrFallback(ctx, event.AggregateID, fallback)
	}
	if err := s.repo.MarkEventCompleted(ctx, event.ID); err != nil {
		// Dispatcher redelivers; the clicker side deduplicates.
		return account
	}
	return account
}

func (s *WalletService) accountOrFallback(ctx context.Context, accountID int64, fallback models.Account) models.Account {
	account, err := s.clicker.GetAccount(ctx, accountID)
	if err != nil {
		return fallback
	}
	return account
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
