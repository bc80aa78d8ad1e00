package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"vcasino_wallet/internal/models"
)

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrWalletAlreadyExist  = errors.New("wallet already exists")
	ErrWalletFrozen        = errors.New("wallet is frozen")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInsufficientReserve = errors.New("reserved balance is smaller than the requested amount")
	ErrVersionConflict     = errors.New("wallet version conflict")
)

type WalletPGRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewWalletPGRepository(pool *pgxpool.Pool, logger *slog.Logger) *WalletPGRepository {
	return &WalletPGRepository{
		pool:   pool,
		logger: logger,
	}
}

func (r *WalletPGRepository) CreateWallet(ctx context.Context, walletID int64) (models.Wallet, error) {
	var w models.Wallet
	err := r.pool.QueryRow(ctx, `
        INSERT INTO wallet (id) VALUES ($1)
        ON CONFLICT (id) DO NOTHING
        RETURNING id, balance, reserved, updated_at, frozen, version`, walletID).
		Scan(&w.ID, &w.Balance, &w.Reserved, &w.UpdatedAt, &w.Frozen, &w.Version)
	if err == pgx.ErrNoRows {
		return models.Wallet{}, ErrWalletAlreadyExist
	}
	if err != nil {
		r.logger.Error("Failed to create wallet",
			slog.Int64("wallet_id", walletID),
			slog.Any("err", err),
		)
		return models.Wallet{}, err
	}
	return w, nil
}

func (r *WalletPGRepository) GetWallet(ctx context.Context, walletID int64) (models.Wallet, error) {
	var w models.Wallet
	err := r.pool.QueryRow(ctx,
		"SELECT id, balance, reserved, updated_at, frozen, version FROM wallet WHERE id = $1", walletID).
		Scan(&w.ID, &w.Balance, &w.Reserved, &w.UpdatedAt, &w.Frozen, &w.Version)
	if err == pgx.ErrNoRows {
		return models.Wallet{}, ErrWalletNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get wallet",
			slog.Int64("wallet_id", walletID),
			slog.Any("err", err),
		)
		return models.Wallet{}, err
	}
	return w, nil
}

// ApplyDelta adds delta to the wallet balance and, when event is non-nil,
// appends the outbox record in the same transaction. The update is a
// compare-and-swap on the version column: a concurrent writer makes this
// return ErrVersionConflict and the caller must re-read and retry. Nothing is
// committed on any error path.
func (r *WalletPGRepository) ApplyDelta(
	ctx context.Context,
	walletID int64,
	delta decimal.Decimal,
	expectedVersion int,
	event *models.OutboxEvent,
) (models.Wallet, error) {
	return r.mutate(ctx, walletID, expectedVersion, event, func(w models.Wallet) (models.Wallet, error) {
		w.Balance = w.Balance.Add(delta)
		if w.Balance.IsNegative() {
			return w, ErrInsufficientFunds
		}
		return w, nil
	})
}

// Reserve moves amount from the spendable balance into the reserved
// sub-balance.
func (r *WalletPGRepository) Reserve(
	ctx context.Context,
	walletID int64,
	amount decimal.Decimal,
	expectedVersion int,
) (models.Wallet, error) {
	return r.mutate(ctx, walletID, expectedVersion, nil, func(w models.Wallet) (models.Wallet, error) {
		w.Balance = w.Balance.Sub(amount)
		if w.Balance.IsNegative() {
			return w, ErrInsufficientFunds
		}
		w.Reserved = w.Reserved.Add(amount)
		return w, nil
	})
}

// ReleaseReserved moves amount back from the reserved sub-balance into the
// spendable balance.
func (r *WalletPGRepository) ReleaseReserved(
	ctx context.Context,
	walletID int64,
	amount decimal.Decimal,
	expectedVersion int,
) (models.Wallet, error) {
	return r.mutate(ctx, walletID, expectedVersion, nil, func(w models.Wallet) (models.Wallet, error) {
		w.Reserved = w.Reserved.Sub(amount)
		if w.Reserved.IsNegative() {
			return w, ErrInsufficientReserve
		}
		w.Balance = w.Balance.Add(amount)
		return w, nil
	})
}

func (r *WalletPGRepository) SetFrozen(ctx context.Context, walletID int64, frozen bool) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE wallet SET frozen = $1, updated_at = now(), version = version + 1 WHERE id = $2",
		frozen, walletID)
	if err != nil {
		r.logger.Error("Failed to set frozen flag",
			slog.Int64("wallet_id", walletID),
			slog.Any("err", err),
		)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWalletNotFound
	}
	return nil
}

// mutate runs apply over the current row state and writes the result back
// with a version CAS. Frozen wallets reject every mutation.
func (r *WalletPGRepository) mutate(
	ctx context.Context,
	walletID int64,
	expectedVersion int,
	event *models.OutboxEvent,
	apply func(models.Wallet) (models.Wallet, error),
) (models.Wallet, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		r.logger.Error("Failed to begin transaction",
			slog.Int64("wallet_id", walletID),
			slog.Any("err", err),
		)
		return models.Wallet{}, err
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			r.logger.Error("Failed to rollback transaction",
				slog.Int64("wallet_id", walletID),
				slog.Any("err", err),
			)
		}
	}()

	var w models.Wallet
	err = tx.QueryRow(ctx,
		"SELECT id, balance, reserved, updated_at, frozen, version FROM wallet WHERE id = $1", walletID).
		Scan(&w.ID, &w.Balance, &w.Reserved, &w.UpdatedAt, &w.Frozen, &w.Version)
	if err == pgx.ErrNoRows {
		return models.Wallet{}, ErrWalletNotFound
	}
	if err != nil {
		r.logger.Error("Failed to select wallet",
			slog.Int64("wallet_id", walletID),
			slog.Any("err", err),
		)
		return models.Wallet{}, err
	}

	if w.Frozen {
		return w, ErrWalletFrozen
	}
	if w.Version != expectedVersion {
		return w, ErrVersionConflict
	}

	updated, err := apply(w)
	if err != nil {
		return w, err
	}

	err = tx.QueryRow(ctx, `
        UPDATE wallet SET balance = $1, reserved = $2, updated_at = now(), version = version + 1
        WHERE id = $3 AND version = $4
        RETURNING updated_at`,
		updated.Balance, updated.Reserved, walletID, expectedVersion).
		Scan(&updated.UpdatedAt)
	if err == pgx.ErrNoRows {
		// Row changed between the read and the CAS write.
		return w, ErrVersionConflict
	}
	if err != nil {
		r.logger.Error("Failed to update wallet",
			slog.Int64("wallet_id", walletID),
			slog.Any("err", err),
		)
		return w, err
	}

	if event != nil {
		if err := insertOutboxEvent(ctx, tx, *event); err != nil {
			r.logger.Error("Failed to append outbox event",
				slog.Int64("wallet_id", walletID),
				slog.String("event_id", event.ID.String()),
				slog.Any("err", err),
			)
			return w, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("Failed to commit transaction",
			slog.Int64("wallet_id", walletID),
			slog.Any("err", err),
		)
		return w, err
	}

	updated.Version = w.Version + 1
	return updated, nil
}
