package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// CreateInTx inserts a new wallet row inside an existing transaction.
// Wallets materialize lazily on first credit, which always happens under
// a settlement transaction.
func (r *WalletRepo) CreateInTx(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	query := `INSERT INTO wallets (id, seller_id, currency, balance, held, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		w.ID, w.SellerID, w.Currency, w.Balance, w.Held, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetBySellerID fetches a wallet by seller ID and currency (non-locking read).
// Returns nil, nil when the wallet has not been materialized yet.
func (r *WalletRepo) GetBySellerID(ctx context.Context, sellerID uuid.UUID, currency domain.Currency) (*domain.Wallet, error) {
	query := `SELECT id, seller_id, currency, balance, held, created_at, updated_at
		FROM wallets WHERE seller_id = $1 AND currency = $2`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, sellerID, currency).Scan(
		&w.ID, &w.SellerID, &w.Currency, &w.Balance, &w.Held, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by seller id: %w", err)
	}
	return w, nil
}

// GetBySellerIDForUpdate fetches a wallet with pessimistic locking.
// This MUST be called within a transaction; concurrent debits on the same
// wallet serialize on this row lock.
func (r *WalletRepo) GetBySellerIDForUpdate(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID, currency domain.Currency) (*domain.Wallet, error) {
	query := `SELECT id, seller_id, currency, balance, held, created_at, updated_at
		FROM wallets WHERE seller_id = $1 AND currency = $2 FOR UPDATE`

	w := &domain.Wallet{}
	err := tx.QueryRow(ctx, query, sellerID, currency).Scan(
		&w.ID, &w.SellerID, &w.Currency, &w.Balance, &w.Held, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet for update: %w", err)
	}
	return w, nil
}

// ListBySeller returns every currency wallet the seller has materialized.
func (r *WalletRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]domain.Wallet, error) {
	query := `SELECT id, seller_id, currency, balance, held, created_at, updated_at
		FROM wallets WHERE seller_id = $1 ORDER BY currency`

	rows, err := r.pool.Query(ctx, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		var w domain.Wallet
		if err := rows.Scan(&w.ID, &w.SellerID, &w.Currency, &w.Balance, &w.Held, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallets: %w", err)
	}
	return wallets, nil
}

// UpdateBalances persists new balance and held amounts within a transaction.
// The database enforces balance >= 0 and held between 0 and balance as a
// final backstop behind the service-level checks.
func (r *WalletRepo) UpdateBalances(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance, held int64) error {
	query := `UPDATE wallets SET balance = $1, held = $2, updated_at = NOW() WHERE id = $3`

	tag, err := tx.Exec(ctx, query, balance, held, walletID)
	if err != nil {
		return fmt.Errorf("update wallet balances: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", walletID)
	}
	return nil
}
