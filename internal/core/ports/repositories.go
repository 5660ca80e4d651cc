package ports

import (
	"context"

	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepository defines persistence operations for currency wallets.
// Methods accepting pgx.Tx run inside transaction blocks where the wallet
// row is pessimistically locked; balance arithmetic lives in the services,
// the repository only persists the result.
type WalletRepository interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
	GetBySellerID(ctx context.Context, sellerID uuid.UUID, currency domain.Currency) (*domain.Wallet, error)
	GetBySellerIDForUpdate(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID, currency domain.Currency) (*domain.Wallet, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]domain.Wallet, error)
	UpdateBalances(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance, held int64) error
}

// WithdrawalRepository defines persistence for withdrawal requests.
type WithdrawalRepository interface {
	Create(ctx context.Context, tx pgx.Tx, w *domain.WithdrawalRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WithdrawalRequest, error)
	// GetByIDForUpdate locks the request row so concurrent decisions on the
	// same request serialize. MUST be called within a transaction.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.WithdrawalRequest, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.WithdrawalStatus, rejectionReason *string) error
	List(ctx context.Context, params WithdrawalListParams) ([]domain.WithdrawalRequest, int64, error)
}

// WithdrawalListParams holds filter + pagination for listing withdrawals.
type WithdrawalListParams struct {
	SellerID *uuid.UUID // nil = all sellers (operator view)
	Status   *domain.WithdrawalStatus
	Currency *domain.Currency
	Page     int
	PageSize int
}

// LedgerRepository defines persistence for the append-only ledger.
type LedgerRepository interface {
	// Append inserts an entry. Returns false without error when an entry
	// with the same (source, source_id) already exists, the idempotency
	// backstop for settlement.
	Append(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) (bool, error)
	ExistsBySource(ctx context.Context, source domain.LedgerSource, sourceID uuid.UUID) (bool, error)
	List(ctx context.Context, params LedgerListParams) ([]domain.LedgerEntry, int64, error)
	// SumByDirection returns total credits and debits for one wallet,
	// used by reconciliation.
	SumByDirection(ctx context.Context, sellerID uuid.UUID, currency domain.Currency) (credits int64, debits int64, err error)
}

// LedgerListParams holds filter + pagination for the ledger history view.
type LedgerListParams struct {
	SellerID  uuid.UUID
	Currency  *domain.Currency
	Direction *domain.LedgerDirection
	From      *int64 // Unix timestamp
	To        *int64 // Unix timestamp
	Page      int
	PageSize  int
}

// PolicyRepository looks up per-seller fee plans. Returns nil when the
// seller has no dedicated plan row (the universal default applies).
type PolicyRepository interface {
	GetBySellerID(ctx context.Context, sellerID uuid.UUID) (*domain.FeePolicy, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
