package ports

import (
	"context"
	"time"

	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/domain"

	"github.com/google/uuid"
)

// --- Service Ports (Business Logic) ---

// SettlementService converts completed sales into wallet credits.
type SettlementService interface {
	// Settle credits the seller wallet for a completed sale. Calling it
	// again for the same transaction is a no-op (AlreadySettled = true).
	Settle(ctx context.Context, sale *domain.SaleTransaction) (*SettlementResult, error)
}

// SettlementResult reports the outcome of a settlement call.
type SettlementResult struct {
	Entry          *domain.LedgerEntry
	AlreadySettled bool
}

// WithdrawalService owns the withdrawal request state machine.
type WithdrawalService interface {
	Submit(ctx context.Context, req SubmitWithdrawalRequest) (*domain.WithdrawalRequest, error)
	Decide(ctx context.Context, req DecideWithdrawalRequest) (*domain.WithdrawalRequest, error)
	Cancel(ctx context.Context, withdrawalID, sellerID uuid.UUID) (*domain.WithdrawalRequest, error)
	List(ctx context.Context, params WithdrawalListParams) ([]domain.WithdrawalRequest, int64, error)
}

// SubmitWithdrawalRequest holds validated input for a withdrawal submission.
type SubmitWithdrawalRequest struct {
	SellerID        uuid.UUID
	Currency        domain.Currency
	RequestedAmount int64
}

// WithdrawalOutcome is an operator's verdict on a pending request.
type WithdrawalOutcome string

const (
	OutcomeApproved WithdrawalOutcome = "approved"
	OutcomeRejected WithdrawalOutcome = "rejected"
)

// DecideWithdrawalRequest holds validated input for an operator decision.
type DecideWithdrawalRequest struct {
	WithdrawalID    uuid.UUID
	Outcome         WithdrawalOutcome
	RejectionReason *string
}

// PolicyService resolves the fee policy for a seller. Resolvable without
// knowledge of any specific withdrawal.
type PolicyService interface {
	GetPolicy(ctx context.Context, sellerID uuid.UUID) (domain.FeePolicy, error)
}

// ReportingService is the read side: balances, ledger history and
// reconciliation. It never mutates wallets.
type ReportingService interface {
	GetWalletBalance(ctx context.Context, sellerID uuid.UUID, currency domain.Currency) (*WalletBalance, error)
	ListWallets(ctx context.Context, sellerID uuid.UUID) ([]domain.Wallet, error)
	ListLedger(ctx context.Context, params LedgerListParams) ([]domain.LedgerEntry, int64, error)
	Reconcile(ctx context.Context, sellerID uuid.UUID, currency domain.Currency) (*ReconciliationReport, error)
}

// WalletBalance is the balance view returned to the UI. A missing wallet
// reads as all-zero, not as an error.
type WalletBalance struct {
	Currency  domain.Currency `json:"currency"`
	Balance   int64           `json:"balance"`
	Held      int64           `json:"held"`
	Available int64           `json:"available"`
}

// ReconciliationReport compares the wallet row against the ledger sums.
type ReconciliationReport struct {
	SellerID      uuid.UUID       `json:"seller_id"`
	Currency      domain.Currency `json:"currency"`
	WalletBalance int64           `json:"wallet_balance"`
	LedgerBalance int64           `json:"ledger_balance"`
	Credits       int64           `json:"credits"`
	Debits        int64           `json:"debits"`
	Drift         int64           `json:"drift"` // wallet - ledger; zero when consistent
}

// Notifier enqueues notification events for the delivery system.
// Delivery and read-tracking are external collaborators.
type Notifier interface {
	Publish(ctx context.Context, event domain.NotificationEvent) error
}

// SettlementCache is the Redis-layer settled-transaction check (fast path
// in front of the ledger's unique constraint).
type SettlementCache interface {
	IsSettled(ctx context.Context, transactionID uuid.UUID) (bool, error)
	MarkSettled(ctx context.Context, transactionID uuid.UUID, ttl time.Duration) error
}

// TokenService validates JWTs issued by the platform auth service.
type TokenService interface {
	Validate(tokenString string) (*TokenClaims, error)
}

// Role is the caller's privilege level carried in the JWT.
type Role string

const (
	RoleSeller   Role = "seller"
	RoleOperator Role = "operator"
)

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	SellerID uuid.UUID
	Role     Role
}
