package service

import (
	"context"
	"fmt"
	"time"

	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/domain"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/ports"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const settledTTL = 24 * time.Hour

// SettlementServiceImpl implements ports.SettlementService.
type SettlementServiceImpl struct {
	walletRepo ports.WalletRepository
	ledgerRepo ports.LedgerRepository
	settled    ports.SettlementCache
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewSettlementService creates a new SettlementServiceImpl.
func NewSettlementService(
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	settled ports.SettlementCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *SettlementServiceImpl {
	return &SettlementServiceImpl{
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
		settled:    settled,
		transactor: transactor,
		log:        log,
	}
}

// Settle credits the seller wallet for a completed sale, exactly once.
// Re-settling the same transaction is a no-op reported via AlreadySettled.
func (s *SettlementServiceImpl) Settle(ctx context.Context, sale *domain.SaleTransaction) (*ports.SettlementResult, error) {
	if !sale.Currency.IsSupported() {
		return nil, apperror.ErrUnsupportedCurrency(string(sale.Currency))
	}
	if !sale.IsSettleable() {
		return nil, apperror.ErrNotSettleable()
	}

	// Layer 1: Redis settled check
	cached, err := s.settled.IsSettled(ctx, sale.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("sale_id", sale.ID.String()).Msg("redis settled check failed, falling through to DB")
	}
	if cached {
		return &ports.SettlementResult{AlreadySettled: true}, nil
	}

	// Layer 2: DB settled check
	exists, err := s.ledgerRepo.ExistsBySource(ctx, domain.LedgerSourceSale, sale.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("db settled check: %w", err))
	}
	if exists {
		return &ports.SettlementResult{AlreadySettled: true}, nil
	}

	// Begin database transaction
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock & get wallet; materialize it on first credit
	wallet, err := s.walletRepo.GetBySellerIDForUpdate(ctx, dbTx, sale.SellerID, sale.Currency)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		now := time.Now().UTC()
		wallet = &domain.Wallet{
			ID:        uuid.New(),
			SellerID:  sale.SellerID,
			Currency:  sale.Currency,
			Balance:   0,
			Held:      0,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.walletRepo.CreateInTx(ctx, dbTx, wallet); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
		}
	}

	now := time.Now().UTC()
	entry := &domain.LedgerEntry{
		ID:        uuid.New(),
		SellerID:  sale.SellerID,
		Currency:  sale.Currency,
		Amount:    sale.Amount,
		Direction: domain.LedgerDirectionCredit,
		Source:    domain.LedgerSourceSale,
		SourceID:  sale.ID,
		CreatedAt: now,
	}

	// Persist: append ledger entry. The (source, source_id) unique
	// constraint is the idempotency backstop for concurrent settles.
	inserted, err := s.ledgerRepo.Append(ctx, dbTx, entry)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append ledger entry: %w", err))
	}
	if !inserted {
		// Another request settled this sale between our check and now.
		return &ports.SettlementResult{AlreadySettled: true}, nil
	}

	// Persist: credit wallet balance
	if err := s.walletRepo.UpdateBalances(ctx, dbTx, wallet.ID, wallet.Balance+sale.Amount, wallet.Held); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("credit wallet: %w", err))
	}

	// Commit
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	// Post-process: mark settled in Redis (best-effort)
	if err := s.settled.MarkSettled(ctx, sale.ID, settledTTL); err != nil {
		s.log.Warn().Err(err).Str("sale_id", sale.ID.String()).Msg("failed to mark settled in redis")
	}

	s.log.Info().
		Str("sale_id", sale.ID.String()).
		Str("seller_id", sale.SellerID.String()).
		Str("currency", string(sale.Currency)).
		Int64("amount", sale.Amount).
		Msg("sale settled")

	return &ports.SettlementResult{Entry: entry}, nil
}
