package service

import (
	"context"
	"fmt"

	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/domain"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/ports"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReportingServiceImpl implements ports.ReportingService. Pure read side;
// it never takes row locks and never mutates wallets.
type ReportingServiceImpl struct {
	walletRepo ports.WalletRepository
	ledgerRepo ports.LedgerRepository
	log        zerolog.Logger
}

// NewReportingService creates a new ReportingServiceImpl.
func NewReportingService(walletRepo ports.WalletRepository, ledgerRepo ports.LedgerRepository, log zerolog.Logger) *ReportingServiceImpl {
	return &ReportingServiceImpl{
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
		log:        log,
	}
}

// GetWalletBalance returns the balance view for one currency. A wallet
// that has never been credited reads as all-zero.
func (s *ReportingServiceImpl) GetWalletBalance(ctx context.Context, sellerID uuid.UUID, currency domain.Currency) (*ports.WalletBalance, error) {
	if !currency.IsSupported() {
		return nil, apperror.ErrUnsupportedCurrency(string(currency))
	}

	wallet, err := s.walletRepo.GetBySellerID(ctx, sellerID, currency)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return &ports.WalletBalance{Currency: currency}, nil
	}
	return &ports.WalletBalance{
		Currency:  wallet.Currency,
		Balance:   wallet.Balance,
		Held:      wallet.Held,
		Available: wallet.Available(),
	}, nil
}

// ListWallets returns every currency wallet the seller has.
func (s *ReportingServiceImpl) ListWallets(ctx context.Context, sellerID uuid.UUID) ([]domain.Wallet, error) {
	wallets, err := s.walletRepo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list wallets: %w", err))
	}
	return wallets, nil
}

// ListLedger returns the seller's money-movement history.
func (s *ReportingServiceImpl) ListLedger(ctx context.Context, params ports.LedgerListParams) ([]domain.LedgerEntry, int64, error) {
	entries, total, err := s.ledgerRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list ledger: %w", err))
	}
	return entries, total, nil
}

// Reconcile compares the wallet row against the ledger sums for one
// currency. Drift is wallet minus ledger; nonzero drift means the two
// views have diverged and needs investigation.
func (s *ReportingServiceImpl) Reconcile(ctx context.Context, sellerID uuid.UUID, currency domain.Currency) (*ports.ReconciliationReport, error) {
	if !currency.IsSupported() {
		return nil, apperror.ErrUnsupportedCurrency(string(currency))
	}

	var walletBalance int64
	wallet, err := s.walletRepo.GetBySellerID(ctx, sellerID, currency)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet != nil {
		walletBalance = wallet.Balance
	}

	credits, debits, err := s.ledgerRepo.SumByDirection(ctx, sellerID, currency)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("sum ledger: %w", err))
	}

	ledgerBalance := credits - debits
	report := &ports.ReconciliationReport{
		SellerID:      sellerID,
		Currency:      currency,
		WalletBalance: walletBalance,
		LedgerBalance: ledgerBalance,
		Credits:       credits,
		Debits:        debits,
		Drift:         walletBalance - ledgerBalance,
	}

	if report.Drift != 0 {
		s.log.Warn().
			Str("seller_id", sellerID.String()).
			Str("currency", string(currency)).
			Int64("drift", report.Drift).
			Msg("wallet and ledger have diverged")
	}

	return report, nil
}
