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

// WithdrawalServiceImpl implements ports.WithdrawalService.
type WithdrawalServiceImpl struct {
	withdrawalRepo ports.WithdrawalRepository
	walletRepo     ports.WalletRepository
	ledgerRepo     ports.LedgerRepository
	policySvc      ports.PolicyService
	notifier       ports.Notifier
	transactor     ports.DBTransactor
	log            zerolog.Logger
}

// NewWithdrawalService creates a new WithdrawalServiceImpl.
func NewWithdrawalService(
	withdrawalRepo ports.WithdrawalRepository,
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	policySvc ports.PolicyService,
	notifier ports.Notifier,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WithdrawalServiceImpl {
	return &WithdrawalServiceImpl{
		withdrawalRepo: withdrawalRepo,
		walletRepo:     walletRepo,
		ledgerRepo:     ledgerRepo,
		policySvc:      policySvc,
		notifier:       notifier,
		transactor:     transactor,
		log:            log,
	}
}

// Submit creates a PENDING withdrawal request and places a hold on the
// wallet for the requested amount. The admission check and the hold
// happen under the same row lock, so two concurrent submissions against
// the same balance cannot both pass.
func (s *WithdrawalServiceImpl) Submit(ctx context.Context, req ports.SubmitWithdrawalRequest) (*domain.WithdrawalRequest, error) {
	if req.RequestedAmount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if !req.Currency.IsSupported() {
		return nil, apperror.ErrUnsupportedCurrency(string(req.Currency))
	}

	policy, err := s.policySvc.GetPolicy(ctx, req.SellerID)
	if err != nil {
		return nil, err
	}
	if req.RequestedAmount < policy.MinimumWithdrawal {
		return nil, apperror.ErrBelowMinimum(req.RequestedAmount, policy.MinimumWithdrawal)
	}

	fee := domain.WithdrawalFee(req.RequestedAmount, policy.FeePercent)
	totalRequired := req.RequestedAmount + fee

	// Begin database transaction
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock & get wallet
	wallet, err := s.walletRepo.GetBySellerIDForUpdate(ctx, dbTx, req.SellerID, req.Currency)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		// No wallet means no credits yet; available is zero.
		return nil, apperror.ErrInsufficientBalance(0, totalRequired)
	}

	// Business rule: requested amount plus fee must fit in the
	// spendable balance.
	if wallet.Available() < totalRequired {
		return nil, apperror.ErrInsufficientBalance(wallet.Available(), totalRequired)
	}

	now := time.Now().UTC()
	w := &domain.WithdrawalRequest{
		ID:              uuid.New(),
		SellerID:        req.SellerID,
		Currency:        req.Currency,
		RequestedAmount: req.RequestedAmount,
		FeeAmount:       fee,
		Status:          domain.WithdrawalStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// Persist: create the pending request
	if err := s.withdrawalRepo.Create(ctx, dbTx, w); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create withdrawal: %w", err))
	}

	// Persist: hold the requested amount on the wallet
	if err := s.walletRepo.UpdateBalances(ctx, dbTx, wallet.ID, wallet.Balance, wallet.Held+w.RequestedAmount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hold funds: %w", err))
	}

	// Commit
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("withdrawal_id", w.ID.String()).
		Str("seller_id", req.SellerID.String()).
		Str("currency", string(req.Currency)).
		Int64("requested_amount", w.RequestedAmount).
		Int64("fee_amount", fee).
		Msg("withdrawal submitted")

	return w, nil
}

// Decide applies an operator verdict to a pending request. Approval
// settles the hold: the wallet is debited the requested amount and a
// ledger debit is written. Rejection releases the hold untouched.
func (s *WithdrawalServiceImpl) Decide(ctx context.Context, req ports.DecideWithdrawalRequest) (*domain.WithdrawalRequest, error) {
	// Begin database transaction
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock & get withdrawal request
	w, err := s.withdrawalRepo.GetByIDForUpdate(ctx, dbTx, req.WithdrawalID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock withdrawal: %w", err))
	}
	if w == nil {
		return nil, apperror.ErrNotFound("withdrawal request")
	}
	if w.IsTerminal() {
		return nil, apperror.ErrInvalidTransition(string(w.Status))
	}

	// Lock & get wallet. A pending request always has a matching wallet
	// because Submit placed the hold on it.
	wallet, err := s.walletRepo.GetBySellerIDForUpdate(ctx, dbTx, w.SellerID, w.Currency)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.InternalError(fmt.Errorf("wallet missing for pending withdrawal %s", w.ID))
	}

	now := time.Now().UTC()
	switch req.Outcome {
	case ports.OutcomeApproved:
		// Persist: ledger debit keyed by the withdrawal ID
		entry := &domain.LedgerEntry{
			ID:        uuid.New(),
			SellerID:  w.SellerID,
			Currency:  w.Currency,
			Amount:    w.RequestedAmount,
			Direction: domain.LedgerDirectionDebit,
			Source:    domain.LedgerSourceWithdrawal,
			SourceID:  w.ID,
			CreatedAt: now,
		}
		inserted, err := s.ledgerRepo.Append(ctx, dbTx, entry)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("append ledger entry: %w", err))
		}
		if !inserted {
			return nil, apperror.InternalError(fmt.Errorf("duplicate ledger entry for withdrawal %s", w.ID))
		}

		// Persist: settle the hold, debiting the requested amount
		if err := s.walletRepo.UpdateBalances(ctx, dbTx, wallet.ID, wallet.Balance-w.RequestedAmount, wallet.Held-w.RequestedAmount); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("debit wallet: %w", err))
		}

		if err := s.withdrawalRepo.UpdateStatus(ctx, dbTx, w.ID, domain.WithdrawalStatusApproved, nil); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("approve withdrawal: %w", err))
		}
		w.Status = domain.WithdrawalStatusApproved

	case ports.OutcomeRejected:
		// Persist: release the hold, balance untouched
		if err := s.walletRepo.UpdateBalances(ctx, dbTx, wallet.ID, wallet.Balance, wallet.Held-w.RequestedAmount); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("release hold: %w", err))
		}

		if err := s.withdrawalRepo.UpdateStatus(ctx, dbTx, w.ID, domain.WithdrawalStatusRejected, req.RejectionReason); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("reject withdrawal: %w", err))
		}
		w.Status = domain.WithdrawalStatusRejected
		w.RejectionReason = req.RejectionReason

	default:
		return nil, apperror.Validation(fmt.Sprintf("unknown outcome %q", req.Outcome))
	}
	w.UpdatedAt = now

	// Commit
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	// Post-process: enqueue seller notification (best-effort)
	s.notifyDecision(ctx, w)

	s.log.Info().
		Str("withdrawal_id", w.ID.String()).
		Str("seller_id", w.SellerID.String()).
		Str("status", string(w.Status)).
		Int64("requested_amount", w.RequestedAmount).
		Msg("withdrawal decided")

	return w, nil
}

// Cancel withdraws a pending request at the seller's own initiative,
// releasing the hold. Only the owning seller can cancel, and only while
// the request is still PENDING.
func (s *WithdrawalServiceImpl) Cancel(ctx context.Context, withdrawalID, sellerID uuid.UUID) (*domain.WithdrawalRequest, error) {
	// Begin database transaction
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock & get withdrawal request
	w, err := s.withdrawalRepo.GetByIDForUpdate(ctx, dbTx, withdrawalID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock withdrawal: %w", err))
	}
	if w == nil {
		return nil, apperror.ErrNotFound("withdrawal request")
	}
	if w.SellerID != sellerID {
		return nil, apperror.ErrForbidden()
	}
	if w.IsTerminal() {
		return nil, apperror.ErrInvalidTransition(string(w.Status))
	}

	// Lock & get wallet
	wallet, err := s.walletRepo.GetBySellerIDForUpdate(ctx, dbTx, w.SellerID, w.Currency)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.InternalError(fmt.Errorf("wallet missing for pending withdrawal %s", w.ID))
	}

	// Persist: release the hold
	if err := s.walletRepo.UpdateBalances(ctx, dbTx, wallet.ID, wallet.Balance, wallet.Held-w.RequestedAmount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("release hold: %w", err))
	}

	if err := s.withdrawalRepo.UpdateStatus(ctx, dbTx, w.ID, domain.WithdrawalStatusCanceled, nil); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("cancel withdrawal: %w", err))
	}
	w.Status = domain.WithdrawalStatusCanceled
	w.UpdatedAt = time.Now().UTC()

	// Commit
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("withdrawal_id", w.ID.String()).
		Str("seller_id", w.SellerID.String()).
		Msg("withdrawal canceled")

	return w, nil
}

// List returns withdrawal requests matching the given filters.
func (s *WithdrawalServiceImpl) List(ctx context.Context, params ports.WithdrawalListParams) ([]domain.WithdrawalRequest, int64, error) {
	items, total, err := s.withdrawalRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list withdrawals: %w", err))
	}
	return items, total, nil
}

// notifyDecision enqueues the decision notification. Delivery is owned
// by the notification system; a failed enqueue never fails the decision.
func (s *WithdrawalServiceImpl) notifyDecision(ctx context.Context, w *domain.WithdrawalRequest) {
	event := domain.NotificationEvent{
		SellerID:  w.SellerID,
		Currency:  w.Currency,
		CreatedAt: w.UpdatedAt,
	}
	switch w.Status {
	case domain.WithdrawalStatusApproved:
		event.Kind = domain.NotificationWithdrawalApproved
		event.Amount = w.PayoutAmount()
	case domain.WithdrawalStatusRejected:
		event.Kind = domain.NotificationWithdrawalRejected
		event.Amount = w.RequestedAmount
		event.Reason = w.RejectionReason
	default:
		return
	}

	if err := s.notifier.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).
			Str("withdrawal_id", w.ID.String()).
			Msg("failed to enqueue decision notification")
	}
}
