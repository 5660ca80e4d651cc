package service

import (
	"context"
	"testing"

	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/domain"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/ports"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/ports/mocks"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type withdrawalTestDeps struct {
	svc            *WithdrawalServiceImpl
	withdrawalRepo *mocks.MockWithdrawalRepository
	walletRepo     *mocks.MockWalletRepository
	ledgerRepo     *mocks.MockLedgerRepository
	policySvc      *mocks.MockPolicyService
	notifier       *mocks.MockNotifier
	transactor     *mocks.MockDBTransactor
	ctrl           *gomock.Controller
}

func setupWithdrawalService(t *testing.T) *withdrawalTestDeps {
	ctrl := gomock.NewController(t)
	d := &withdrawalTestDeps{
		withdrawalRepo: mocks.NewMockWithdrawalRepository(ctrl),
		walletRepo:     mocks.NewMockWalletRepository(ctrl),
		ledgerRepo:     mocks.NewMockLedgerRepository(ctrl),
		policySvc:      mocks.NewMockPolicyService(ctrl),
		notifier:       mocks.NewMockNotifier(ctrl),
		transactor:     mocks.NewMockDBTransactor(ctrl),
		ctrl:           ctrl,
	}
	d.svc = NewWithdrawalService(
		d.withdrawalRepo, d.walletRepo, d.ledgerRepo,
		d.policySvc, d.notifier, d.transactor, zerolog.Nop(),
	)
	return d
}

var testPolicy = domain.FeePolicy{
	FeePercent:          10,
	MinimumWithdrawal:   5000,
	ProcessingTimeLabel: "2-5 business days",
	MaxProducts:         50,
}

// ==================== Submit Tests ====================

func TestWithdrawalService_Submit_Success(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	sellerID := uuid.New()
	walletID := uuid.New()
	tx := &mockTx{}

	req := ports.SubmitWithdrawalRequest{
		SellerID:        sellerID,
		Currency:        domain.CurrencyAOA,
		RequestedAmount: 10000,
	}

	d.policySvc.EXPECT().GetPolicy(ctx, sellerID).Return(testPolicy, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	// Balance 20000: requested 10000 + fee 1000 fits
	d.walletRepo.EXPECT().GetBySellerIDForUpdate(ctx, tx, sellerID, domain.CurrencyAOA).Return(&domain.Wallet{
		ID:       walletID,
		SellerID: sellerID,
		Currency: domain.CurrencyAOA,
		Balance:  20000,
		Held:     0,
	}, nil)
	d.withdrawalRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	// Hold the requested amount, balance untouched
	d.walletRepo.EXPECT().UpdateBalances(ctx, tx, walletID, int64(20000), int64(10000)).Return(nil)

	w, err := d.svc.Submit(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, domain.WithdrawalStatusPending, w.Status)
	assert.Equal(t, int64(10000), w.RequestedAmount)
	assert.Equal(t, int64(1000), w.FeeAmount)
	assert.Equal(t, int64(9000), w.PayoutAmount())
}

func TestWithdrawalService_Submit_InsufficientBalance(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	sellerID := uuid.New()
	tx := &mockTx{}

	req := ports.SubmitWithdrawalRequest{
		SellerID:        sellerID,
		Currency:        domain.CurrencyAOA,
		RequestedAmount: 10000,
	}

	d.policySvc.EXPECT().GetPolicy(ctx, sellerID).Return(testPolicy, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	// Available 10500 < 10000 + 1000 fee
	d.walletRepo.EXPECT().GetBySellerIDForUpdate(ctx, tx, sellerID, domain.CurrencyAOA).Return(&domain.Wallet{
		ID:       uuid.New(),
		SellerID: sellerID,
		Currency: domain.CurrencyAOA,
		Balance:  10500,
		Held:     0,
	}, nil)

	_, err := d.svc.Submit(ctx, req)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WAL_002", appErr.Code)
}

func TestWithdrawalService_Submit_HeldFundsReduceAvailable(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	sellerID := uuid.New()
	tx := &mockTx{}

	req := ports.SubmitWithdrawalRequest{
		SellerID:        sellerID,
		Currency:        domain.CurrencyAOA,
		RequestedAmount: 10000,
	}

	d.policySvc.EXPECT().GetPolicy(ctx, sellerID).Return(testPolicy, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	// Balance would cover it, but an earlier pending request holds 15000
	d.walletRepo.EXPECT().GetBySellerIDForUpdate(ctx, tx, sellerID, domain.CurrencyAOA).Return(&domain.Wallet{
		ID:       uuid.New(),
		SellerID: sellerID,
		Currency: domain.CurrencyAOA,
		Balance:  20000,
		Held:     15000,
	}, nil)

	_, err := d.svc.Submit(ctx, req)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WAL_002", appErr.Code)
}

func TestWithdrawalService_Submit_NoWallet(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	sellerID := uuid.New()
	tx := &mockTx{}

	req := ports.SubmitWithdrawalRequest{
		SellerID:        sellerID,
		Currency:        domain.CurrencyBRL,
		RequestedAmount: 10000,
	}

	d.policySvc.EXPECT().GetPolicy(ctx, sellerID).Return(testPolicy, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetBySellerIDForUpdate(ctx, tx, sellerID, domain.CurrencyBRL).Return(nil, nil)

	_, err := d.svc.Submit(ctx, req)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WAL_002", appErr.Code)
}

func TestWithdrawalService_Submit_BelowMinimum(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	sellerID := uuid.New()

	req := ports.SubmitWithdrawalRequest{
		SellerID:        sellerID,
		Currency:        domain.CurrencyAOA,
		RequestedAmount: 4999,
	}

	d.policySvc.EXPECT().GetPolicy(ctx, sellerID).Return(testPolicy, nil)

	_, err := d.svc.Submit(ctx, req)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WDR_001", appErr.Code)
}

func TestWithdrawalService_Submit_InvalidAmount(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	req := ports.SubmitWithdrawalRequest{
		SellerID:        uuid.New(),
		Currency:        domain.CurrencyAOA,
		RequestedAmount: 0,
	}

	_, err := d.svc.Submit(context.Background(), req)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WAL_001", appErr.Code)
}

func TestWithdrawalService_Submit_UnsupportedCurrency(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	req := ports.SubmitWithdrawalRequest{
		SellerID:        uuid.New(),
		Currency:        "EUR",
		RequestedAmount: 10000,
	}

	_, err := d.svc.Submit(context.Background(), req)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WAL_003", appErr.Code)
}

// ==================== Decide Tests ====================

func pendingWithdrawal(sellerID uuid.UUID) *domain.WithdrawalRequest {
	return &domain.WithdrawalRequest{
		ID:              uuid.New(),
		SellerID:        sellerID,
		Currency:        domain.CurrencyAOA,
		RequestedAmount: 10000,
		FeeAmount:       1000,
		Status:          domain.WithdrawalStatusPending,
	}
}

func TestWithdrawalService_Decide_Approve(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	sellerID := uuid.New()
	walletID := uuid.New()
	tx := &mockTx{}
	w := pendingWithdrawal(sellerID)

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.withdrawalRepo.EXPECT().GetByIDForUpdate(ctx, tx, w.ID).Return(w, nil)
	d.walletRepo.EXPECT().GetBySellerIDForUpdate(ctx, tx, sellerID, domain.CurrencyAOA).Return(&domain.Wallet{
		ID:       walletID,
		SellerID: sellerID,
		Currency: domain.CurrencyAOA,
		Balance:  20000,
		Held:     10000,
	}, nil)
	// Ledger debit keyed by withdrawal ID
	d.ledgerRepo.EXPECT().Append(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ any, e *domain.LedgerEntry) (bool, error) {
			assert.Equal(t, domain.LedgerDirectionDebit, e.Direction)
			assert.Equal(t, domain.LedgerSourceWithdrawal, e.Source)
			assert.Equal(t, w.ID, e.SourceID)
			assert.Equal(t, int64(10000), e.Amount)
			return true, nil
		})
	// Hold settled: balance and held both drop by the requested amount
	d.walletRepo.EXPECT().UpdateBalances(ctx, tx, walletID, int64(10000), int64(0)).Return(nil)
	d.withdrawalRepo.EXPECT().UpdateStatus(ctx, tx, w.ID, domain.WithdrawalStatusApproved, nil).Return(nil)
	d.notifier.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, ev domain.NotificationEvent) error {
			assert.Equal(t, domain.NotificationWithdrawalApproved, ev.Kind)
			assert.Equal(t, int64(9000), ev.Amount)
			return nil
		})

	result, err := d.svc.Decide(ctx, ports.DecideWithdrawalRequest{
		WithdrawalID: w.ID,
		Outcome:      ports.OutcomeApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusApproved, result.Status)
}

func TestWithdrawalService_Decide_Reject(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	sellerID := uuid.New()
	walletID := uuid.New()
	tx := &mockTx{}
	w := pendingWithdrawal(sellerID)
	reason := "bank details mismatch"

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.withdrawalRepo.EXPECT().GetByIDForUpdate(ctx, tx, w.ID).Return(w, nil)
	d.walletRepo.EXPECT().GetBySellerIDForUpdate(ctx, tx, sellerID, domain.CurrencyAOA).Return(&domain.Wallet{
		ID:       walletID,
		SellerID: sellerID,
		Currency: domain.CurrencyAOA,
		Balance:  20000,
		Held:     10000,
	}, nil)
	// Hold released, balance untouched
	d.walletRepo.EXPECT().UpdateBalances(ctx, tx, walletID, int64(20000), int64(0)).Return(nil)
	d.withdrawalRepo.EXPECT().UpdateStatus(ctx, tx, w.ID, domain.WithdrawalStatusRejected, &reason).Return(nil)
	d.notifier.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, ev domain.NotificationEvent) error {
			assert.Equal(t, domain.NotificationWithdrawalRejected, ev.Kind)
			require.NotNil(t, ev.Reason)
			assert.Equal(t, reason, *ev.Reason)
			return nil
		})

	result, err := d.svc.Decide(ctx, ports.DecideWithdrawalRequest{
		WithdrawalID:    w.ID,
		Outcome:         ports.OutcomeRejected,
		RejectionReason: &reason,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusRejected, result.Status)
	require.NotNil(t, result.RejectionReason)
	assert.Equal(t, reason, *result.RejectionReason)
}

func TestWithdrawalService_Decide_AlreadyDecided(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	w := pendingWithdrawal(uuid.New())
	w.Status = domain.WithdrawalStatusApproved

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.withdrawalRepo.EXPECT().GetByIDForUpdate(ctx, tx, w.ID).Return(w, nil)

	_, err := d.svc.Decide(ctx, ports.DecideWithdrawalRequest{
		WithdrawalID: w.ID,
		Outcome:      ports.OutcomeApproved,
	})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WDR_002", appErr.Code)
}

func TestWithdrawalService_Decide_NotFound(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	id := uuid.New()

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.withdrawalRepo.EXPECT().GetByIDForUpdate(ctx, tx, id).Return(nil, nil)

	_, err := d.svc.Decide(ctx, ports.DecideWithdrawalRequest{
		WithdrawalID: id,
		Outcome:      ports.OutcomeApproved,
	})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PAY_004", appErr.Code)
}

// ==================== Cancel Tests ====================

func TestWithdrawalService_Cancel_Success(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	sellerID := uuid.New()
	walletID := uuid.New()
	tx := &mockTx{}
	w := pendingWithdrawal(sellerID)

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.withdrawalRepo.EXPECT().GetByIDForUpdate(ctx, tx, w.ID).Return(w, nil)
	d.walletRepo.EXPECT().GetBySellerIDForUpdate(ctx, tx, sellerID, domain.CurrencyAOA).Return(&domain.Wallet{
		ID:       walletID,
		SellerID: sellerID,
		Currency: domain.CurrencyAOA,
		Balance:  20000,
		Held:     10000,
	}, nil)
	d.walletRepo.EXPECT().UpdateBalances(ctx, tx, walletID, int64(20000), int64(0)).Return(nil)
	d.withdrawalRepo.EXPECT().UpdateStatus(ctx, tx, w.ID, domain.WithdrawalStatusCanceled, nil).Return(nil)

	result, err := d.svc.Cancel(ctx, w.ID, sellerID)
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusCanceled, result.Status)
}

func TestWithdrawalService_Cancel_WrongSeller(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	w := pendingWithdrawal(uuid.New())

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.withdrawalRepo.EXPECT().GetByIDForUpdate(ctx, tx, w.ID).Return(w, nil)

	_, err := d.svc.Cancel(ctx, w.ID, uuid.New())
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AUTH_005", appErr.Code)
}

func TestWithdrawalService_Cancel_AlreadyDecided(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	sellerID := uuid.New()
	tx := &mockTx{}
	w := pendingWithdrawal(sellerID)
	w.Status = domain.WithdrawalStatusRejected

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.withdrawalRepo.EXPECT().GetByIDForUpdate(ctx, tx, w.ID).Return(w, nil)

	_, err := d.svc.Cancel(ctx, w.ID, sellerID)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WDR_002", appErr.Code)
}
