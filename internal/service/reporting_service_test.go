package service

import (
	"context"
	"testing"

	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/domain"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/ports/mocks"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type reportingTestDeps struct {
	svc        *ReportingServiceImpl
	walletRepo *mocks.MockWalletRepository
	ledgerRepo *mocks.MockLedgerRepository
	ctrl       *gomock.Controller
}

func setupReportingService(t *testing.T) *reportingTestDeps {
	ctrl := gomock.NewController(t)
	d := &reportingTestDeps{
		walletRepo: mocks.NewMockWalletRepository(ctrl),
		ledgerRepo: mocks.NewMockLedgerRepository(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewReportingService(d.walletRepo, d.ledgerRepo, zerolog.Nop())
	return d
}

func TestReportingService_GetWalletBalance(t *testing.T) {
	d := setupReportingService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	sellerID := uuid.New()

	d.walletRepo.EXPECT().GetBySellerID(ctx, sellerID, domain.CurrencyAOA).Return(&domain.Wallet{
		ID:       uuid.New(),
		SellerID: sellerID,
		Currency: domain.CurrencyAOA,
		Balance:  20000,
		Held:     11000,
	}, nil)

	balance, err := d.svc.GetWalletBalance(ctx, sellerID, domain.CurrencyAOA)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), balance.Balance)
	assert.Equal(t, int64(11000), balance.Held)
	assert.Equal(t, int64(9000), balance.Available)
}

func TestReportingService_GetWalletBalance_MissingWalletReadsZero(t *testing.T) {
	d := setupReportingService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	sellerID := uuid.New()

	d.walletRepo.EXPECT().GetBySellerID(ctx, sellerID, domain.CurrencyBRL).Return(nil, nil)

	balance, err := d.svc.GetWalletBalance(ctx, sellerID, domain.CurrencyBRL)
	require.NoError(t, err)
	assert.Equal(t, domain.CurrencyBRL, balance.Currency)
	assert.Equal(t, int64(0), balance.Balance)
	assert.Equal(t, int64(0), balance.Available)
}

func TestReportingService_GetWalletBalance_UnsupportedCurrency(t *testing.T) {
	d := setupReportingService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.GetWalletBalance(context.Background(), uuid.New(), "USD")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WAL_003", appErr.Code)
}

func TestReportingService_Reconcile_Consistent(t *testing.T) {
	d := setupReportingService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	sellerID := uuid.New()

	d.walletRepo.EXPECT().GetBySellerID(ctx, sellerID, domain.CurrencyAOA).Return(&domain.Wallet{
		ID:       uuid.New(),
		SellerID: sellerID,
		Currency: domain.CurrencyAOA,
		Balance:  15000,
	}, nil)
	d.ledgerRepo.EXPECT().SumByDirection(ctx, sellerID, domain.CurrencyAOA).Return(int64(25000), int64(10000), nil)

	report, err := d.svc.Reconcile(ctx, sellerID, domain.CurrencyAOA)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), report.WalletBalance)
	assert.Equal(t, int64(15000), report.LedgerBalance)
	assert.Equal(t, int64(25000), report.Credits)
	assert.Equal(t, int64(10000), report.Debits)
	assert.Equal(t, int64(0), report.Drift)
}

func TestReportingService_Reconcile_ReportsDrift(t *testing.T) {
	d := setupReportingService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	sellerID := uuid.New()

	d.walletRepo.EXPECT().GetBySellerID(ctx, sellerID, domain.CurrencyAOA).Return(&domain.Wallet{
		ID:       uuid.New(),
		SellerID: sellerID,
		Currency: domain.CurrencyAOA,
		Balance:  16000,
	}, nil)
	d.ledgerRepo.EXPECT().SumByDirection(ctx, sellerID, domain.CurrencyAOA).Return(int64(25000), int64(10000), nil)

	report, err := d.svc.Reconcile(ctx, sellerID, domain.CurrencyAOA)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), report.Drift)
}

func TestReportingService_Reconcile_NoWallet(t *testing.T) {
	d := setupReportingService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	sellerID := uuid.New()

	d.walletRepo.EXPECT().GetBySellerID(ctx, sellerID, domain.CurrencyAOA).Return(nil, nil)
	d.ledgerRepo.EXPECT().SumByDirection(ctx, sellerID, domain.CurrencyAOA).Return(int64(0), int64(0), nil)

	report, err := d.svc.Reconcile(ctx, sellerID, domain.CurrencyAOA)
	require.NoError(t, err)
	assert.Equal(t, int64(0), report.WalletBalance)
	assert.Equal(t, int64(0), report.Drift)
}
