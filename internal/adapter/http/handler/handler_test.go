package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/adapter/http/dto"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/adapter/http/middleware"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/domain"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/ports"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/ports/mocks"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext(t *testing.T, method, path string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, path, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

// --- Settlement Handler Tests ---

func TestSettle_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockSettlementService(ctrl)
	h := NewSettlementHandler(mockSvc)

	saleID := uuid.New()
	sellerID := uuid.New()
	entry := &domain.LedgerEntry{
		ID:        uuid.New(),
		SellerID:  sellerID,
		Currency:  domain.CurrencyAOA,
		Amount:    15000,
		Direction: domain.LedgerDirectionCredit,
		Source:    domain.LedgerSourceSale,
		SourceID:  saleID,
		CreatedAt: time.Now().UTC(),
	}
	mockSvc.EXPECT().Settle(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, sale *domain.SaleTransaction) (*ports.SettlementResult, error) {
			assert.Equal(t, saleID, sale.ID)
			assert.Equal(t, sellerID, sale.SellerID)
			assert.Equal(t, int64(15000), sale.Amount)
			return &ports.SettlementResult{Entry: entry}, nil
		})

	c, w := testContext(t, http.MethodPost, "/api/v1/settlements", dto.SettleRequest{
		TransactionID: saleID.String(),
		SellerID:      sellerID.String(),
		BuyerEmail:    "buyer@example.com",
		Amount:        15000,
		Currency:      "AOA",
		Status:        "COMPLETED",
		PaymentMethod: "multicaixa",
	})

	h.Settle(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	assert.Equal(t, false, data["already_settled"])
	require.NotNil(t, data["entry"])
}

func TestSettle_AlreadySettledReturns200(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockSettlementService(ctrl)
	h := NewSettlementHandler(mockSvc)

	mockSvc.EXPECT().Settle(gomock.Any(), gomock.Any()).Return(&ports.SettlementResult{AlreadySettled: true}, nil)

	c, w := testContext(t, http.MethodPost, "/api/v1/settlements", dto.SettleRequest{
		TransactionID: uuid.NewString(),
		SellerID:      uuid.NewString(),
		BuyerEmail:    "buyer@example.com",
		Amount:        15000,
		Currency:      "AOA",
		Status:        "COMPLETED",
		PaymentMethod: "multicaixa",
	})

	h.Settle(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	assert.Equal(t, true, data["already_settled"])
}

func TestSettle_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockSettlementService(ctrl)
	h := NewSettlementHandler(mockSvc)

	// Empty body => binding error
	c, w := testContext(t, http.MethodPost, "/api/v1/settlements", map[string]any{})

	h.Settle(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettle_UnsupportedCurrencyRejectedByBinding(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockSettlementService(ctrl)
	h := NewSettlementHandler(mockSvc)

	c, w := testContext(t, http.MethodPost, "/api/v1/settlements", dto.SettleRequest{
		TransactionID: uuid.NewString(),
		SellerID:      uuid.NewString(),
		BuyerEmail:    "buyer@example.com",
		Amount:        15000,
		Currency:      "USD",
		Status:        "COMPLETED",
		PaymentMethod: "card",
	})

	h.Settle(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Withdrawal Handler Tests ---

func TestSubmitWithdrawal_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWithdrawalService(ctrl)
	h := NewWithdrawalHandler(mockSvc)

	sellerID := uuid.New()
	now := time.Now().UTC()
	mockSvc.EXPECT().Submit(gomock.Any(), ports.SubmitWithdrawalRequest{
		SellerID:        sellerID,
		Currency:        domain.CurrencyAOA,
		RequestedAmount: 10000,
	}).Return(&domain.WithdrawalRequest{
		ID:              uuid.New(),
		SellerID:        sellerID,
		Currency:        domain.CurrencyAOA,
		RequestedAmount: 10000,
		FeeAmount:       1000,
		Status:          domain.WithdrawalStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil)

	c, w := testContext(t, http.MethodPost, "/api/v1/withdrawals", dto.SubmitWithdrawalRequest{
		Amount:   10000,
		Currency: "AOA",
	})
	c.Set(middleware.CtxSellerID, sellerID)

	h.Submit(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	assert.Equal(t, "PENDING", data["status"])
	assert.Equal(t, float64(1000), data["fee_amount"])
	assert.Equal(t, float64(9000), data["payout_amount"])
}

func TestSubmitWithdrawal_InsufficientBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWithdrawalService(ctrl)
	h := NewWithdrawalHandler(mockSvc)

	sellerID := uuid.New()
	mockSvc.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrInsufficientBalance(0, 11000))

	c, w := testContext(t, http.MethodPost, "/api/v1/withdrawals", dto.SubmitWithdrawalRequest{
		Amount:   10000,
		Currency: "BRL",
	})
	c.Set(middleware.CtxSellerID, sellerID)

	h.Submit(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "WAL_002")
}

func TestSubmitWithdrawal_NoAuthContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWithdrawalService(ctrl)
	h := NewWithdrawalHandler(mockSvc)

	c, w := testContext(t, http.MethodPost, "/api/v1/withdrawals", dto.SubmitWithdrawalRequest{
		Amount:   10000,
		Currency: "AOA",
	})

	h.Submit(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDecide_Approve(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWithdrawalService(ctrl)
	h := NewWithdrawalHandler(mockSvc)

	withdrawalID := uuid.New()
	now := time.Now().UTC()
	mockSvc.EXPECT().Decide(gomock.Any(), ports.DecideWithdrawalRequest{
		WithdrawalID: withdrawalID,
		Outcome:      ports.OutcomeApproved,
	}).Return(&domain.WithdrawalRequest{
		ID:              withdrawalID,
		SellerID:        uuid.New(),
		Currency:        domain.CurrencyAOA,
		RequestedAmount: 10000,
		FeeAmount:       1000,
		Status:          domain.WithdrawalStatusApproved,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil)

	c, w := testContext(t, http.MethodPost, "/api/v1/admin/withdrawals/"+withdrawalID.String()+"/decision", dto.DecisionRequest{
		Outcome: "approved",
	})
	c.Params = gin.Params{{Key: "id", Value: withdrawalID.String()}}

	h.Decide(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "APPROVED")
}

func TestDecide_RejectWithoutReason(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWithdrawalService(ctrl)
	h := NewWithdrawalHandler(mockSvc)

	withdrawalID := uuid.New()
	c, w := testContext(t, http.MethodPost, "/api/v1/admin/withdrawals/"+withdrawalID.String()+"/decision", dto.DecisionRequest{
		Outcome: "rejected",
	})
	c.Params = gin.Params{{Key: "id", Value: withdrawalID.String()}}

	h.Decide(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDecide_ApproveWithReason(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWithdrawalService(ctrl)
	h := NewWithdrawalHandler(mockSvc)

	withdrawalID := uuid.New()
	reason := "why not"
	c, w := testContext(t, http.MethodPost, "/api/v1/admin/withdrawals/"+withdrawalID.String()+"/decision", dto.DecisionRequest{
		Outcome:         "approved",
		RejectionReason: &reason,
	})
	c.Params = gin.Params{{Key: "id", Value: withdrawalID.String()}}

	h.Decide(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDecide_InvalidOutcome(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWithdrawalService(ctrl)
	h := NewWithdrawalHandler(mockSvc)

	withdrawalID := uuid.New()
	c, w := testContext(t, http.MethodPost, "/", map[string]any{"outcome": "maybe"})
	c.Params = gin.Params{{Key: "id", Value: withdrawalID.String()}}

	h.Decide(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDecide_AlreadyDecided(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWithdrawalService(ctrl)
	h := NewWithdrawalHandler(mockSvc)

	withdrawalID := uuid.New()
	mockSvc.EXPECT().Decide(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrInvalidTransition("APPROVED"))

	c, w := testContext(t, http.MethodPost, "/", dto.DecisionRequest{Outcome: "approved"})
	c.Params = gin.Params{{Key: "id", Value: withdrawalID.String()}}

	h.Decide(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "WDR_002")
}

func TestCancel_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWithdrawalService(ctrl)
	h := NewWithdrawalHandler(mockSvc)

	sellerID := uuid.New()
	withdrawalID := uuid.New()
	now := time.Now().UTC()
	mockSvc.EXPECT().Cancel(gomock.Any(), withdrawalID, sellerID).Return(&domain.WithdrawalRequest{
		ID:              withdrawalID,
		SellerID:        sellerID,
		Currency:        domain.CurrencyAOA,
		RequestedAmount: 10000,
		FeeAmount:       1000,
		Status:          domain.WithdrawalStatusCanceled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil)

	c, w := testContext(t, http.MethodPost, "/api/v1/withdrawals/"+withdrawalID.String()+"/cancel", nil)
	c.Set(middleware.CtxSellerID, sellerID)
	c.Params = gin.Params{{Key: "id", Value: withdrawalID.String()}}

	h.Cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "CANCELED")
}

func TestListWithdrawals_ScopedToSeller(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWithdrawalService(ctrl)
	h := NewWithdrawalHandler(mockSvc)

	sellerID := uuid.New()
	mockSvc.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, params ports.WithdrawalListParams) ([]domain.WithdrawalRequest, int64, error) {
			require.NotNil(t, params.SellerID)
			assert.Equal(t, sellerID, *params.SellerID)
			assert.Equal(t, 1, params.Page)
			assert.Equal(t, 20, params.PageSize)
			return []domain.WithdrawalRequest{}, 0, nil
		})

	c, w := testContext(t, http.MethodGet, "/api/v1/withdrawals", nil)
	c.Set(middleware.CtxSellerID, sellerID)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminList_StatusFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWithdrawalService(ctrl)
	h := NewWithdrawalHandler(mockSvc)

	mockSvc.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, params ports.WithdrawalListParams) ([]domain.WithdrawalRequest, int64, error) {
			assert.Nil(t, params.SellerID)
			require.NotNil(t, params.Status)
			assert.Equal(t, domain.WithdrawalStatusPending, *params.Status)
			return []domain.WithdrawalRequest{}, 0, nil
		})

	c, w := testContext(t, http.MethodGet, "/api/v1/admin/withdrawals?status=PENDING", nil)

	h.AdminList(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminList_InvalidStatusFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWithdrawalService(ctrl)
	h := NewWithdrawalHandler(mockSvc)

	c, w := testContext(t, http.MethodGet, "/api/v1/admin/withdrawals?status=MAYBE", nil)

	h.AdminList(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Wallet Handler Tests ---

func TestGetBalance_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	mockPolicy := mocks.NewMockPolicyService(ctrl)
	h := NewWalletHandler(mockReporting, mockPolicy)

	sellerID := uuid.New()
	mockReporting.EXPECT().GetWalletBalance(gomock.Any(), sellerID, domain.CurrencyAOA).Return(&ports.WalletBalance{
		Currency:  domain.CurrencyAOA,
		Balance:   20000,
		Held:      11000,
		Available: 9000,
	}, nil)

	c, w := testContext(t, http.MethodGet, "/api/v1/wallets/balance?currency=AOA", nil)
	c.Set(middleware.CtxSellerID, sellerID)

	h.GetBalance(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	assert.Equal(t, float64(20000), data["balance"])
	assert.Equal(t, float64(11000), data["held"])
	assert.Equal(t, float64(9000), data["available"])
}

func TestGetBalance_UnsupportedCurrency(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	mockPolicy := mocks.NewMockPolicyService(ctrl)
	h := NewWalletHandler(mockReporting, mockPolicy)

	sellerID := uuid.New()
	mockReporting.EXPECT().GetWalletBalance(gomock.Any(), sellerID, domain.Currency("USD")).
		Return(nil, apperror.ErrUnsupportedCurrency("USD"))

	c, w := testContext(t, http.MethodGet, "/api/v1/wallets/balance?currency=USD", nil)
	c.Set(middleware.CtxSellerID, sellerID)

	h.GetBalance(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "WAL_003")
}

func TestGetPolicy_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	mockPolicy := mocks.NewMockPolicyService(ctrl)
	h := NewWalletHandler(mockReporting, mockPolicy)

	sellerID := uuid.New()
	mockPolicy.EXPECT().GetPolicy(gomock.Any(), sellerID).Return(domain.FeePolicy{
		FeePercent:          10,
		MinimumWithdrawal:   5000,
		ProcessingTimeLabel: "2-5 business days",
		MaxProducts:         50,
	}, nil)

	c, w := testContext(t, http.MethodGet, "/api/v1/policy", nil)
	c.Set(middleware.CtxSellerID, sellerID)

	h.GetPolicy(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	assert.Equal(t, float64(10), data["fee_percent"])
	assert.Equal(t, float64(5000), data["minimum_withdrawal"])
}

// --- Ledger Handler Tests ---

func TestListLedger_Filters(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewLedgerHandler(mockReporting)

	sellerID := uuid.New()
	mockReporting.EXPECT().ListLedger(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, params ports.LedgerListParams) ([]domain.LedgerEntry, int64, error) {
			assert.Equal(t, sellerID, params.SellerID)
			require.NotNil(t, params.Currency)
			assert.Equal(t, domain.CurrencyAOA, *params.Currency)
			require.NotNil(t, params.Direction)
			assert.Equal(t, domain.LedgerDirectionCredit, *params.Direction)
			return []domain.LedgerEntry{}, 0, nil
		})

	c, w := testContext(t, http.MethodGet, "/api/v1/ledger?currency=AOA&direction=CREDIT", nil)
	c.Set(middleware.CtxSellerID, sellerID)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReconcile_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewLedgerHandler(mockReporting)

	sellerID := uuid.New()
	mockReporting.EXPECT().Reconcile(gomock.Any(), sellerID, domain.CurrencyBRL).Return(&ports.ReconciliationReport{
		SellerID:      sellerID,
		Currency:      domain.CurrencyBRL,
		WalletBalance: 15000,
		LedgerBalance: 15000,
		Credits:       25000,
		Debits:        10000,
	}, nil)

	c, w := testContext(t, http.MethodGet, "/api/v1/ledger/reconcile?currency=BRL", nil)
	c.Set(middleware.CtxSellerID, sellerID)

	h.Reconcile(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	assert.Equal(t, float64(0), data["drift"])
}
