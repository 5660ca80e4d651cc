package handler

import (
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/adapter/http/dto"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/adapter/http/middleware"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/domain"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/ports"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/pkg/apperror"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles wallet and policy read endpoints.
type WalletHandler struct {
	reportingSvc ports.ReportingService
	policySvc    ports.PolicyService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(reportingSvc ports.ReportingService, policySvc ports.PolicyService) *WalletHandler {
	return &WalletHandler{reportingSvc: reportingSvc, policySvc: policySvc}
}

// GetBalance handles GET /api/v1/wallets/balance?currency=AOA.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	sellerID, ok := sellerFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	currency := domain.Currency(c.Query("currency"))
	balance, err := h.reportingSvc.GetWalletBalance(c.Request.Context(), sellerID, currency)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WalletResponse{
		Currency:  string(balance.Currency),
		Balance:   balance.Balance,
		Held:      balance.Held,
		Available: balance.Available,
	})
}

// ListWallets handles GET /api/v1/wallets.
func (h *WalletHandler) ListWallets(c *gin.Context) {
	sellerID, ok := sellerFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	wallets, err := h.reportingSvc.ListWallets(c.Request.Context(), sellerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.WalletResponse, 0, len(wallets))
	for i := range wallets {
		w := &wallets[i]
		items = append(items, dto.WalletResponse{
			Currency:  string(w.Currency),
			Balance:   w.Balance,
			Held:      w.Held,
			Available: w.Available(),
		})
	}
	response.OK(c, items)
}

// GetPolicy handles GET /api/v1/policy. It tells the seller what terms
// apply before they submit a withdrawal.
func (h *WalletHandler) GetPolicy(c *gin.Context) {
	sellerID, ok := sellerFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	policy, err := h.policySvc.GetPolicy(c.Request.Context(), sellerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.PolicyResponse{
		FeePercent:          policy.FeePercent,
		MinimumWithdrawal:   policy.MinimumWithdrawal,
		ProcessingTimeLabel: policy.ProcessingTimeLabel,
		MaxProducts:         policy.MaxProducts,
	})
}

// sellerFromContext extracts the authenticated seller ID set by JWTAuth.
func sellerFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.CtxSellerID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
