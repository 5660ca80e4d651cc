package handler

import (
	"time"

	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/adapter/http/dto"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/domain"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/ports"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/pkg/apperror"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SettlementHandler handles the settlement endpoint used by the checkout
// system.
type SettlementHandler struct {
	settlementSvc ports.SettlementService
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementSvc ports.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementSvc: settlementSvc}
}

// Settle handles POST /api/v1/settlements.
func (h *SettlementHandler) Settle(c *gin.Context) {
	var req dto.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	txID, err := uuid.Parse(req.TransactionID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid transaction_id"))
		return
	}
	sellerID, err := uuid.Parse(req.SellerID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid seller_id"))
		return
	}

	sale := &domain.SaleTransaction{
		ID:            txID,
		SellerID:      sellerID,
		BuyerEmail:    req.BuyerEmail,
		Amount:        req.Amount,
		Currency:      domain.Currency(req.Currency),
		Status:        domain.SaleStatus(req.Status),
		PaymentMethod: req.PaymentMethod,
		CreatedAt:     time.Now().UTC(),
	}
	if req.ProductID != nil {
		pid, err := uuid.Parse(*req.ProductID)
		if err != nil {
			response.Error(c, apperror.Validation("invalid product_id"))
			return
		}
		sale.ProductID = &pid
	}

	result, err := h.settlementSvc.Settle(c.Request.Context(), sale)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.SettleResponse{AlreadySettled: result.AlreadySettled}
	if result.Entry != nil {
		e := toLedgerEntryResponse(result.Entry)
		resp.Entry = &e
	}

	if result.AlreadySettled {
		response.OK(c, resp)
		return
	}
	response.Created(c, resp)
}

// toLedgerEntryResponse converts domain.LedgerEntry to DTO.
func toLedgerEntryResponse(e *domain.LedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:        e.ID.String(),
		Currency:  string(e.Currency),
		Amount:    e.Amount,
		Direction: string(e.Direction),
		Source:    string(e.Source),
		SourceID:  e.SourceID.String(),
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}
