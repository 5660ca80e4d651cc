package handler

import (
	"strconv"
	"time"

	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/adapter/http/dto"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/domain"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/ports"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/pkg/apperror"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// WithdrawalHandler handles seller-facing and admin withdrawal endpoints.
type WithdrawalHandler struct {
	withdrawalSvc ports.WithdrawalService
}

// NewWithdrawalHandler creates a new WithdrawalHandler.
func NewWithdrawalHandler(withdrawalSvc ports.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawalSvc: withdrawalSvc}
}

// Submit handles POST /api/v1/withdrawals.
func (h *WithdrawalHandler) Submit(c *gin.Context) {
	sellerID, ok := sellerFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.SubmitWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.withdrawalSvc.Submit(c.Request.Context(), ports.SubmitWithdrawalRequest{
		SellerID:        sellerID,
		Currency:        domain.Currency(req.Currency),
		RequestedAmount: req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toWithdrawalResponse(result))
}

// Cancel handles POST /api/v1/withdrawals/:id/cancel.
func (h *WithdrawalHandler) Cancel(c *gin.Context) {
	sellerID, ok := sellerFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	withdrawalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid withdrawal id"))
		return
	}

	result, err := h.withdrawalSvc.Cancel(c.Request.Context(), withdrawalID, sellerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toWithdrawalResponse(result))
}

// List handles GET /api/v1/withdrawals for the authenticated seller.
func (h *WithdrawalHandler) List(c *gin.Context) {
	sellerID, ok := sellerFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	params, err := withdrawalListParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	params.SellerID = &sellerID

	h.respondList(c, params)
}

// AdminList handles GET /api/v1/admin/withdrawals across all sellers.
func (h *WithdrawalHandler) AdminList(c *gin.Context) {
	params, err := withdrawalListParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if sellerStr := c.Query("seller_id"); sellerStr != "" {
		sid, err := uuid.Parse(sellerStr)
		if err != nil {
			response.Error(c, apperror.Validation("invalid seller_id"))
			return
		}
		params.SellerID = &sid
	}

	h.respondList(c, params)
}

// Decide handles POST /api/v1/admin/withdrawals/:id/decision.
func (h *WithdrawalHandler) Decide(c *gin.Context) {
	withdrawalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid withdrawal id"))
		return
	}

	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	outcome := ports.WithdrawalOutcome(req.Outcome)
	if outcome == ports.OutcomeRejected && req.RejectionReason == nil {
		response.Error(c, apperror.Validation("rejection requires a reason"))
		return
	}
	if outcome == ports.OutcomeApproved && req.RejectionReason != nil {
		response.Error(c, apperror.Validation("approval must not carry a rejection reason"))
		return
	}

	result, err := h.withdrawalSvc.Decide(c.Request.Context(), ports.DecideWithdrawalRequest{
		WithdrawalID:    withdrawalID,
		Outcome:         outcome,
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toWithdrawalResponse(result))
}

func (h *WithdrawalHandler) respondList(c *gin.Context, params ports.WithdrawalListParams) {
	items, total, err := h.withdrawalSvc.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.WithdrawalListResponse{
		Items:      make([]dto.WithdrawalResponse, 0, len(items)),
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages(total, params.PageSize),
	}
	for i := range items {
		resp.Items = append(resp.Items, toWithdrawalResponse(&items[i]))
	}
	response.OK(c, resp)
}

// withdrawalListParams parses shared filter and pagination query params.
func withdrawalListParams(c *gin.Context) (ports.WithdrawalListParams, error) {
	params := ports.WithdrawalListParams{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", defaultPageSize),
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > maxPageSize {
		params.PageSize = defaultPageSize
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.WithdrawalStatus(statusStr)
		switch status {
		case domain.WithdrawalStatusPending, domain.WithdrawalStatusApproved,
			domain.WithdrawalStatusRejected, domain.WithdrawalStatusCanceled:
			params.Status = &status
		default:
			return params, apperror.Validation("invalid status filter")
		}
	}

	if currencyStr := c.Query("currency"); currencyStr != "" {
		currency := domain.Currency(currencyStr)
		if !currency.IsSupported() {
			return params, apperror.ErrUnsupportedCurrency(currencyStr)
		}
		params.Currency = &currency
	}

	return params, nil
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// toWithdrawalResponse converts domain.WithdrawalRequest to DTO.
func toWithdrawalResponse(w *domain.WithdrawalRequest) dto.WithdrawalResponse {
	return dto.WithdrawalResponse{
		ID:              w.ID.String(),
		SellerID:        w.SellerID.String(),
		Currency:        string(w.Currency),
		RequestedAmount: w.RequestedAmount,
		FeeAmount:       w.FeeAmount,
		PayoutAmount:    w.PayoutAmount(),
		Status:          string(w.Status),
		RejectionReason: w.RejectionReason,
		CreatedAt:       w.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       w.UpdatedAt.Format(time.RFC3339),
	}
}
