package handler

import (
	"strconv"

	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/adapter/http/dto"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/domain"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/ports"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/pkg/apperror"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/pkg/response"

	"github.com/gin-gonic/gin"
)

// LedgerHandler handles the money-movement history and reconciliation
// endpoints.
type LedgerHandler struct {
	reportingSvc ports.ReportingService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(reportingSvc ports.ReportingService) *LedgerHandler {
	return &LedgerHandler{reportingSvc: reportingSvc}
}

// List handles GET /api/v1/ledger.
func (h *LedgerHandler) List(c *gin.Context) {
	sellerID, ok := sellerFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	params := ports.LedgerListParams{
		SellerID: sellerID,
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", defaultPageSize),
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > maxPageSize {
		params.PageSize = defaultPageSize
	}

	if currencyStr := c.Query("currency"); currencyStr != "" {
		currency := domain.Currency(currencyStr)
		if !currency.IsSupported() {
			response.Error(c, apperror.ErrUnsupportedCurrency(currencyStr))
			return
		}
		params.Currency = &currency
	}

	if dirStr := c.Query("direction"); dirStr != "" {
		direction := domain.LedgerDirection(dirStr)
		if direction != domain.LedgerDirectionCredit && direction != domain.LedgerDirectionDebit {
			response.Error(c, apperror.Validation("invalid direction filter"))
			return
		}
		params.Direction = &direction
	}

	for name, dst := range map[string]**int64{"from": &params.From, "to": &params.To} {
		if raw := c.Query(name); raw != "" {
			ts, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				response.Error(c, apperror.Validation("invalid "+name+" timestamp"))
				return
			}
			*dst = &ts
		}
	}

	entries, total, err := h.reportingSvc.ListLedger(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.LedgerListResponse{
		Items:      make([]dto.LedgerEntryResponse, 0, len(entries)),
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages(total, params.PageSize),
	}
	for i := range entries {
		resp.Items = append(resp.Items, toLedgerEntryResponse(&entries[i]))
	}
	response.OK(c, resp)
}

// Reconcile handles GET /api/v1/ledger/reconcile?currency=AOA.
func (h *LedgerHandler) Reconcile(c *gin.Context) {
	sellerID, ok := sellerFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	currency := domain.Currency(c.Query("currency"))
	report, err := h.reportingSvc.Reconcile(c.Request.Context(), sellerID, currency)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ReconcileResponse{
		SellerID:      report.SellerID.String(),
		Currency:      string(report.Currency),
		WalletBalance: report.WalletBalance,
		LedgerBalance: report.LedgerBalance,
		Credits:       report.Credits,
		Debits:        report.Debits,
		Drift:         report.Drift,
	})
}
