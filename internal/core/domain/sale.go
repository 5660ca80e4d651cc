package domain

import (
	"time"

	"github.com/google/uuid"
)

// SaleStatus represents the lifecycle state of a sale transaction.
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "PENDING"
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusFailed    SaleStatus = "FAILED"
)

// SaleTransaction is the record of a completed (or in-flight) sale as
// reported by the checkout flow. The settlement engine only acts on the
// transition into COMPLETED; everything else about the sale is owned by
// the checkout system.
type SaleTransaction struct {
	ID            uuid.UUID  `json:"id"`
	SellerID      uuid.UUID  `json:"seller_id"`
	BuyerEmail    string     `json:"buyer_email"`
	ProductID     *uuid.UUID `json:"product_id,omitempty"` // nil for manual adjustments
	Amount        int64      `json:"amount"`
	Currency      Currency   `json:"currency"`
	Status        SaleStatus `json:"status"`
	PaymentMethod string     `json:"payment_method"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsSettleable returns true if the sale qualifies for wallet credit.
func (s *SaleTransaction) IsSettleable() bool {
	return s.Status == SaleStatusCompleted && s.Amount > 0
}
