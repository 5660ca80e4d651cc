package domain

import (
	"time"

	"github.com/google/uuid"
)

// WithdrawalStatus represents the lifecycle state of a withdrawal request.
type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "PENDING"
	WithdrawalStatusApproved WithdrawalStatus = "APPROVED"
	WithdrawalStatusRejected WithdrawalStatus = "REJECTED"
	WithdrawalStatusCanceled WithdrawalStatus = "CANCELED"
)

// WithdrawalRequest is a seller-initiated instruction to remove funds
// from a wallet, subject to operator approval. The fee is absorbed in the
// requested amount: on approval the wallet is debited exactly
// RequestedAmount and the seller's payout is PayoutAmount().
//
// State machine: PENDING -> APPROVED | REJECTED (operator decision) or
// PENDING -> CANCELED (seller). Terminal states are immutable except for
// UpdatedAt. While PENDING, RequestedAmount is held on the wallet.
type WithdrawalRequest struct {
	ID              uuid.UUID        `json:"id"`
	SellerID        uuid.UUID        `json:"seller_id"`
	Currency        Currency         `json:"currency"`
	RequestedAmount int64            `json:"requested_amount"`
	FeeAmount       int64            `json:"fee_amount"`
	Status          WithdrawalStatus `json:"status"`
	RejectionReason *string          `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// IsTerminal returns true once the request has been decided or canceled.
func (w *WithdrawalRequest) IsTerminal() bool {
	return w.Status != WithdrawalStatusPending
}

// PayoutAmount returns what the seller actually receives: the requested
// amount net of the platform fee.
func (w *WithdrawalRequest) PayoutAmount() int64 {
	return w.RequestedAmount - w.FeeAmount
}

// WithdrawalFee computes the platform fee for a requested amount at the
// given percentage, rounded half-up in minor units.
func WithdrawalFee(requestedAmount int64, feePercent int64) int64 {
	return (requestedAmount*feePercent + 50) / 100
}
