package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind classifies outbound seller notifications.
type NotificationKind string

const (
	NotificationWithdrawalApproved NotificationKind = "WITHDRAWAL_APPROVED"
	NotificationWithdrawalRejected NotificationKind = "WITHDRAWAL_REJECTED"
)

// NotificationEvent is the payload handed to the notification delivery
// system after a terminal withdrawal decision. Delivery and read-tracking
// live outside this service; we only enqueue.
type NotificationEvent struct {
	SellerID  uuid.UUID        `json:"seller_id"`
	Kind      NotificationKind `json:"kind"`
	Amount    int64            `json:"amount"`
	Currency  Currency         `json:"currency"`
	Reason    *string          `json:"reason,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
