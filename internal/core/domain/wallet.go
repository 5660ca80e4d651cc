package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet is a seller's balance for one currency. Amounts are in minor
// units (int64). A wallet is materialized lazily on first credit; a
// missing row reads as zero balance.
//
// Balance holds everything the seller owns in this currency, including
// the Held portion reserved by pending withdrawal requests. The spendable
// amount is Available(). Invariants after any committed operation:
// Balance >= 0, 0 <= Held <= Balance.
type Wallet struct {
	ID        uuid.UUID `json:"id"`
	SellerID  uuid.UUID `json:"seller_id"`
	Currency  Currency  `json:"currency"`
	Balance   int64     `json:"balance"`
	Held      int64     `json:"held"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Available returns the spendable balance: total minus funds reserved by
// pending withdrawal requests.
func (w *Wallet) Available() int64 {
	return w.Balance - w.Held
}
