package domain

import (
	"time"

	"github.com/google/uuid"
)

// LedgerDirection is the sign of a ledger entry.
type LedgerDirection string

const (
	LedgerDirectionCredit LedgerDirection = "CREDIT"
	LedgerDirectionDebit  LedgerDirection = "DEBIT"
)

// LedgerSource identifies which subsystem produced an entry.
type LedgerSource string

const (
	LedgerSourceSale       LedgerSource = "SALE"
	LedgerSourceWithdrawal LedgerSource = "WITHDRAWAL"
)

// LedgerEntry is one row of the append-only money-movement history.
// Settlement writes credits keyed by sale transaction ID, the withdrawal
// lifecycle writes debits keyed by withdrawal ID. (Source, SourceID) is
// unique, which is what makes settlement idempotent at the storage layer.
type LedgerEntry struct {
	ID        uuid.UUID       `json:"id"`
	SellerID  uuid.UUID       `json:"seller_id"`
	Currency  Currency        `json:"currency"`
	Amount    int64           `json:"amount"`
	Direction LedgerDirection `json:"direction"`
	Source    LedgerSource    `json:"source"`
	SourceID  uuid.UUID       `json:"source_id"`
	CreatedAt time.Time       `json:"created_at"`
}

// Signed returns the entry amount with its direction applied.
func (e *LedgerEntry) Signed() int64 {
	if e.Direction == LedgerDirectionDebit {
		return -e.Amount
	}
	return e.Amount
}
