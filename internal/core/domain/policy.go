package domain

import "fmt"

// FeePolicy is the per-seller withdrawal policy: fee percentage, minimum
// withdrawal amount and a descriptive processing-time label. MaxProducts
// belongs to the seller's plan and is carried here because the plan is
// one record, but it plays no role in withdrawal evaluation.
//
// Read-only at withdrawal-evaluation time; never mutated by the
// withdrawal lifecycle.
type FeePolicy struct {
	FeePercent          int64  `json:"fee_percent"`
	MinimumWithdrawal   int64  `json:"minimum_withdrawal"`
	ProcessingTimeLabel string `json:"processing_time_label"`
	MaxProducts         int    `json:"max_products"`
}

// Validate checks the policy fields at load time.
func (p FeePolicy) Validate() error {
	if p.FeePercent < 0 || p.FeePercent > 100 {
		return fmt.Errorf("fee_percent must be within [0, 100], got %d", p.FeePercent)
	}
	if p.MinimumWithdrawal < 0 {
		return fmt.Errorf("minimum_withdrawal must be >= 0, got %d", p.MinimumWithdrawal)
	}
	if p.MaxProducts < 0 {
		return fmt.Errorf("max_products must be >= 0, got %d", p.MaxProducts)
	}
	return nil
}
