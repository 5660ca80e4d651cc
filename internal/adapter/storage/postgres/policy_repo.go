package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PolicyRepo implements ports.PolicyRepository over the seller_plans table.
type PolicyRepo struct {
	pool Pool
}

// NewPolicyRepo creates a new PolicyRepo.
func NewPolicyRepo(pool Pool) *PolicyRepo {
	return &PolicyRepo{pool: pool}
}

// GetBySellerID fetches the seller's plan. Returns nil, nil when the
// seller has no dedicated plan row; the caller falls back to the
// universal default policy.
func (r *PolicyRepo) GetBySellerID(ctx context.Context, sellerID uuid.UUID) (*domain.FeePolicy, error) {
	query := `SELECT fee_percent, minimum_withdrawal, processing_time_label, max_products
		FROM seller_plans WHERE seller_id = $1`

	p := &domain.FeePolicy{}
	err := r.pool.QueryRow(ctx, query, sellerID).Scan(
		&p.FeePercent, &p.MinimumWithdrawal, &p.ProcessingTimeLabel, &p.MaxProducts,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get seller plan: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("seller plan %s: %w", sellerID, err)
	}
	return p, nil
}
