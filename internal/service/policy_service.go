package service

import (
	"context"
	"fmt"

	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/domain"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/ports"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PolicyServiceImpl implements ports.PolicyService. Sellers on a
// dedicated plan get the plan's policy; everyone else gets the universal
// default from configuration.
type PolicyServiceImpl struct {
	policyRepo    ports.PolicyRepository
	defaultPolicy domain.FeePolicy
	log           zerolog.Logger
}

// NewPolicyService creates a new PolicyServiceImpl. The default policy
// must already be validated at config load.
func NewPolicyService(policyRepo ports.PolicyRepository, defaultPolicy domain.FeePolicy, log zerolog.Logger) *PolicyServiceImpl {
	return &PolicyServiceImpl{
		policyRepo:    policyRepo,
		defaultPolicy: defaultPolicy,
		log:           log,
	}
}

// GetPolicy resolves the fee policy for a seller.
func (s *PolicyServiceImpl) GetPolicy(ctx context.Context, sellerID uuid.UUID) (domain.FeePolicy, error) {
	plan, err := s.policyRepo.GetBySellerID(ctx, sellerID)
	if err != nil {
		return domain.FeePolicy{}, apperror.InternalError(fmt.Errorf("load seller plan: %w", err))
	}
	if plan == nil {
		return s.defaultPolicy, nil
	}
	return *plan, nil
}
