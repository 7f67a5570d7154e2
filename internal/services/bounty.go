package services

import (
	"context"
	"fmt"
	"strings"

	"web3events/internal/domain"
)

type bountyService struct {
	bountyRepo domain.BountyRepository
}

// NewBountyService creates a BountyService enforcing the lifecycle
// open -> claimed -> proof_submitted -> resolved.
func NewBountyService(bountyRepo domain.BountyRepository) domain.BountyService {
	return &bountyService{bountyRepo: bountyRepo}
}

func (s *bountyService) CreateBounty(ctx context.Context, bounty *domain.Bounty) error {
	if strings.TrimSpace(bounty.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if bounty.CreatorAddress == "" {
		return fmt.Errorf("%w: creator address is required", domain.ErrInvalidInput)
	}
	bounty.Status = domain.BountyStatusOpen
	if err := s.bountyRepo.Create(ctx, bounty); err != nil {
		return fmt.Errorf("create bounty: %w", err)
	}
	return nil
}

func (s *bountyService) GetBounty(ctx context.Context, id string) (*domain.Bounty, error) {
	bounty, err := s.bountyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return bounty, nil
}

func (s *bountyService) ListBounties(ctx context.Context, status string, params domain.PaginationParams) ([]*domain.Bounty, int, error) {
	bounties, err := s.bountyRepo.List(ctx, status, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list bounties: %w", err)
	}
	total, err := s.bountyRepo.Count(ctx, status)
	if err != nil {
		return nil, 0, fmt.Errorf("count bounties: %w", err)
	}
	return bounties, total, nil
}

func (s *bountyService) ClaimBounty(ctx context.Context, id, claimantAddress string) (*domain.Bounty, error) {
	bounty, err := s.bountyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if claimantAddress == "" {
		return nil, fmt.Errorf("%w: claimant address is required", domain.ErrInvalidInput)
	}
	if claimantAddress == bounty.CreatorAddress {
		return nil, fmt.Errorf("%w: creator cannot claim own bounty", domain.ErrForbidden)
	}
	if !bounty.CanTransition(domain.BountyStatusClaimed) {
		return nil, domain.ErrInvalidTransition
	}
	from := bounty.Status
	bounty.Status = domain.BountyStatusClaimed
	bounty.ClaimantAddress = claimantAddress
	if err := s.bountyRepo.Update(ctx, bounty, from); err != nil {
		return nil, fmt.Errorf("claim bounty: %w", err)
	}
	return bounty, nil
}

func (s *bountyService) SubmitProof(ctx context.Context, id, claimantAddress, proofURL string) (*domain.Bounty, error) {
	bounty, err := s.bountyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if claimantAddress == "" || claimantAddress != bounty.ClaimantAddress {
		return nil, domain.ErrForbidden
	}
	if strings.TrimSpace(proofURL) == "" {
		return nil, fmt.Errorf("%w: proof url is required", domain.ErrInvalidInput)
	}
	if !bounty.CanTransition(domain.BountyStatusProofSubmitted) {
		return nil, domain.ErrInvalidTransition
	}
	from := bounty.Status
	bounty.Status = domain.BountyStatusProofSubmitted
	bounty.ProofURL = proofURL
	if err := s.bountyRepo.Update(ctx, bounty, from); err != nil {
		return nil, fmt.Errorf("submit proof: %w", err)
	}
	return bounty, nil
}

func (s *bountyService) ResolveBounty(ctx context.Context, id, callerAddress string) (*domain.Bounty, error) {
	bounty, err := s.bountyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if callerAddress == "" || callerAddress != bounty.CreatorAddress {
		return nil, domain.ErrForbidden
	}
	if !bounty.CanTransition(domain.BountyStatusResolved) {
		return nil, domain.ErrInvalidTransition
	}
	from := bounty.Status
	bounty.Status = domain.BountyStatusResolved
	if err := s.bountyRepo.Update(ctx, bounty, from); err != nil {
		return nil, fmt.Errorf("resolve bounty: %w", err)
	}
	return bounty, nil
}
