package domain

import (
	"context"
	"time"
)

// Bounty lifecycle statuses. Transitions are enforced server-side:
// open -> claimed -> proof_submitted -> resolved.
const (
	BountyStatusOpen           = "open"
	BountyStatusClaimed        = "claimed"
	BountyStatusProofSubmitted = "proof_submitted"
	BountyStatusResolved       = "resolved"
)

// Bounty is a posted task with a reward, claimable by any identity other than
// its creator.
// swagger:model Bounty
type Bounty struct {
	ID              string    `json:"id"`
	CreatorAddress  string    `json:"creator_address"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Reward          string    `json:"reward"` // amount in smallest unit, as string
	Status          string    `json:"status"`
	ClaimantAddress string    `json:"claimant_address,omitempty"`
	ProofURL        string    `json:"proof_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewBounty returns an open Bounty. ID is set by the repository on create.
func NewBounty(creator, title, description, reward string, createdAt, updatedAt time.Time) *Bounty {
	return &Bounty{
		CreatorAddress: creator,
		Title:          title,
		Description:    description,
		Reward:         reward,
		Status:         BountyStatusOpen,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}
}

// CanTransition reports whether moving to next is allowed from the current
// status.
func (b *Bounty) CanTransition(next string) bool {
	switch b.Status {
	case BountyStatusOpen:
		return next == BountyStatusClaimed
	case BountyStatusClaimed:
		return next == BountyStatusProofSubmitted
	case BountyStatusProofSubmitted:
		return next == BountyStatusResolved
	default:
		return false
	}
}

// BountyRepository defines storage operations for bounties.
type BountyRepository interface {
	Create(ctx context.Context, bounty *Bounty) error
	GetByID(ctx context.Context, id string) (*Bounty, error)
	List(ctx context.Context, status string, params PaginationParams) ([]*Bounty, error)
	Count(ctx context.Context, status string) (int, error)
	// Update persists a lifecycle move and must fail with ErrConflict when
	// the stored status no longer equals fromStatus.
	Update(ctx context.Context, bounty *Bounty, fromStatus string) error
}

// BountyService enforces the bounty lifecycle.
type BountyService interface {
	CreateBounty(ctx context.Context, bounty *Bounty) error
	GetBounty(ctx context.Context, id string) (*Bounty, error)
	ListBounties(ctx context.Context, status string, params PaginationParams) ([]*Bounty, int, error)
	ClaimBounty(ctx context.Context, id, claimantAddress string) (*Bounty, error)
	SubmitProof(ctx context.Context, id, claimantAddress, proofURL string) (*Bounty, error)
	ResolveBounty(ctx context.Context, id, callerAddress string) (*Bounty, error)
}
