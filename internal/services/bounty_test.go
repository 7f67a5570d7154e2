package services

import (
	"context"
	"testing"

	"web3events/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBountyRepo implements domain.BountyRepository with a single row.
type fakeBountyRepo struct {
	bounty    *domain.Bounty
	getErr    error
	updateErr error
	updated   *domain.Bounty
}

func (f *fakeBountyRepo) Create(ctx context.Context, bounty *domain.Bounty) error {
	bounty.ID = "bounty-1"
	f.bounty = bounty
	return nil
}

func (f *fakeBountyRepo) GetByID(ctx context.Context, id string) (*domain.Bounty, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.bounty == nil {
		return nil, domain.ErrNotFound
	}
	cp := *f.bounty
	return &cp, nil
}

func (f *fakeBountyRepo) List(ctx context.Context, status string, params domain.PaginationParams) ([]*domain.Bounty, error) {
	if f.bounty == nil {
		return nil, nil
	}
	return []*domain.Bounty{f.bounty}, nil
}

func (f *fakeBountyRepo) Count(ctx context.Context, status string) (int, error) {
	if f.bounty == nil {
		return 0, nil
	}
	return 1, nil
}

func (f *fakeBountyRepo) Update(ctx context.Context, bounty *domain.Bounty, fromStatus string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.bounty == nil || f.bounty.Status != fromStatus {
		return domain.ErrConflict
	}
	f.bounty = bounty
	f.updated = bounty
	return nil
}

func openBounty() *domain.Bounty {
	return &domain.Bounty{
		ID:             "bounty-1",
		CreatorAddress: "0xposter",
		Title:          "Write docs",
		Reward:         "5000000",
		Status:         domain.BountyStatusOpen,
	}
}

func TestBountyService_CreateBounty(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := &fakeBountyRepo{}
		svc := NewBountyService(repo)
		b := &domain.Bounty{CreatorAddress: "0xposter", Title: "Write docs", Reward: "1"}

		require.NoError(t, svc.CreateBounty(context.Background(), b))
		assert.Equal(t, domain.BountyStatusOpen, b.Status)
		assert.Equal(t, "bounty-1", b.ID)
	})

	t.Run("requires title", func(t *testing.T) {
		svc := NewBountyService(&fakeBountyRepo{})
		err := svc.CreateBounty(context.Background(), &domain.Bounty{CreatorAddress: "0xposter"})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestBountyService_Lifecycle(t *testing.T) {
	repo := &fakeBountyRepo{bounty: openBounty()}
	svc := NewBountyService(repo)
	ctx := context.Background()

	claimed, err := svc.ClaimBounty(ctx, "bounty-1", "0xclaimant")
	require.NoError(t, err)
	assert.Equal(t, domain.BountyStatusClaimed, claimed.Status)
	assert.Equal(t, "0xclaimant", claimed.ClaimantAddress)

	proved, err := svc.SubmitProof(ctx, "bounty-1", "0xclaimant", "https://proof")
	require.NoError(t, err)
	assert.Equal(t, domain.BountyStatusProofSubmitted, proved.Status)
	assert.Equal(t, "https://proof", proved.ProofURL)

	resolved, err := svc.ResolveBounty(ctx, "bounty-1", "0xposter")
	require.NoError(t, err)
	assert.Equal(t, domain.BountyStatusResolved, resolved.Status)
}

func TestBountyService_ClaimBounty(t *testing.T) {
	t.Run("creator cannot claim own bounty", func(t *testing.T) {
		svc := NewBountyService(&fakeBountyRepo{bounty: openBounty()})
		_, err := svc.ClaimBounty(context.Background(), "bounty-1", "0xposter")
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("cannot claim a claimed bounty", func(t *testing.T) {
		b := openBounty()
		b.Status = domain.BountyStatusClaimed
		b.ClaimantAddress = "0xfirst"
		svc := NewBountyService(&fakeBountyRepo{bounty: b})

		_, err := svc.ClaimBounty(context.Background(), "bounty-1", "0xsecond")
		require.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("not found", func(t *testing.T) {
		svc := NewBountyService(&fakeBountyRepo{})
		_, err := svc.ClaimBounty(context.Background(), "bounty-1", "0xclaimant")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("lost write race surfaces conflict", func(t *testing.T) {
		svc := NewBountyService(&fakeBountyRepo{bounty: openBounty(), updateErr: domain.ErrConflict})
		_, err := svc.ClaimBounty(context.Background(), "bounty-1", "0xclaimant")
		require.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestBountyService_SubmitProof(t *testing.T) {
	claimedBounty := func() *domain.Bounty {
		b := openBounty()
		b.Status = domain.BountyStatusClaimed
		b.ClaimantAddress = "0xclaimant"
		return b
	}

	t.Run("only the claimant may submit", func(t *testing.T) {
		svc := NewBountyService(&fakeBountyRepo{bounty: claimedBounty()})
		_, err := svc.SubmitProof(context.Background(), "bounty-1", "0xother", "https://proof")
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("proof url required", func(t *testing.T) {
		svc := NewBountyService(&fakeBountyRepo{bounty: claimedBounty()})
		_, err := svc.SubmitProof(context.Background(), "bounty-1", "0xclaimant", "  ")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("cannot submit proof on an open bounty", func(t *testing.T) {
		b := openBounty()
		b.ClaimantAddress = "0xclaimant"
		svc := NewBountyService(&fakeBountyRepo{bounty: b})
		_, err := svc.SubmitProof(context.Background(), "bounty-1", "0xclaimant", "https://proof")
		require.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestBountyService_ResolveBounty(t *testing.T) {
	provedBounty := func() *domain.Bounty {
		b := openBounty()
		b.Status = domain.BountyStatusProofSubmitted
		b.ClaimantAddress = "0xclaimant"
		b.ProofURL = "https://proof"
		return b
	}

	t.Run("only the creator may resolve", func(t *testing.T) {
		svc := NewBountyService(&fakeBountyRepo{bounty: provedBounty()})
		_, err := svc.ResolveBounty(context.Background(), "bounty-1", "0xclaimant")
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("cannot resolve without proof", func(t *testing.T) {
		b := openBounty()
		b.Status = domain.BountyStatusClaimed
		svc := NewBountyService(&fakeBountyRepo{bounty: b})
		_, err := svc.ResolveBounty(context.Background(), "bounty-1", "0xposter")
		require.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("resolved is terminal", func(t *testing.T) {
		b := provedBounty()
		b.Status = domain.BountyStatusResolved
		svc := NewBountyService(&fakeBountyRepo{bounty: b})
		_, err := svc.ResolveBounty(context.Background(), "bounty-1", "0xposter")
		require.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}
