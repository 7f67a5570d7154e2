package postgres

import (
	"context"
	"testing"
	"time"

	"web3events/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bountyColumnNames = []string{
	"id", "creator_address", "title", "description", "reward", "status",
	"claimant_address", "proof_url", "created_at", "updated_at",
}

func TestBountyRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("success with null claimant and proof", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM bounties`).
			WithArgs("bounty-1").
			WillReturnRows(sqlmock.NewRows(bountyColumnNames).
				AddRow("bounty-1", "0xposter", "Write docs", "", "5000000", "open", nil, nil, now, now))

		repo := NewBountyRepository(db)
		b, err := repo.GetByID(ctx, "bounty-1")
		require.NoError(t, err)
		assert.Equal(t, domain.BountyStatusOpen, b.Status)
		assert.Empty(t, b.ClaimantAddress)
		assert.Empty(t, b.ProofURL)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM bounties`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(bountyColumnNames))

		repo := NewBountyRepository(db)
		_, err = repo.GetByID(ctx, "missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBountyRepository_Update(t *testing.T) {
	ctx := context.Background()

	claimed := &domain.Bounty{
		ID:              "bounty-1",
		Status:          domain.BountyStatusClaimed,
		ClaimantAddress: "0xhunter",
	}

	t.Run("transition from expected status", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`WHERE id = \$4 AND status = \$5`).
			WithArgs(domain.BountyStatusClaimed, "0xhunter", "", "bounty-1", domain.BountyStatusOpen).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewBountyRepository(db)
		require.NoError(t, repo.Update(ctx, claimed, domain.BountyStatusOpen))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lost race reports conflict", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		require.NoError(t, err)
		defer db.Close()

		// Another writer moved the bounty off "open" first, so the guarded
		// update matches no row.
		mock.ExpectExec(`WHERE id = \$4 AND status = \$5`).
			WithArgs(domain.BountyStatusClaimed, "0xhunter", "", "bounty-1", domain.BountyStatusOpen).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewBountyRepository(db)
		err = repo.Update(ctx, claimed, domain.BountyStatusOpen)
		require.ErrorIs(t, err, domain.ErrConflict)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
