package postgres

import (
	"context"
	"database/sql"
	"errors"

	"web3events/internal/domain"
)

type bountyRepository struct {
	DB *sql.DB
}

// NewBountyRepository returns a domain.BountyRepository implemented with Postgres.
func NewBountyRepository(db *sql.DB) domain.BountyRepository {
	return &bountyRepository{DB: db}
}

func (r *bountyRepository) Create(ctx context.Context, b *domain.Bounty) error {
	query := `
		INSERT INTO bounties (creator_address, title, description, reward, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		b.CreatorAddress, b.Title, b.Description, b.Reward, b.Status, b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID)
}

func (r *bountyRepository) GetByID(ctx context.Context, id string) (*domain.Bounty, error) {
	query := `
		SELECT id, creator_address, title, description, reward, status, claimant_address, proof_url, created_at, updated_at
		FROM bounties
		WHERE id = $1
	`
	b := &domain.Bounty{}
	var claimantNull, proofNull sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.CreatorAddress, &b.Title, &b.Description, &b.Reward, &b.Status,
		&claimantNull, &proofNull, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	b.ClaimantAddress = claimantNull.String
	b.ProofURL = proofNull.String
	return b, nil
}

func (r *bountyRepository) List(ctx context.Context, status string, params domain.PaginationParams) ([]*domain.Bounty, error) {
	query := `
		SELECT id, creator_address, title, description, reward, status, claimant_address, proof_url, created_at, updated_at
		FROM bounties
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, status, params.Limit(), params.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bounties := make([]*domain.Bounty, 0)
	for rows.Next() {
		b := &domain.Bounty{}
		var claimantNull, proofNull sql.NullString
		if err := rows.Scan(
			&b.ID, &b.CreatorAddress, &b.Title, &b.Description, &b.Reward, &b.Status,
			&claimantNull, &proofNull, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		b.ClaimantAddress = claimantNull.String
		b.ProofURL = proofNull.String
		bounties = append(bounties, b)
	}
	return bounties, rows.Err()
}

func (r *bountyRepository) Count(ctx context.Context, status string) (int, error) {
	var total int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bounties WHERE ($1 = '' OR status = $1)`, status,
	).Scan(&total)
	return total, err
}

// Update persists a lifecycle move. The WHERE clause re-checks the status the
// caller read before deciding the transition, so two concurrent transitions
// cannot both win.
func (r *bountyRepository) Update(ctx context.Context, b *domain.Bounty, fromStatus string) error {
	query := `
		UPDATE bounties
		SET status = $1, claimant_address = $2, proof_url = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5
	`
	result, err := r.DB.ExecContext(ctx, query, b.Status, b.ClaimantAddress, b.ProofURL, b.ID, fromStatus)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrConflict
	}
	return nil
}
