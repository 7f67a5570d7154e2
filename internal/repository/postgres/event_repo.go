package postgres

import (
	"context"
	"database/sql"
	"errors"

	"web3events/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

// NewEventRepository returns a domain.EventRepository backed by the events
// mirror table.
func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

const eventColumns = `
	id, ledger_id, creator_address, title, description, location,
	starts_at, ends_at, capacity, is_free, price, is_private,
	requires_approval, banner_url, nft_image_url, poap_image_url,
	created_at, updated_at
`

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (
			ledger_id, creator_address, title, description, location,
			starts_at, ends_at, capacity, is_free, price, is_private,
			requires_approval, banner_url, nft_image_url, poap_image_url,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.LedgerID, e.CreatorAddress, e.Title, e.Description, e.Location,
		e.StartsAt, e.EndsAt, e.Capacity, e.IsFree, e.Price, e.IsPrivate,
		e.RequiresApproval, e.BannerURL, e.NFTImageURL, e.POAPImageURL,
		e.CreatedAt, e.UpdatedAt,
	).Scan(&e.MirrorID)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

func (r *eventRepository) GetByMirrorID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) GetByLedgerID(ctx context.Context, ledgerID string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE ledger_id = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, ledgerID))
}

func (r *eventRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		ORDER BY starts_at DESC NULLS LAST, created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, params.Limit(), params.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) CountAll(ctx context.Context) (int, error) {
	var total int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&total)
	return total, err
}

// Upsert writes a ledger-derived row, replacing any existing mirror of the
// same ledger object. Ledger state wins over whatever the mirror held.
func (r *eventRepository) Upsert(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (
			ledger_id, creator_address, title, description, location,
			starts_at, ends_at, capacity, is_free, price, is_private,
			requires_approval, banner_url, nft_image_url, poap_image_url,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (ledger_id) DO UPDATE SET
			creator_address = EXCLUDED.creator_address,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			location = EXCLUDED.location,
			starts_at = EXCLUDED.starts_at,
			ends_at = EXCLUDED.ends_at,
			capacity = EXCLUDED.capacity,
			is_free = EXCLUDED.is_free,
			price = EXCLUDED.price,
			is_private = EXCLUDED.is_private,
			requires_approval = EXCLUDED.requires_approval,
			banner_url = EXCLUDED.banner_url,
			nft_image_url = EXCLUDED.nft_image_url,
			poap_image_url = EXCLUDED.poap_image_url,
			updated_at = NOW()
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.LedgerID, e.CreatorAddress, e.Title, e.Description, e.Location,
		e.StartsAt, e.EndsAt, e.Capacity, e.IsFree, e.Price, e.IsPrivate,
		e.RequiresApproval, e.BannerURL, e.NFTImageURL, e.POAPImageURL,
		e.CreatedAt, e.UpdatedAt,
	).Scan(&e.MirrorID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *eventRepository) scanOne(row *sql.Row) (*domain.Event, error) {
	e, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) scanRow(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{Registered: []string{}, Attended: []string{}}
	var startsNull, endsNull sql.NullTime
	var descNull, locNull, bannerNull, nftNull, poapNull sql.NullString
	err := row.Scan(
		&e.MirrorID, &e.LedgerID, &e.CreatorAddress, &e.Title, &descNull, &locNull,
		&startsNull, &endsNull, &e.Capacity, &e.IsFree, &e.Price, &e.IsPrivate,
		&e.RequiresApproval, &bannerNull, &nftNull, &poapNull,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if startsNull.Valid {
		e.StartsAt = startsNull.Time
	}
	if endsNull.Valid {
		e.EndsAt = endsNull.Time
	}
	e.Description = descNull.String
	e.Location = locNull.String
	e.BannerURL = bannerNull.String
	e.NFTImageURL = nftNull.String
	e.POAPImageURL = poapNull.String
	return e, nil
}
