package parties

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerly/ledgerly/internal/shared"
)

// ListFilters narrows the party listing.
type ListFilters struct {
	Type   PartyType
	Search string
	Limit  int
	Offset int
}

type Repository interface {
	List(ctx context.Context, companyID int64, filters ListFilters) ([]Party, int, error)
	Get(ctx context.Context, companyID, id int64) (Party, error)
	Create(ctx context.Context, p Party) (Party, error)
	Update(ctx context.Context, p Party) error
	Delete(ctx context.Context, companyID, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const partyColumns = `id, company_id, type, name, contact, address, gst_number, created_at, updated_at`

func (r *repository) List(ctx context.Context, companyID int64, filters ListFilters) ([]Party, int, error) {
	where := ` FROM parties WHERE company_id = $1`
	args := []any{companyID}
	if filters.Type != "" {
		args = append(args, filters.Type)
		where += ` AND type = $` + strconv.Itoa(len(args))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (name ILIKE $` + n + ` OR contact ILIKE $` + n + `)`
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filters.Limit, filters.Offset)
	query := `SELECT ` + partyColumns + where +
		` ORDER BY name ASC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var parties []Party
	for rows.Next() {
		var p Party
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Type, &p.Name, &p.Contact, &p.Address, &p.GSTIN, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		parties = append(parties, p)
	}
	return parties, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (Party, error) {
	var p Party
	err := r.db.QueryRow(ctx, `SELECT `+partyColumns+` FROM parties WHERE company_id = $1 AND id = $2`, companyID, id,
	).Scan(&p.ID, &p.CompanyID, &p.Type, &p.Name, &p.Contact, &p.Address, &p.GSTIN, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Party{}, fmt.Errorf("%w: party %d", shared.ErrNotFound, id)
		}
		return Party{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, p Party) (Party, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO parties (company_id, type, name, contact, address, gst_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		p.CompanyID, p.Type, p.Name, p.Contact, p.Address, p.GSTIN,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Party{}, err
	}
	return p, nil
}

func (r *repository) Update(ctx context.Context, p Party) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE parties
		SET name = $3, contact = $4, address = $5, gst_number = $6, updated_at = NOW()
		WHERE company_id = $1 AND id = $2`,
		p.CompanyID, p.ID, p.Name, p.Contact, p.Address, p.GSTIN)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: party %d", shared.ErrNotFound, p.ID)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, companyID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM parties WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: party %d", shared.ErrNotFound, id)
	}
	return nil
}
