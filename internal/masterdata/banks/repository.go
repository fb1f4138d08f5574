package banks

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerly/ledgerly/internal/shared"
)

type Repository interface {
	List(ctx context.Context, companyID int64) ([]Bank, error)
	Get(ctx context.Context, companyID, id int64) (Bank, error)
	Create(ctx context.Context, b Bank) (Bank, error)
	Update(ctx context.Context, b Bank) error
	SoftDelete(ctx context.Context, companyID, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const bankColumns = `id, company_id, bank_name, account_number, holder_name, ifsc_code, account_balance, created_at, updated_at`

func (r *repository) List(ctx context.Context, companyID int64) ([]Bank, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+bankColumns+`
		FROM bank_accounts
		WHERE company_id = $1 AND delete_status = 0
		ORDER BY bank_name ASC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var banks []Bank
	for rows.Next() {
		var b Bank
		if err := rows.Scan(&b.ID, &b.CompanyID, &b.Name, &b.AccountNumber, &b.HolderName, &b.IFSC, &b.AccountBalance, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		banks = append(banks, b)
	}
	return banks, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (Bank, error) {
	var b Bank
	err := r.db.QueryRow(ctx, `
		SELECT `+bankColumns+`
		FROM bank_accounts
		WHERE company_id = $1 AND id = $2 AND delete_status = 0`, companyID, id,
	).Scan(&b.ID, &b.CompanyID, &b.Name, &b.AccountNumber, &b.HolderName, &b.IFSC, &b.AccountBalance, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Bank{}, fmt.Errorf("%w: bank %d", shared.ErrNotFound, id)
		}
		return Bank{}, err
	}
	return b, nil
}

func (r *repository) Create(ctx context.Context, b Bank) (Bank, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO bank_accounts (company_id, bank_name, account_number, holder_name, ifsc_code, account_balance, opening_balance, delete_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6, 0, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		b.CompanyID, b.Name, b.AccountNumber, b.HolderName, b.IFSC, fmt.Sprintf("%.2f", b.AccountBalance),
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return Bank{}, err
	}
	return b, nil
}

// Update changes account details only. The balance belongs to the ledger.
func (r *repository) Update(ctx context.Context, b Bank) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE bank_accounts
		SET bank_name = $3, account_number = $4, holder_name = $5, ifsc_code = $6, updated_at = NOW()
		WHERE company_id = $1 AND id = $2 AND delete_status = 0`,
		b.CompanyID, b.ID, b.Name, b.AccountNumber, b.HolderName, b.IFSC)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: bank %d", shared.ErrNotFound, b.ID)
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, companyID, id int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE bank_accounts
		SET delete_status = 1, updated_at = NOW()
		WHERE company_id = $1 AND id = $2 AND delete_status = 0`, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: bank %d", shared.ErrNotFound, id)
	}
	return nil
}
