package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerly/ledgerly/internal/platform/db"
)

// Repository exposes ledger reads plus the transactional store.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error
	CashBalance(ctx context.Context, companyID int64) (float64, error)
	ListCash(ctx context.Context, companyID int64, limit, offset int) ([]CashEntry, int, error)
	ListBank(ctx context.Context, companyID, bankID int64, limit, offset int) ([]BankEntry, int, error)
	ListCredit(ctx context.Context, companyID int64, creditType CreditType, limit, offset int) ([]CreditEntry, int, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed ledger repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, NewTxStore(tx))
	})
}

func (r *repository) CashBalance(ctx context.Context, companyID int64) (float64, error) {
	var balance float64
	err := r.db.QueryRow(ctx, `SELECT current_balance FROM cash_in_hand WHERE company_id=$1`, companyID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return balance, nil
}

func (r *repository) ListCash(ctx context.Context, companyID int64, limit, offset int) ([]CashEntry, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM cash_ledger WHERE company_id=$1 AND delete_status=0`, companyID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, company_id, type, amount, txn_date, reference_type, reference_id, note, created_by, created_at
FROM cash_ledger WHERE company_id=$1 AND delete_status=0
ORDER BY txn_date DESC, id DESC LIMIT $2 OFFSET $3`, companyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var entries []CashEntry
	for rows.Next() {
		var e CashEntry
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.Direction, &e.Amount, &e.TxnDate, &e.RefKind, &e.RefID, &e.Note, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

func (r *repository) ListBank(ctx context.Context, companyID, bankID int64, limit, offset int) ([]BankEntry, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bank_ledger WHERE company_id=$1 AND bank_id=$2 AND delete_status=0`, companyID, bankID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, company_id, bank_id, type, amount, txn_date, module, reference_id, description, created_by, created_at
FROM bank_ledger WHERE company_id=$1 AND bank_id=$2 AND delete_status=0
ORDER BY txn_date DESC, id DESC LIMIT $3 OFFSET $4`, companyID, bankID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var entries []BankEntry
	for rows.Next() {
		var e BankEntry
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.BankID, &e.Direction, &e.Amount, &e.TxnDate, &e.RefKind, &e.RefID, &e.Description, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

func (r *repository) ListCredit(ctx context.Context, companyID int64, creditType CreditType, limit, offset int) ([]CreditEntry, int, error) {
	where := `company_id=$1 AND delete_status=0`
	args := []any{companyID}
	if creditType != "" {
		where += ` AND type=$2`
		args = append(args, creditType)
	}
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM credit_ledger WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	listArgs := append(args, limit, offset)
	limitPos := len(args) + 1
	query := fmt.Sprintf(`SELECT id, company_id, type, party_id, amount, txn_date, reference_type, reference_id, note, created_by, created_at
FROM credit_ledger WHERE %s ORDER BY txn_date DESC, id DESC LIMIT $%d OFFSET $%d`, where, limitPos, limitPos+1)
	rows, err := r.db.Query(ctx, query, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var entries []CreditEntry
	for rows.Next() {
		var e CreditEntry
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.Type, &e.PartyID, &e.Amount, &e.TxnDate, &e.RefKind, &e.RefID, &e.Note, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
