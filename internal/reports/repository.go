package reports

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerly/ledgerly/internal/posting"
)

type Repository interface {
	CashInHand(ctx context.Context, companyID int64) (float64, error)
	TotalBankBalance(ctx context.Context, companyID int64) (float64, error)
	TotalOutstanding(ctx context.Context, companyID int64, kind posting.DocumentKind) (float64, error)
	DocumentTotals(ctx context.Context, companyID int64, from, to time.Time) (sales, purchases, expenses, income float64, err error)
	CashFlow(ctx context.Context, companyID int64, from, to time.Time) (in, out float64, err error)
	BankFlow(ctx context.Context, companyID int64, from, to time.Time) (in, out float64, err error)
	BankBalances(ctx context.Context, companyID int64) ([]BankBalance, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) CashInHand(ctx context.Context, companyID int64) (float64, error) {
	var balance float64
	err := r.db.QueryRow(ctx,
		`SELECT current_balance FROM cash_in_hand WHERE company_id = $1`, companyID,
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return balance, err
}

func (r *repository) TotalBankBalance(ctx context.Context, companyID int64) (float64, error) {
	var total float64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(account_balance), 0)
		FROM bank_accounts
		WHERE company_id = $1 AND delete_status = 0`, companyID,
	).Scan(&total)
	return total, err
}

// TotalOutstanding sums open balances over live documents of one kind. The
// credit ledger has rows too, but the document is the source of truth for how
// much remains unpaid.
func (r *repository) TotalOutstanding(ctx context.Context, companyID int64, kind posting.DocumentKind) (float64, error) {
	var total float64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(outstanding), 0)
		FROM documents
		WHERE company_id = $1 AND kind = $2 AND delete_status = 0 AND outstanding > 0`,
		companyID, kind,
	).Scan(&total)
	return total, err
}

func (r *repository) DocumentTotals(ctx context.Context, companyID int64, from, to time.Time) (sales, purchases, expenses, income float64, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(final_amount) FILTER (WHERE kind = 'Sale'), 0),
			COALESCE(SUM(final_amount) FILTER (WHERE kind = 'Purchase'), 0),
			COALESCE(SUM(final_amount) FILTER (WHERE kind = 'Expense'), 0),
			COALESCE(SUM(final_amount) FILTER (WHERE kind = 'Income'), 0)
		FROM documents
		WHERE company_id = $1 AND delete_status = 0
		  AND doc_date >= $2 AND doc_date <= $3`,
		companyID, from, to,
	).Scan(&sales, &purchases, &expenses, &income)
	return
}

func (r *repository) CashFlow(ctx context.Context, companyID int64, from, to time.Time) (in, out float64, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'Credit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'Debit'), 0)
		FROM cash_ledger
		WHERE company_id = $1 AND delete_status = 0
		  AND txn_date >= $2 AND txn_date <= $3`,
		companyID, from, to,
	).Scan(&in, &out)
	return
}

func (r *repository) BankFlow(ctx context.Context, companyID int64, from, to time.Time) (in, out float64, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'Credit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'Debit'), 0)
		FROM bank_ledger
		WHERE company_id = $1 AND delete_status = 0
		  AND txn_date >= $2 AND txn_date <= $3`,
		companyID, from, to,
	).Scan(&in, &out)
	return
}

func (r *repository) BankBalances(ctx context.Context, companyID int64) ([]BankBalance, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, bank_name, account_balance
		FROM bank_accounts
		WHERE company_id = $1 AND delete_status = 0
		ORDER BY bank_name ASC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []BankBalance
	for rows.Next() {
		var b BankBalance
		if err := rows.Scan(&b.BankID, &b.Name, &b.Balance); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}
