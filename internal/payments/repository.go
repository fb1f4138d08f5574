package payments

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerly/ledgerly/internal/ledger"
	"github.com/ledgerly/ledgerly/internal/platform/db"
	"github.com/ledgerly/ledgerly/internal/posting"
)

// Repository encapsulates payment persistence.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	OutstandingByParty(ctx context.Context, companyID int64, kind posting.DocumentKind) ([]OutstandingParty, error)
	ListPayments(ctx context.Context, companyID int64, side Side, limit, offset int) ([]Payment, int, error)
}

// TxRepository exposes allocation writes plus the ledger store.
type TxRepository interface {
	// ListOpenDocumentsForUpdate locks and returns the party's documents with
	// outstanding > 0 in FIFO order: document date ascending, id ascending.
	ListOpenDocumentsForUpdate(ctx context.Context, companyID int64, kind posting.DocumentKind, party PartyMatch) ([]OpenDocument, error)
	// SettleDocument moves pay from outstanding to amount_paid, keeping
	// amount_paid + outstanding == final_amount.
	SettleDocument(ctx context.Context, companyID, docID int64, pay float64) error
	InsertPayment(ctx context.Context, p Payment) (int64, error)

	ledger.TxStore
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed payments repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx, TxStore: ledger.NewTxStore(tx)})
	})
}

func (r *repository) OutstandingByParty(ctx context.Context, companyID int64, kind posting.DocumentKind) ([]OutstandingParty, error) {
	rows, err := r.db.Query(ctx, `SELECT party_id, party_name, party_contact, SUM(final_amount), SUM(outstanding)
FROM documents
WHERE company_id=$1 AND kind=$2 AND delete_status=0
GROUP BY party_id, party_name, party_contact
HAVING SUM(outstanding) > 0
ORDER BY SUM(outstanding) DESC`, companyID, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var parties []OutstandingParty
	for rows.Next() {
		var p OutstandingParty
		if err := rows.Scan(&p.PartyID, &p.Name, &p.Contact, &p.Total, &p.Outstanding); err != nil {
			return nil, err
		}
		parties = append(parties, p)
	}
	return parties, rows.Err()
}

func (r *repository) ListPayments(ctx context.Context, companyID int64, side Side, limit, offset int) ([]Payment, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments WHERE company_id=$1 AND side=$2`, companyID, side).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, company_id, side, party_id, party_name, party_contact, amount, payment_type, bank_id, created_by, created_at
FROM payments WHERE company_id=$1 AND side=$2 ORDER BY id DESC LIMIT $3 OFFSET $4`, companyID, side, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Side, &p.PartyID, &p.PartyName, &p.PartyContact, &p.Amount, &p.Method, &p.BankID, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
	ledger.TxStore
}

func (r *txRepository) ListOpenDocumentsForUpdate(ctx context.Context, companyID int64, kind posting.DocumentKind, party PartyMatch) ([]OpenDocument, error) {
	query := `SELECT id, doc_date, outstanding FROM documents
WHERE company_id=$1 AND kind=$2 AND delete_status=0 AND outstanding > 0`
	args := []any{companyID, kind}
	if party.PartyID != nil {
		query += ` AND party_id=$3`
		args = append(args, *party.PartyID)
	} else {
		query += ` AND party_name=$3 AND party_contact=$4`
		args = append(args, party.Name, party.Contact)
	}
	query += ` ORDER BY doc_date ASC, id ASC FOR UPDATE`

	rows, err := r.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []OpenDocument
	for rows.Next() {
		var d OpenDocument
		if err := rows.Scan(&d.ID, &d.Date, &d.Outstanding); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *txRepository) SettleDocument(ctx context.Context, companyID, docID int64, pay float64) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE documents
SET outstanding = outstanding - $3, amount_paid = amount_paid + $3, updated_at = NOW()
WHERE id=$1 AND company_id=$2 AND delete_status=0 AND outstanding >= $3`, docID, companyID, pay)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return posting.ErrDocumentNotFound
	}
	return nil
}

func (r *txRepository) InsertPayment(ctx context.Context, p Payment) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO payments
(company_id, side, party_id, party_name, party_contact, amount, payment_type, bank_id, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`,
		p.CompanyID, p.Side, p.PartyID, p.PartyName, p.PartyContact, p.Amount, p.Method, p.BankID, p.CreatedBy).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}
