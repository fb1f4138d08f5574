package posting

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerly/ledgerly/internal/ledger"
	"github.com/ledgerly/ledgerly/internal/platform/db"
)

// Repository encapsulates document persistence.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetDocument(ctx context.Context, companyID, id int64) (Document, error)
	ListDocuments(ctx context.Context, companyID int64, kind DocumentKind, limit, offset int) ([]Document, int, error)
}

// TxRepository exposes document writes plus the ledger store, so one
// transaction covers the document row and every ledger side effect.
type TxRepository interface {
	InsertDocument(ctx context.Context, doc Document) (int64, error)
	// GetDocumentForUpdate takes a row lock so concurrent reversals cannot
	// both compute against the same stale snapshot.
	GetDocumentForUpdate(ctx context.Context, companyID, id int64) (Document, error)
	UpdateDocument(ctx context.Context, doc Document) error
	SoftDeleteDocument(ctx context.Context, companyID, id int64) error

	ledger.TxStore
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed posting repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx, TxStore: ledger.NewTxStore(tx)})
	})
}

const documentColumns = `id, company_id, kind, doc_number, doc_date, party_id, party_name, party_contact, category,
final_amount, cash_paid, online_paid, amount_paid, outstanding, payment_type, loan_flow, bank_id, remarks,
created_by, modified_by, created_at, updated_at`

func scanDocument(row pgx.Row) (Document, error) {
	var d Document
	var loanFlow *string
	err := row.Scan(&d.ID, &d.CompanyID, &d.Kind, &d.Number, &d.Date, &d.PartyID, &d.PartyName, &d.PartyContact, &d.Category,
		&d.FinalAmount, &d.CashPaid, &d.OnlinePaid, &d.AmountPaid, &d.Outstanding, &d.PaymentType, &loanFlow, &d.BankID, &d.Remarks,
		&d.CreatedBy, &d.ModifiedBy, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return Document{}, err
	}
	if loanFlow != nil {
		d.LoanFlow = LoanFlow(*loanFlow)
	}
	return d, nil
}

func (r *repository) GetDocument(ctx context.Context, companyID, id int64) (Document, error) {
	row := r.db.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents
WHERE id=$1 AND company_id=$2 AND delete_status=0`, id, companyID)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrDocumentNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

func (r *repository) ListDocuments(ctx context.Context, companyID int64, kind DocumentKind, limit, offset int) ([]Document, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM documents WHERE company_id=$1 AND kind=$2 AND delete_status=0`,
		companyID, kind).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `SELECT `+documentColumns+` FROM documents
WHERE company_id=$1 AND kind=$2 AND delete_status=0
ORDER BY doc_date DESC, id DESC LIMIT $3 OFFSET $4`, companyID, kind, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, doc)
	}
	return docs, total, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
	ledger.TxStore
}

func (r *txRepository) InsertDocument(ctx context.Context, doc Document) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO documents
(company_id, kind, doc_number, doc_date, party_id, party_name, party_contact, category,
 final_amount, cash_paid, online_paid, amount_paid, outstanding, payment_type, loan_flow, bank_id, remarks,
 created_by, modified_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19) RETURNING id`,
		doc.CompanyID, doc.Kind, doc.Number, doc.Date, doc.PartyID, doc.PartyName, doc.PartyContact, doc.Category,
		doc.FinalAmount, doc.CashPaid, doc.OnlinePaid, doc.AmountPaid, doc.Outstanding, doc.PaymentType, nullLoanFlow(doc.LoanFlow), doc.BankID, doc.Remarks,
		doc.CreatedBy, doc.ModifiedBy).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *txRepository) GetDocumentForUpdate(ctx context.Context, companyID, id int64) (Document, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents
WHERE id=$1 AND company_id=$2 AND delete_status=0 FOR UPDATE`, id, companyID)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrDocumentNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

func (r *txRepository) UpdateDocument(ctx context.Context, doc Document) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE documents SET
doc_number=$3, doc_date=$4, party_id=$5, party_name=$6, party_contact=$7, category=$8,
final_amount=$9, cash_paid=$10, online_paid=$11, amount_paid=$12, outstanding=$13,
payment_type=$14, loan_flow=$15, bank_id=$16, remarks=$17, modified_by=$18, updated_at=NOW()
WHERE id=$1 AND company_id=$2 AND delete_status=0`,
		doc.ID, doc.CompanyID, doc.Number, doc.Date, doc.PartyID, doc.PartyName, doc.PartyContact, doc.Category,
		doc.FinalAmount, doc.CashPaid, doc.OnlinePaid, doc.AmountPaid, doc.Outstanding,
		doc.PaymentType, nullLoanFlow(doc.LoanFlow), doc.BankID, doc.Remarks, doc.ModifiedBy)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (r *txRepository) SoftDeleteDocument(ctx context.Context, companyID, id int64) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE documents SET delete_status=1, updated_at=NOW()
WHERE id=$1 AND company_id=$2 AND delete_status=0`, id, companyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func nullLoanFlow(flow LoanFlow) any {
	if flow == "" {
		return nil
	}
	return string(flow)
}
