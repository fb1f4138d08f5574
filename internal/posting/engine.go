package posting

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ledgerly/ledgerly/internal/ledger"
	"github.com/ledgerly/ledgerly/internal/shared"
)

// CreateInput carries the fields of a document mutation command. Kind decides
// which fields are meaningful; validation happens in ComputeSplit and here.
type CreateInput struct {
	Kind         DocumentKind
	Number       string
	Date         time.Time
	PartyID      *int64
	PartyName    string
	PartyContact string
	Category     string
	FinalAmount  float64
	PaymentType  PaymentMethod
	CashPaid     float64
	OnlinePaid   float64
	LoanFlow     LoanFlow
	BankID       *int64
	Remarks      string
}

// UpdateInput mirrors CreateInput for the update transition.
type UpdateInput = CreateInput

// Engine applies document mutations atomically across the four ledgers.
type Engine struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewEngine constructs the posting engine.
func NewEngine(repo Repository, logger *slog.Logger) *Engine {
	return &Engine{repo: repo, logger: logger, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (e *Engine) WithNow(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

// Create posts a new document and its ledger effects in one transaction.
func (e *Engine) Create(ctx context.Context, id shared.Identity, in CreateInput) (Document, error) {
	doc, split, err := e.buildDocument(id, in)
	if err != nil {
		return Document{}, err
	}
	err = e.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		docID, err := tx.InsertDocument(ctx, doc)
		if err != nil {
			return err
		}
		doc.ID = docID
		return e.post(ctx, tx, doc, split)
	})
	if err != nil {
		return Document{}, err
	}
	e.logger.Info("document posted",
		slog.String("kind", string(doc.Kind)),
		slog.Int64("id", doc.ID),
		slog.Int64("company_id", doc.CompanyID),
		slog.Float64("final_amount", doc.FinalAmount))
	return doc, nil
}

// Update reverses the document's previous ledger effects and reapplies the new
// composition, all in one transaction. The final balances are identical to
// deleting the document and recreating it with the new values.
func (e *Engine) Update(ctx context.Context, id shared.Identity, docID int64, in UpdateInput) (Document, error) {
	next, split, err := e.buildDocument(id, in)
	if err != nil {
		return Document{}, err
	}
	err = e.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetDocumentForUpdate(ctx, id.CompanyID, docID)
		if err != nil {
			return err
		}
		if current.Kind != next.Kind {
			return fmt.Errorf("%w: document kind cannot change", shared.ErrValidation)
		}
		if err := e.reverse(ctx, tx, current); err != nil {
			return err
		}
		next.ID = current.ID
		next.CreatedBy = current.CreatedBy
		if err := tx.UpdateDocument(ctx, next); err != nil {
			return err
		}
		return e.post(ctx, tx, next, split)
	})
	if err != nil {
		return Document{}, err
	}
	e.logger.Info("document updated",
		slog.String("kind", string(next.Kind)),
		slog.Int64("id", docID),
		slog.Int64("company_id", id.CompanyID))
	return next, nil
}

// Delete soft-deletes a document and reverses its financial impact.
func (e *Engine) Delete(ctx context.Context, id shared.Identity, docID int64) error {
	err := e.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetDocumentForUpdate(ctx, id.CompanyID, docID)
		if err != nil {
			return err
		}
		if err := tx.SoftDeleteDocument(ctx, id.CompanyID, docID); err != nil {
			return err
		}
		return e.reverse(ctx, tx, current)
	})
	if err != nil {
		return err
	}
	e.logger.Info("document deleted",
		slog.Int64("id", docID),
		slog.Int64("company_id", id.CompanyID))
	return nil
}

// Get returns one document scoped by company.
func (e *Engine) Get(ctx context.Context, id shared.Identity, docID int64) (Document, error) {
	return e.repo.GetDocument(ctx, id.CompanyID, docID)
}

// List returns a page of documents of one kind, newest first.
func (e *Engine) List(ctx context.Context, id shared.Identity, kind DocumentKind, page, perPage int) ([]Document, shared.Pagination, error) {
	p := shared.NewPagination(page, perPage, 0)
	docs, total, err := e.repo.ListDocuments(ctx, id.CompanyID, kind, p.PerPage, p.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return docs, shared.NewPagination(p.Page, p.PerPage, total), nil
}

func (e *Engine) buildDocument(id shared.Identity, in CreateInput) (Document, Split, error) {
	split, err := ComputeSplit(in.Kind, in.PaymentType, in.FinalAmount, in.CashPaid, in.OnlinePaid, in.BankID)
	if err != nil {
		return Document{}, Split{}, err
	}
	if split.Outstanding > 0 {
		if _, ok := in.Kind.CreditType(); !ok {
			return Document{}, Split{}, fmt.Errorf("%w: %s cannot carry outstanding", ErrInvalidPaymentType, in.Kind)
		}
	}
	date := in.Date
	if date.IsZero() {
		date = e.now()
	}
	doc := Document{
		CompanyID:    id.CompanyID,
		Kind:         in.Kind,
		Number:       in.Number,
		Date:         date,
		PartyID:      in.PartyID,
		PartyName:    in.PartyName,
		PartyContact: in.PartyContact,
		Category:     in.Category,
		FinalAmount:  in.FinalAmount,
		CashPaid:     split.Cash,
		OnlinePaid:   split.Online,
		AmountPaid:   split.Paid(),
		Outstanding:  split.Outstanding,
		PaymentType:  in.PaymentType,
		LoanFlow:     in.LoanFlow,
		BankID:       in.BankID,
		Remarks:      in.Remarks,
		CreatedBy:    id.UserID,
		ModifiedBy:   id.UserID,
	}
	if _, err := doc.Direction(); err != nil {
		return Document{}, Split{}, err
	}
	return doc, split, nil
}

// post writes the cash, bank and credit legs for a freshly inserted or
// updated document. The document row itself is already written.
func (e *Engine) post(ctx context.Context, tx TxRepository, doc Document, split Split) error {
	dir, err := doc.Direction()
	if err != nil {
		return err
	}
	ref := ledger.Reference{Kind: doc.Kind.RefKind(), ID: doc.ID}
	if split.Cash > 0 {
		if _, err := tx.AppendCash(ctx, ledger.CashAppend{
			CompanyID: doc.CompanyID,
			Direction: dir,
			Amount:    split.Cash,
			TxnDate:   doc.Date,
			Ref:       ref,
			Note:      doc.note(),
			Actor:     doc.ModifiedBy,
		}); err != nil {
			return err
		}
	}
	if split.Online > 0 {
		if doc.BankID == nil {
			return ErrBankRequired
		}
		if _, err := tx.AppendBank(ctx, ledger.BankAppend{
			CompanyID:   doc.CompanyID,
			BankID:      *doc.BankID,
			Direction:   dir,
			Amount:      split.Online,
			TxnDate:     doc.Date,
			Ref:         ref,
			Description: doc.note(),
			Actor:       doc.ModifiedBy,
		}); err != nil {
			return err
		}
	}
	if split.Outstanding > 0 {
		creditType, ok := doc.Kind.CreditType()
		if !ok {
			return fmt.Errorf("%w: %s cannot carry outstanding", ErrInvalidPaymentType, doc.Kind)
		}
		if _, err := tx.AppendCredit(ctx, ledger.CreditAppend{
			CompanyID: doc.CompanyID,
			Type:      creditType,
			PartyID:   doc.PartyID,
			Amount:    split.Outstanding,
			TxnDate:   doc.Date,
			Ref:       ref,
			Note:      doc.note(),
			Actor:     doc.ModifiedBy,
		}); err != nil {
			return err
		}
	}
	return nil
}

// reverse undoes the ledger effects of a previously posted document: restore
// the cash and bank balances by the inverse amounts, then soft-delete every
// ledger row carrying the document's reference.
func (e *Engine) reverse(ctx context.Context, tx TxRepository, doc Document) error {
	dir, err := doc.Direction()
	if err != nil {
		return err
	}
	if doc.CashPaid > 0 {
		if err := tx.AdjustCashBalance(ctx, doc.CompanyID, -dir.Signed(doc.CashPaid)); err != nil {
			return err
		}
	}
	if doc.OnlinePaid > 0 && doc.BankID != nil {
		if err := tx.AdjustBankBalance(ctx, doc.CompanyID, *doc.BankID, -dir.Signed(doc.OnlinePaid)); err != nil {
			return err
		}
	}
	return tx.ReverseReference(ctx, doc.CompanyID, ledger.Reference{Kind: doc.Kind.RefKind(), ID: doc.ID})
}

func (d Document) note() string {
	switch d.Kind {
	case KindExpense, KindIncome:
		label := d.Category
		if label == "" {
			label = d.PartyName
		}
		return fmt.Sprintf("%s: %s", d.Kind, label)
	case KindDirectorLoan:
		return fmt.Sprintf("Loan %s - %s", d.LoanFlow, d.Remarks)
	default:
		return fmt.Sprintf("%s %s", d.Kind, d.Number)
	}
}
