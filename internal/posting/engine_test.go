package posting

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledgerly/ledgerly/internal/ledger"
	"github.com/ledgerly/ledgerly/internal/shared"
)

type fakeCashRow struct {
	companyID int64
	direction ledger.Direction
	amount    float64
	ref       ledger.Reference
	deleted   bool
}

type fakeBankRow struct {
	companyID int64
	bankID    int64
	direction ledger.Direction
	amount    float64
	ref       ledger.Reference
	deleted   bool
}

type fakeCreditRow struct {
	companyID  int64
	creditType ledger.CreditType
	amount     float64
	ref        ledger.Reference
	deleted    bool
}

type bankKey struct {
	companyID int64
	bankID    int64
}

// memoryRepo implements Repository and TxRepository with copy-on-begin
// rollback so failed transactions leave no trace, like the real thing.
type memoryRepo struct {
	docs        map[int64]*Document
	nextID      int64
	cashRows    []fakeCashRow
	bankRows    []fakeBankRow
	creditRows  []fakeCreditRow
	cashBalance map[int64]float64
	bankBalance map[bankKey]float64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		docs:        make(map[int64]*Document),
		cashBalance: make(map[int64]float64),
		bankBalance: make(map[bankKey]float64),
	}
}

func (r *memoryRepo) addBank(companyID, bankID int64, balance float64) {
	r.bankBalance[bankKey{companyID, bankID}] = balance
}

func (r *memoryRepo) snapshot() *memoryRepo {
	s := newMemoryRepo()
	s.nextID = r.nextID
	for id, d := range r.docs {
		copied := *d
		s.docs[id] = &copied
	}
	s.cashRows = append([]fakeCashRow(nil), r.cashRows...)
	s.bankRows = append([]fakeBankRow(nil), r.bankRows...)
	s.creditRows = append([]fakeCreditRow(nil), r.creditRows...)
	for k, v := range r.cashBalance {
		s.cashBalance[k] = v
	}
	for k, v := range r.bankBalance {
		s.bankBalance[k] = v
	}
	return s
}

func (r *memoryRepo) restore(s *memoryRepo) {
	r.docs = s.docs
	r.nextID = s.nextID
	r.cashRows = s.cashRows
	r.bankRows = s.bankRows
	r.creditRows = s.creditRows
	r.cashBalance = s.cashBalance
	r.bankBalance = s.bankBalance
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	before := r.snapshot()
	if err := fn(ctx, r); err != nil {
		r.restore(before)
		return err
	}
	return nil
}

func (r *memoryRepo) GetDocument(ctx context.Context, companyID, id int64) (Document, error) {
	doc, ok := r.docs[id]
	if !ok || doc.Deleted || doc.CompanyID != companyID {
		return Document{}, ErrDocumentNotFound
	}
	return *doc, nil
}

func (r *memoryRepo) ListDocuments(ctx context.Context, companyID int64, kind DocumentKind, limit, offset int) ([]Document, int, error) {
	var docs []Document
	for _, d := range r.docs {
		if d.CompanyID == companyID && d.Kind == kind && !d.Deleted {
			docs = append(docs, *d)
		}
	}
	return docs, len(docs), nil
}

func (r *memoryRepo) InsertDocument(ctx context.Context, doc Document) (int64, error) {
	r.nextID++
	doc.ID = r.nextID
	r.docs[doc.ID] = &doc
	return doc.ID, nil
}

func (r *memoryRepo) GetDocumentForUpdate(ctx context.Context, companyID, id int64) (Document, error) {
	return r.GetDocument(ctx, companyID, id)
}

func (r *memoryRepo) UpdateDocument(ctx context.Context, doc Document) error {
	current, ok := r.docs[doc.ID]
	if !ok || current.Deleted || current.CompanyID != doc.CompanyID {
		return ErrDocumentNotFound
	}
	r.docs[doc.ID] = &doc
	return nil
}

func (r *memoryRepo) SoftDeleteDocument(ctx context.Context, companyID, id int64) error {
	doc, ok := r.docs[id]
	if !ok || doc.Deleted || doc.CompanyID != companyID {
		return ErrDocumentNotFound
	}
	doc.Deleted = true
	return nil
}

func (r *memoryRepo) AppendCash(ctx context.Context, in ledger.CashAppend) (int64, error) {
	r.cashRows = append(r.cashRows, fakeCashRow{
		companyID: in.CompanyID, direction: in.Direction, amount: in.Amount, ref: in.Ref,
	})
	r.cashBalance[in.CompanyID] += in.Direction.Signed(in.Amount)
	return int64(len(r.cashRows)), nil
}

func (r *memoryRepo) AppendBank(ctx context.Context, in ledger.BankAppend) (int64, error) {
	key := bankKey{in.CompanyID, in.BankID}
	if _, ok := r.bankBalance[key]; !ok {
		return 0, ledger.ErrBankNotFound
	}
	r.bankRows = append(r.bankRows, fakeBankRow{
		companyID: in.CompanyID, bankID: in.BankID, direction: in.Direction, amount: in.Amount, ref: in.Ref,
	})
	r.bankBalance[key] += in.Direction.Signed(in.Amount)
	return int64(len(r.bankRows)), nil
}

func (r *memoryRepo) AppendCredit(ctx context.Context, in ledger.CreditAppend) (int64, error) {
	r.creditRows = append(r.creditRows, fakeCreditRow{
		companyID: in.CompanyID, creditType: in.Type, amount: in.Amount, ref: in.Ref,
	})
	return int64(len(r.creditRows)), nil
}

func (r *memoryRepo) ReverseReference(ctx context.Context, companyID int64, ref ledger.Reference) error {
	for i := range r.cashRows {
		if r.cashRows[i].companyID == companyID && r.cashRows[i].ref == ref {
			r.cashRows[i].deleted = true
		}
	}
	for i := range r.bankRows {
		if r.bankRows[i].companyID == companyID && r.bankRows[i].ref == ref {
			r.bankRows[i].deleted = true
		}
	}
	for i := range r.creditRows {
		if r.creditRows[i].companyID == companyID && r.creditRows[i].ref == ref {
			r.creditRows[i].deleted = true
		}
	}
	return nil
}

func (r *memoryRepo) AdjustCashBalance(ctx context.Context, companyID int64, delta float64) error {
	if _, ok := r.cashBalance[companyID]; !ok {
		return ledger.ErrCashAccountNotFound
	}
	r.cashBalance[companyID] += delta
	return nil
}

func (r *memoryRepo) AdjustBankBalance(ctx context.Context, companyID, bankID int64, delta float64) error {
	key := bankKey{companyID, bankID}
	if _, ok := r.bankBalance[key]; !ok {
		return ledger.ErrBankNotFound
	}
	r.bankBalance[key] += delta
	return nil
}

func (r *memoryRepo) liveRows(ref ledger.Reference) (cash, bank, credit int) {
	for _, row := range r.cashRows {
		if row.ref == ref && !row.deleted {
			cash++
		}
	}
	for _, row := range r.bankRows {
		if row.ref == ref && !row.deleted {
			bank++
		}
	}
	for _, row := range r.creditRows {
		if row.ref == ref && !row.deleted {
			credit++
		}
	}
	return
}

var _ Repository = (*memoryRepo)(nil)
var _ TxRepository = (*memoryRepo)(nil)

func testEngine(repo *memoryRepo) *Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := NewEngine(repo, logger)
	engine.WithNow(func() time.Time {
		return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	})
	return engine
}

var testIdentity = shared.Identity{UserID: 11, CompanyID: 1, Role: "owner"}

func TestEngineCreateMixedSale(t *testing.T) {
	repo := newMemoryRepo()
	repo.cashBalance[1] = 0
	repo.addBank(1, 7, 5000)
	engine := testEngine(repo)

	doc, err := engine.Create(context.Background(), testIdentity, CreateInput{
		Kind:        KindSale,
		Number:      "INV-001",
		FinalAmount: 1000,
		PaymentType: PayMixed,
		CashPaid:    400,
		OnlinePaid:  300,
		BankID:      int64Ptr(7),
		PartyName:   "Acme Traders",
	})
	require.NoError(t, err)

	require.Equal(t, 400.0, doc.CashPaid)
	require.Equal(t, 300.0, doc.OnlinePaid)
	require.Equal(t, 700.0, doc.AmountPaid)
	require.Equal(t, 300.0, doc.Outstanding)
	require.InDelta(t, doc.FinalAmount, doc.AmountPaid+doc.Outstanding, 1e-9)

	require.Equal(t, 400.0, repo.cashBalance[1])
	require.Equal(t, 5300.0, repo.bankBalance[bankKey{1, 7}])

	cash, bank, credit := repo.liveRows(ledger.Reference{Kind: ledger.RefSale, ID: doc.ID})
	require.Equal(t, 1, cash)
	require.Equal(t, 1, bank)
	require.Equal(t, 1, credit)
	require.Equal(t, ledger.CreditCustomer, repo.creditRows[0].creditType)
	require.Equal(t, 300.0, repo.creditRows[0].amount)
}

func TestEngineCreateOutflows(t *testing.T) {
	repo := newMemoryRepo()
	repo.cashBalance[1] = 1000
	repo.addBank(1, 7, 2000)
	engine := testEngine(repo)

	_, err := engine.Create(context.Background(), testIdentity, CreateInput{
		Kind: KindPurchase, FinalAmount: 600, PaymentType: PayCash,
	})
	require.NoError(t, err)
	require.Equal(t, 400.0, repo.cashBalance[1])

	_, err = engine.Create(context.Background(), testIdentity, CreateInput{
		Kind: KindExpense, FinalAmount: 500, PaymentType: PayOnline, BankID: int64Ptr(7), Category: "Rent",
	})
	require.NoError(t, err)
	require.Equal(t, 1500.0, repo.bankBalance[bankKey{1, 7}])

	_, err = engine.Create(context.Background(), testIdentity, CreateInput{
		Kind: KindDirectorLoan, FinalAmount: 300, PaymentType: PayCash, LoanFlow: LoanReceived,
	})
	require.NoError(t, err)
	require.Equal(t, 700.0, repo.cashBalance[1])
}

func TestEngineDeleteReversesEffects(t *testing.T) {
	repo := newMemoryRepo()
	repo.cashBalance[1] = 100
	repo.addBank(1, 7, 5000)
	engine := testEngine(repo)

	doc, err := engine.Create(context.Background(), testIdentity, CreateInput{
		Kind: KindSale, FinalAmount: 1000, PaymentType: PayMixed,
		CashPaid: 400, OnlinePaid: 300, BankID: int64Ptr(7),
	})
	require.NoError(t, err)

	require.NoError(t, engine.Delete(context.Background(), testIdentity, doc.ID))

	require.Equal(t, 100.0, repo.cashBalance[1])
	require.Equal(t, 5000.0, repo.bankBalance[bankKey{1, 7}])
	cash, bank, credit := repo.liveRows(ledger.Reference{Kind: ledger.RefSale, ID: doc.ID})
	require.Zero(t, cash)
	require.Zero(t, bank)
	require.Zero(t, credit)

	_, err = engine.Get(context.Background(), testIdentity, doc.ID)
	require.ErrorIs(t, err, ErrDocumentNotFound)

	// second delete finds nothing to reverse
	err = engine.Delete(context.Background(), testIdentity, doc.ID)
	require.ErrorIs(t, err, ErrDocumentNotFound)
	require.Equal(t, 100.0, repo.cashBalance[1])
}

func TestEngineUpdateEqualsDeletePlusCreate(t *testing.T) {
	original := CreateInput{
		Kind: KindSale, FinalAmount: 1000, PaymentType: PayMixed,
		CashPaid: 400, OnlinePaid: 300, BankID: int64Ptr(7),
	}
	revised := CreateInput{
		Kind: KindSale, FinalAmount: 900, PaymentType: PayCash,
	}

	updated := newMemoryRepo()
	updated.cashBalance[1] = 50
	updated.addBank(1, 7, 5000)
	engineA := testEngine(updated)
	doc, err := engineA.Create(context.Background(), testIdentity, original)
	require.NoError(t, err)
	next, err := engineA.Update(context.Background(), testIdentity, doc.ID, revised)
	require.NoError(t, err)
	require.Equal(t, doc.ID, next.ID)

	recreated := newMemoryRepo()
	recreated.cashBalance[1] = 50
	recreated.addBank(1, 7, 5000)
	engineB := testEngine(recreated)
	doc2, err := engineB.Create(context.Background(), testIdentity, original)
	require.NoError(t, err)
	require.NoError(t, engineB.Delete(context.Background(), testIdentity, doc2.ID))
	_, err = engineB.Create(context.Background(), testIdentity, revised)
	require.NoError(t, err)

	require.Equal(t, recreated.cashBalance[1], updated.cashBalance[1])
	require.Equal(t, recreated.bankBalance[bankKey{1, 7}], updated.bankBalance[bankKey{1, 7}])
}

func TestEngineUpdateRejectsKindChange(t *testing.T) {
	repo := newMemoryRepo()
	repo.cashBalance[1] = 0
	engine := testEngine(repo)

	doc, err := engine.Create(context.Background(), testIdentity, CreateInput{
		Kind: KindSale, FinalAmount: 100, PaymentType: PayCash,
	})
	require.NoError(t, err)

	_, err = engine.Update(context.Background(), testIdentity, doc.ID, CreateInput{
		Kind: KindPurchase, FinalAmount: 100, PaymentType: PayCash,
	})
	require.ErrorIs(t, err, shared.ErrValidation)

	// the failed update must not have touched balances or the document
	require.Equal(t, 100.0, repo.cashBalance[1])
	got, err := engine.Get(context.Background(), testIdentity, doc.ID)
	require.NoError(t, err)
	require.Equal(t, KindSale, got.Kind)
}

func TestEngineCreateRollsBackOnMissingBank(t *testing.T) {
	repo := newMemoryRepo()
	repo.cashBalance[1] = 0
	engine := testEngine(repo)

	_, err := engine.Create(context.Background(), testIdentity, CreateInput{
		Kind: KindSale, FinalAmount: 1000, PaymentType: PayMixed,
		CashPaid: 400, OnlinePaid: 600, BankID: int64Ptr(99),
	})
	require.ErrorIs(t, err, ledger.ErrBankNotFound)

	// nothing committed: no document, cash untouched despite the cash leg
	// having been applied first inside the transaction
	require.Equal(t, 0.0, repo.cashBalance[1])
	require.Empty(t, repo.docs)
	cash, _, _ := repo.liveRows(ledger.Reference{Kind: ledger.RefSale, ID: 1})
	require.Zero(t, cash)
}

func TestEngineTenantIsolation(t *testing.T) {
	repo := newMemoryRepo()
	repo.cashBalance[1] = 0
	engine := testEngine(repo)

	doc, err := engine.Create(context.Background(), testIdentity, CreateInput{
		Kind: KindSale, FinalAmount: 100, PaymentType: PayCash,
	})
	require.NoError(t, err)

	other := shared.Identity{UserID: 99, CompanyID: 2, Role: "owner"}
	_, err = engine.Get(context.Background(), other, doc.ID)
	require.ErrorIs(t, err, ErrDocumentNotFound)
	err = engine.Delete(context.Background(), other, doc.ID)
	require.ErrorIs(t, err, ErrDocumentNotFound)
	_, err = engine.Update(context.Background(), other, doc.ID, CreateInput{
		Kind: KindSale, FinalAmount: 200, PaymentType: PayCash,
	})
	require.ErrorIs(t, err, ErrDocumentNotFound)

	require.Equal(t, 100.0, repo.cashBalance[1])
}

func TestEngineRejectsOutstandingOnLoan(t *testing.T) {
	repo := newMemoryRepo()
	engine := testEngine(repo)

	_, err := engine.Create(context.Background(), testIdentity, CreateInput{
		Kind: KindDirectorLoan, FinalAmount: 100, PaymentType: PayCredit, LoanFlow: LoanReceived,
	})
	require.ErrorIs(t, err, ErrInvalidPaymentType)
}
