package payments

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledgerly/ledgerly/internal/ledger"
	"github.com/ledgerly/ledgerly/internal/posting"
	"github.com/ledgerly/ledgerly/internal/shared"
)

type fakeDoc struct {
	id           int64
	companyID    int64
	kind         posting.DocumentKind
	partyID      *int64
	partyName    string
	partyContact string
	date         time.Time
	amountPaid   float64
	outstanding  float64
	finalAmount  float64
}

type memoryPayRepo struct {
	docs        []*fakeDoc
	payments    []Payment
	nextPayID   int64
	cashBalance map[int64]float64
	bankBalance map[int64]float64
	cashEntries []ledger.CashAppend
	bankEntries []ledger.BankAppend
}

func newMemoryPayRepo() *memoryPayRepo {
	return &memoryPayRepo{
		cashBalance: make(map[int64]float64),
		bankBalance: make(map[int64]float64),
	}
}

func (r *memoryPayRepo) addDoc(d fakeDoc) {
	doc := d
	doc.id = int64(len(r.docs) + 1)
	r.docs = append(r.docs, &doc)
}

func (r *memoryPayRepo) snapshot() ([]fakeDoc, []Payment, map[int64]float64, map[int64]float64, int) {
	docs := make([]fakeDoc, len(r.docs))
	for i, d := range r.docs {
		docs[i] = *d
	}
	payments := append([]Payment(nil), r.payments...)
	cash := make(map[int64]float64, len(r.cashBalance))
	for k, v := range r.cashBalance {
		cash[k] = v
	}
	bank := make(map[int64]float64, len(r.bankBalance))
	for k, v := range r.bankBalance {
		bank[k] = v
	}
	return docs, payments, cash, bank, len(r.cashEntries)
}

func (r *memoryPayRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	docs, payments, cash, bank, cashLen := r.snapshot()
	if err := fn(ctx, r); err != nil {
		for i := range docs {
			*r.docs[i] = docs[i]
		}
		r.payments = payments
		r.cashBalance = cash
		r.bankBalance = bank
		r.cashEntries = r.cashEntries[:cashLen]
		return err
	}
	return nil
}

func (r *memoryPayRepo) OutstandingByParty(ctx context.Context, companyID int64, kind posting.DocumentKind) ([]OutstandingParty, error) {
	byName := make(map[string]*OutstandingParty)
	var out []OutstandingParty
	for _, d := range r.docs {
		if d.companyID != companyID || d.kind != kind || d.outstanding <= 0 {
			continue
		}
		entry, ok := byName[d.partyName]
		if !ok {
			out = append(out, OutstandingParty{PartyID: d.partyID, Name: d.partyName, Contact: d.partyContact})
			entry = &out[len(out)-1]
			byName[d.partyName] = entry
		}
		entry.Total += d.finalAmount
		entry.Outstanding += d.outstanding
	}
	return out, nil
}

func (r *memoryPayRepo) ListPayments(ctx context.Context, companyID int64, side Side, limit, offset int) ([]Payment, int, error) {
	var rows []Payment
	for _, p := range r.payments {
		if p.CompanyID == companyID && p.Side == side {
			rows = append(rows, p)
		}
	}
	return rows, len(rows), nil
}

func (r *memoryPayRepo) ListOpenDocumentsForUpdate(ctx context.Context, companyID int64, kind posting.DocumentKind, party PartyMatch) ([]OpenDocument, error) {
	var open []OpenDocument
	for _, d := range r.docs {
		if d.companyID != companyID || d.kind != kind || d.outstanding <= 0 {
			continue
		}
		if party.PartyID != nil {
			if d.partyID == nil || *d.partyID != *party.PartyID {
				continue
			}
		} else if d.partyName != party.Name || d.partyContact != party.Contact {
			continue
		}
		open = append(open, OpenDocument{ID: d.id, Date: d.date, Outstanding: d.outstanding})
	}
	// FIFO: date ascending, id ascending; docs are inserted in that order
	return open, nil
}

func (r *memoryPayRepo) SettleDocument(ctx context.Context, companyID, docID int64, pay float64) error {
	for _, d := range r.docs {
		if d.id == docID && d.companyID == companyID {
			if d.outstanding < pay {
				return posting.ErrDocumentNotFound
			}
			d.outstanding -= pay
			d.amountPaid += pay
			return nil
		}
	}
	return posting.ErrDocumentNotFound
}

func (r *memoryPayRepo) InsertPayment(ctx context.Context, p Payment) (int64, error) {
	r.nextPayID++
	p.ID = r.nextPayID
	r.payments = append(r.payments, p)
	return p.ID, nil
}

func (r *memoryPayRepo) AppendCash(ctx context.Context, in ledger.CashAppend) (int64, error) {
	r.cashEntries = append(r.cashEntries, in)
	r.cashBalance[in.CompanyID] += in.Direction.Signed(in.Amount)
	return int64(len(r.cashEntries)), nil
}

func (r *memoryPayRepo) AppendBank(ctx context.Context, in ledger.BankAppend) (int64, error) {
	if _, ok := r.bankBalance[in.BankID]; !ok {
		return 0, ledger.ErrBankNotFound
	}
	r.bankEntries = append(r.bankEntries, in)
	r.bankBalance[in.BankID] += in.Direction.Signed(in.Amount)
	return int64(len(r.bankEntries)), nil
}

func (r *memoryPayRepo) AppendCredit(ctx context.Context, in ledger.CreditAppend) (int64, error) {
	return 0, nil
}

func (r *memoryPayRepo) ReverseReference(ctx context.Context, companyID int64, ref ledger.Reference) error {
	return nil
}

func (r *memoryPayRepo) AdjustCashBalance(ctx context.Context, companyID int64, delta float64) error {
	r.cashBalance[companyID] += delta
	return nil
}

func (r *memoryPayRepo) AdjustBankBalance(ctx context.Context, companyID, bankID int64, delta float64) error {
	r.bankBalance[bankID] += delta
	return nil
}

var _ Repository = (*memoryPayRepo)(nil)
var _ TxRepository = (*memoryPayRepo)(nil)

func testAllocator(repo *memoryPayRepo) *Allocator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := NewAllocator(repo, logger)
	a.WithNow(func() time.Time {
		return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	})
	return a
}

var payIdentity = shared.Identity{UserID: 11, CompanyID: 1, Role: "owner"}

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func customerDocs(repo *memoryPayRepo, outstanding ...float64) {
	for i, o := range outstanding {
		repo.addDoc(fakeDoc{
			companyID: 1, kind: posting.KindSale,
			partyName: "Acme", partyContact: "9800000001",
			date: day(i + 1), finalAmount: o, outstanding: o,
		})
	}
}

func TestAllocateFIFO(t *testing.T) {
	repo := newMemoryPayRepo()
	customerDocs(repo, 100, 50, 30)
	allocator := testAllocator(repo)

	result, err := allocator.Allocate(context.Background(), payIdentity, AllocateInput{
		Side:   SideReceivable,
		Party:  PartyMatch{Name: "Acme", Contact: "9800000001"},
		Amount: 120,
		Method: posting.PayCash,
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.DocumentsAffected)
	require.Equal(t, 120.0, result.Allocated)

	require.Equal(t, 0.0, repo.docs[0].outstanding)
	require.Equal(t, 30.0, repo.docs[1].outstanding)
	require.Equal(t, 30.0, repo.docs[2].outstanding)
	require.Equal(t, 100.0, repo.docs[0].amountPaid)
	require.Equal(t, 20.0, repo.docs[1].amountPaid)

	require.Equal(t, 120.0, repo.cashBalance[1])
	require.Len(t, repo.cashEntries, 1)
	require.Equal(t, ledger.DirectionCredit, repo.cashEntries[0].Direction)
	require.Equal(t, ledger.RefCustomerPayment, repo.cashEntries[0].Ref.Kind)
	require.Equal(t, result.PaymentID, repo.cashEntries[0].Ref.ID)
}

func TestAllocateExactSettlement(t *testing.T) {
	repo := newMemoryPayRepo()
	customerDocs(repo, 100, 50)
	allocator := testAllocator(repo)

	result, err := allocator.Allocate(context.Background(), payIdentity, AllocateInput{
		Side:   SideReceivable,
		Party:  PartyMatch{Name: "Acme", Contact: "9800000001"},
		Amount: 150,
		Method: posting.PayCash,
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.DocumentsAffected)
	require.Equal(t, 0.0, repo.docs[0].outstanding)
	require.Equal(t, 0.0, repo.docs[1].outstanding)

	rows, err := allocator.Outstanding(context.Background(), payIdentity, SideReceivable)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestAllocateRejectsOverpayment(t *testing.T) {
	repo := newMemoryPayRepo()
	customerDocs(repo, 100, 50)
	allocator := testAllocator(repo)

	_, err := allocator.Allocate(context.Background(), payIdentity, AllocateInput{
		Side:   SideReceivable,
		Party:  PartyMatch{Name: "Acme", Contact: "9800000001"},
		Amount: 200,
		Method: posting.PayCash,
	})
	require.ErrorIs(t, err, ErrUnallocatedAmount)

	// rolled back: documents untouched, no payment, no ledger entry
	require.Equal(t, 100.0, repo.docs[0].outstanding)
	require.Equal(t, 50.0, repo.docs[1].outstanding)
	require.Empty(t, repo.payments)
	require.Empty(t, repo.cashEntries)
	require.Equal(t, 0.0, repo.cashBalance[1])
}

func TestAllocatePayableOnline(t *testing.T) {
	repo := newMemoryPayRepo()
	repo.bankBalance[7] = 1000
	supplier := int64Ptr(4)
	repo.addDoc(fakeDoc{
		companyID: 1, kind: posting.KindPurchase, partyID: supplier,
		partyName: "Metro", date: day(1), finalAmount: 300, outstanding: 300,
	})
	allocator := testAllocator(repo)

	result, err := allocator.Allocate(context.Background(), payIdentity, AllocateInput{
		Side:   SidePayable,
		Party:  PartyMatch{PartyID: supplier},
		Amount: 300,
		Method: posting.PayOnline,
		BankID: int64Ptr(7),
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.DocumentsAffected)

	require.Equal(t, 700.0, repo.bankBalance[7])
	require.Len(t, repo.bankEntries, 1)
	require.Equal(t, ledger.DirectionDebit, repo.bankEntries[0].Direction)
	require.Equal(t, ledger.RefSupplierPayment, repo.bankEntries[0].Ref.Kind)
}

func TestAllocateValidation(t *testing.T) {
	repo := newMemoryPayRepo()
	allocator := testAllocator(repo)
	ctx := context.Background()

	_, err := allocator.Allocate(ctx, payIdentity, AllocateInput{
		Side: SideReceivable, Party: PartyMatch{Name: "Acme", Contact: "1"}, Amount: 0, Method: posting.PayCash,
	})
	require.ErrorIs(t, err, posting.ErrInvalidAmount)

	_, err = allocator.Allocate(ctx, payIdentity, AllocateInput{
		Side: SideReceivable, Party: PartyMatch{Name: "Acme"}, Amount: 10, Method: posting.PayCash,
	})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = allocator.Allocate(ctx, payIdentity, AllocateInput{
		Side: SideReceivable, Party: PartyMatch{Name: "Acme", Contact: "1"}, Amount: 10, Method: posting.PayOnline,
	})
	require.ErrorIs(t, err, posting.ErrBankRequired)

	_, err = allocator.Allocate(ctx, payIdentity, AllocateInput{
		Side: SideReceivable, Party: PartyMatch{Name: "Acme", Contact: "1"}, Amount: 10, Method: posting.PayMixed,
	})
	require.ErrorIs(t, err, ErrInvalidMethod)

	_, err = allocator.Allocate(ctx, payIdentity, AllocateInput{
		Side: "Sideways", Party: PartyMatch{Name: "Acme", Contact: "1"}, Amount: 10, Method: posting.PayCash,
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestAllocateScopedToParty(t *testing.T) {
	repo := newMemoryPayRepo()
	customerDocs(repo, 100)
	repo.addDoc(fakeDoc{
		companyID: 1, kind: posting.KindSale,
		partyName: "Zenith", partyContact: "9800000002",
		date: day(2), finalAmount: 80, outstanding: 80,
	})
	allocator := testAllocator(repo)

	_, err := allocator.Allocate(context.Background(), payIdentity, AllocateInput{
		Side:   SideReceivable,
		Party:  PartyMatch{Name: "Zenith", Contact: "9800000002"},
		Amount: 80,
		Method: posting.PayCash,
	})
	require.NoError(t, err)

	require.Equal(t, 100.0, repo.docs[0].outstanding)
	require.Equal(t, 0.0, repo.docs[1].outstanding)
}

func int64Ptr(v int64) *int64 { return &v }
