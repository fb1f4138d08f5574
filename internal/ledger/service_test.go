package ledger

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledgerly/ledgerly/internal/shared"
)

type memoryLedger struct {
	cashEntries []CashAppend
	bankEntries []BankAppend
	cashBalance map[int64]float64
	bankBalance map[int64]float64
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{
		cashBalance: make(map[int64]float64),
		bankBalance: make(map[int64]float64),
	}
}

func (r *memoryLedger) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	return fn(ctx, r)
}

func (r *memoryLedger) CashBalance(ctx context.Context, companyID int64) (float64, error) {
	return r.cashBalance[companyID], nil
}

func (r *memoryLedger) ListCash(ctx context.Context, companyID int64, limit, offset int) ([]CashEntry, int, error) {
	var entries []CashEntry
	for i, e := range r.cashEntries {
		if e.CompanyID == companyID {
			entries = append(entries, CashEntry{
				ID: int64(i + 1), CompanyID: e.CompanyID, Direction: e.Direction,
				Amount: e.Amount, TxnDate: e.TxnDate, RefKind: e.Ref.Kind, Note: e.Note,
			})
		}
	}
	return entries, len(entries), nil
}

func (r *memoryLedger) ListBank(ctx context.Context, companyID, bankID int64, limit, offset int) ([]BankEntry, int, error) {
	var entries []BankEntry
	for i, e := range r.bankEntries {
		if e.CompanyID == companyID && e.BankID == bankID {
			entries = append(entries, BankEntry{
				ID: int64(i + 1), CompanyID: e.CompanyID, BankID: e.BankID, Direction: e.Direction,
				Amount: e.Amount, TxnDate: e.TxnDate, RefKind: e.Ref.Kind, Description: e.Description,
			})
		}
	}
	return entries, len(entries), nil
}

func (r *memoryLedger) ListCredit(ctx context.Context, companyID int64, creditType CreditType, limit, offset int) ([]CreditEntry, int, error) {
	return nil, 0, nil
}

func (r *memoryLedger) AppendCash(ctx context.Context, in CashAppend) (int64, error) {
	r.cashEntries = append(r.cashEntries, in)
	r.cashBalance[in.CompanyID] += in.Direction.Signed(in.Amount)
	return int64(len(r.cashEntries)), nil
}

func (r *memoryLedger) AppendBank(ctx context.Context, in BankAppend) (int64, error) {
	if _, ok := r.bankBalance[in.BankID]; !ok {
		return 0, ErrBankNotFound
	}
	r.bankEntries = append(r.bankEntries, in)
	r.bankBalance[in.BankID] += in.Direction.Signed(in.Amount)
	return int64(len(r.bankEntries)), nil
}

func (r *memoryLedger) AppendCredit(ctx context.Context, in CreditAppend) (int64, error) {
	return 0, nil
}

func (r *memoryLedger) ReverseReference(ctx context.Context, companyID int64, ref Reference) error {
	return nil
}

func (r *memoryLedger) AdjustCashBalance(ctx context.Context, companyID int64, delta float64) error {
	r.cashBalance[companyID] += delta
	return nil
}

func (r *memoryLedger) AdjustBankBalance(ctx context.Context, companyID, bankID int64, delta float64) error {
	r.bankBalance[bankID] += delta
	return nil
}

var _ Repository = (*memoryLedger)(nil)
var _ TxStore = (*memoryLedger)(nil)

func testService(repo *memoryLedger) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, logger)
	svc.WithNow(func() time.Time {
		return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	})
	return svc
}

var ledgerIdentity = shared.Identity{UserID: 11, CompanyID: 1, Role: "owner"}

func TestManualCashEntries(t *testing.T) {
	repo := newMemoryLedger()
	svc := testService(repo)
	ctx := context.Background()

	_, err := svc.AddCashEntry(ctx, ledgerIdentity, ManualEntryInput{
		Kind: EntryDeposit, Amount: 500, Description: "opening float",
	})
	require.NoError(t, err)
	_, err = svc.AddCashEntry(ctx, ledgerIdentity, ManualEntryInput{
		Kind: EntryWithdraw, Amount: 200, Description: "petty cash",
	})
	require.NoError(t, err)

	balance, err := svc.CashBalance(ctx, ledgerIdentity)
	require.NoError(t, err)
	require.Equal(t, 300.0, balance)

	entries, pagination, err := svc.ListCash(ctx, ledgerIdentity, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, 2, pagination.Total)
	require.Equal(t, RefManual, entries[0].RefKind)
	require.Equal(t, DirectionCredit, entries[0].Direction)
	require.Equal(t, DirectionDebit, entries[1].Direction)
}

func TestManualBankEntries(t *testing.T) {
	repo := newMemoryLedger()
	repo.bankBalance[7] = 1000
	svc := testService(repo)
	ctx := context.Background()

	_, err := svc.AddBankEntry(ctx, ledgerIdentity, ManualEntryInput{
		Kind: EntryWithdraw, BankID: 7, Amount: 250, Description: "cash withdrawal",
	})
	require.NoError(t, err)
	require.Equal(t, 750.0, repo.bankBalance[7])

	entries, _, err := svc.ListBank(ctx, ledgerIdentity, 7, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, RefManual, entries[0].RefKind)
}

func TestManualEntryValidation(t *testing.T) {
	repo := newMemoryLedger()
	svc := testService(repo)
	ctx := context.Background()

	_, err := svc.AddCashEntry(ctx, ledgerIdentity, ManualEntryInput{Kind: "Transfer", Amount: 10})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.AddBankEntry(ctx, ledgerIdentity, ManualEntryInput{Kind: EntryDeposit, Amount: 10})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.AddBankEntry(ctx, ledgerIdentity, ManualEntryInput{Kind: EntryDeposit, BankID: 99, Amount: 10})
	require.ErrorIs(t, err, ErrBankNotFound)
}
