package posting

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerly/ledgerly/internal/ledger"
)

func int64Ptr(v int64) *int64 { return &v }

func TestComputeSplit(t *testing.T) {
	bank := int64Ptr(7)

	tests := []struct {
		name    string
		kind    DocumentKind
		method  PaymentMethod
		final   float64
		cash    float64
		online  float64
		bankID  *int64
		want    Split
		wantErr error
	}{
		{
			name: "cash sale", kind: KindSale, method: PayCash, final: 1000,
			want: Split{Cash: 1000},
		},
		{
			name: "online purchase", kind: KindPurchase, method: PayOnline, final: 500, bankID: bank,
			want: Split{Online: 500},
		},
		{
			name: "mixed sale with remainder outstanding", kind: KindSale, method: PayMixed,
			final: 1000, cash: 400, online: 300, bankID: bank,
			want: Split{Cash: 400, Online: 300, Outstanding: 300},
		},
		{
			name: "mixed covering full amount", kind: KindPurchase, method: PayMixed,
			final: 800, cash: 500, online: 300, bankID: bank,
			want: Split{Cash: 500, Online: 300},
		},
		{
			name: "credit sale fully outstanding", kind: KindSale, method: PayCredit, final: 1200,
			want: Split{Outstanding: 1200},
		},
		{
			name: "credit expense", kind: KindExpense, method: PayCredit, final: 250,
			want: Split{Outstanding: 250},
		},
		{
			name: "zero amount", kind: KindSale, method: PayCash, final: 0,
			wantErr: ErrInvalidAmount,
		},
		{
			name: "negative amount", kind: KindSale, method: PayCash, final: -5,
			wantErr: ErrInvalidAmount,
		},
		{
			name: "income cannot be credit", kind: KindIncome, method: PayCredit, final: 100,
			wantErr: ErrInvalidPaymentType,
		},
		{
			name: "loan cannot be mixed", kind: KindDirectorLoan, method: PayMixed,
			final: 100, cash: 50, online: 50, bankID: bank,
			wantErr: ErrInvalidPaymentType,
		},
		{
			name: "expense cannot be mixed", kind: KindExpense, method: PayMixed,
			final: 100, cash: 50, online: 50, bankID: bank,
			wantErr: ErrInvalidPaymentType,
		},
		{
			name: "online without bank", kind: KindSale, method: PayOnline, final: 100,
			wantErr: ErrBankRequired,
		},
		{
			name: "mixed online leg without bank", kind: KindSale, method: PayMixed,
			final: 100, cash: 40, online: 60,
			wantErr: ErrBankRequired,
		},
		{
			name: "mixed split exceeds total", kind: KindSale, method: PayMixed,
			final: 100, cash: 80, online: 40, bankID: bank,
			wantErr: ErrMixedSplit,
		},
		{
			name: "mixed split with nothing paid", kind: KindSale, method: PayMixed,
			final: 100, bankID: bank,
			wantErr: ErrMixedSplit,
		},
		{
			name: "mixed with negative leg", kind: KindSale, method: PayMixed,
			final: 100, cash: -10, online: 50, bankID: bank,
			wantErr: ErrMixedSplit,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ComputeSplit(tc.kind, tc.method, tc.final, tc.cash, tc.online, tc.bankID)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
			require.InDelta(t, tc.final, got.Paid()+got.Outstanding, 1e-9)
		})
	}
}

func TestDocumentDirection(t *testing.T) {
	tests := []struct {
		kind DocumentKind
		flow LoanFlow
		want ledger.Direction
	}{
		{KindSale, "", ledger.DirectionCredit},
		{KindIncome, "", ledger.DirectionCredit},
		{KindPurchase, "", ledger.DirectionDebit},
		{KindExpense, "", ledger.DirectionDebit},
		{KindDirectorLoan, LoanReceived, ledger.DirectionCredit},
		{KindDirectorLoan, LoanGiven, ledger.DirectionDebit},
	}
	for _, tc := range tests {
		dir, err := Document{Kind: tc.kind, LoanFlow: tc.flow}.Direction()
		require.NoError(t, err)
		require.Equal(t, tc.want, dir)
	}

	_, err := Document{Kind: KindDirectorLoan}.Direction()
	require.ErrorIs(t, err, ErrInvalidLoanFlow)
}

func TestDocumentKindRefKind(t *testing.T) {
	require.Equal(t, ledger.RefSale, KindSale.RefKind())
	require.Equal(t, ledger.RefPurchase, KindPurchase.RefKind())
	require.Equal(t, ledger.RefExpense, KindExpense.RefKind())
	require.Equal(t, ledger.RefIncome, KindIncome.RefKind())
	require.Equal(t, ledger.RefDirectorLoan, KindDirectorLoan.RefKind())
}

func TestDocumentKindCreditType(t *testing.T) {
	ct, ok := KindSale.CreditType()
	require.True(t, ok)
	require.Equal(t, ledger.CreditCustomer, ct)

	ct, ok = KindPurchase.CreditType()
	require.True(t, ok)
	require.Equal(t, ledger.CreditSupplier, ct)

	ct, ok = KindExpense.CreditType()
	require.True(t, ok)
	require.Equal(t, ledger.CreditExpense, ct)

	_, ok = KindIncome.CreditType()
	require.False(t, ok)
	_, ok = KindDirectorLoan.CreditType()
	require.False(t, ok)
}
