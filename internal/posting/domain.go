// Package posting translates source-document mutations into ledger effects.
// Each document moves Draft → Posted → Updated* → Deleted(soft); every
// transition is one atomic transaction, and an update or delete first reverses
// exactly the effects the previous posting created.
package posting

import (
	"fmt"
	"time"

	"github.com/ledgerly/ledgerly/internal/ledger"
	"github.com/ledgerly/ledgerly/internal/shared"
)

// DocumentKind discriminates the source-document variants.
type DocumentKind string

const (
	KindSale         DocumentKind = "Sale"
	KindPurchase     DocumentKind = "Purchase"
	KindExpense      DocumentKind = "Expense"
	KindIncome       DocumentKind = "Income"
	KindDirectorLoan DocumentKind = "DirectorLoan"
)

// PaymentMethod is the payment composition of a document.
type PaymentMethod string

const (
	PayCash   PaymentMethod = "Cash"
	PayOnline PaymentMethod = "Online"
	PayMixed  PaymentMethod = "Mixed"
	PayCredit PaymentMethod = "Credit"
)

// LoanFlow distinguishes money received from money given for director loans.
type LoanFlow string

const (
	LoanReceived LoanFlow = "Received"
	LoanGiven    LoanFlow = "Given"
)

// Document is one business event across all five variants. Monetary fields
// satisfy AmountPaid + Outstanding == FinalAmount for every non-deleted row.
type Document struct {
	ID           int64         `json:"id"`
	CompanyID    int64         `json:"company_id"`
	Kind         DocumentKind  `json:"kind"`
	Number       string        `json:"number"`
	Date         time.Time     `json:"date"`
	PartyID      *int64        `json:"party_id"`
	PartyName    string        `json:"party_name"`
	PartyContact string        `json:"party_contact"`
	Category     string        `json:"category,omitempty"`
	FinalAmount  float64       `json:"final_amount"`
	CashPaid     float64       `json:"cash_paid"`
	OnlinePaid   float64       `json:"online_paid"`
	AmountPaid   float64       `json:"amount_paid"`
	Outstanding  float64       `json:"outstanding"`
	PaymentType  PaymentMethod `json:"payment_type"`
	LoanFlow     LoanFlow      `json:"loan_flow,omitempty"`
	BankID       *int64        `json:"bank_id"`
	Remarks      string        `json:"remarks"`
	Deleted      bool          `json:"-"`
	CreatedBy    int64         `json:"created_by"`
	ModifiedBy   int64         `json:"modified_by"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Split is the computed payment composition at posting time.
type Split struct {
	Cash        float64
	Online      float64
	Outstanding float64
}

// Paid returns cash plus online.
func (s Split) Paid() float64 { return s.Cash + s.Online }

var (
	// ErrInvalidPaymentType rejects a method the document kind does not support.
	ErrInvalidPaymentType = fmt.Errorf("%w: unsupported payment type", shared.ErrValidation)
	// ErrInvalidAmount rejects a non-positive final amount.
	ErrInvalidAmount = fmt.Errorf("%w: amount must be positive", shared.ErrValidation)
	// ErrBankRequired rejects an online leg without a bank account.
	ErrBankRequired = fmt.Errorf("%w: bank_id is required for online payments", shared.ErrValidation)
	// ErrMixedSplit rejects a mixed split that is missing or exceeds the total.
	ErrMixedSplit = fmt.Errorf("%w: cash_paid plus online_paid must be positive and not exceed the final amount", shared.ErrValidation)
	// ErrDocumentNotFound indicates the document is absent, deleted or owned by another company.
	ErrDocumentNotFound = fmt.Errorf("%w: document", shared.ErrNotFound)
	// ErrInvalidLoanFlow rejects director loan rows without a Received/Given flow.
	ErrInvalidLoanFlow = fmt.Errorf("%w: loan flow must be Received or Given", shared.ErrValidation)
)

// Direction returns the ledger direction for this document's paid legs:
// Credit for inflows (sale, income, loan received), Debit for outflows.
func (d Document) Direction() (ledger.Direction, error) {
	switch d.Kind {
	case KindSale, KindIncome:
		return ledger.DirectionCredit, nil
	case KindPurchase, KindExpense:
		return ledger.DirectionDebit, nil
	case KindDirectorLoan:
		switch d.LoanFlow {
		case LoanReceived:
			return ledger.DirectionCredit, nil
		case LoanGiven:
			return ledger.DirectionDebit, nil
		default:
			return "", ErrInvalidLoanFlow
		}
	default:
		return "", fmt.Errorf("%w: unknown document kind %q", shared.ErrValidation, d.Kind)
	}
}

// RefKind returns the canonical ledger reference kind for the document.
func (k DocumentKind) RefKind() ledger.RefKind {
	switch k {
	case KindSale:
		return ledger.RefSale
	case KindPurchase:
		return ledger.RefPurchase
	case KindExpense:
		return ledger.RefExpense
	case KindIncome:
		return ledger.RefIncome
	case KindDirectorLoan:
		return ledger.RefDirectorLoan
	}
	return ledger.RefKind(k)
}

// CreditType returns the credit ledger bucket for the document kind's
// outstanding amounts. Income and director loans never carry outstanding.
func (k DocumentKind) CreditType() (ledger.CreditType, bool) {
	switch k {
	case KindSale:
		return ledger.CreditCustomer, true
	case KindPurchase:
		return ledger.CreditSupplier, true
	case KindExpense:
		return ledger.CreditExpense, true
	default:
		return "", false
	}
}

// allowedMethods lists the payment compositions each kind supports.
func (k DocumentKind) allows(m PaymentMethod) bool {
	switch k {
	case KindSale, KindPurchase:
		return m == PayCash || m == PayOnline || m == PayMixed || m == PayCredit
	case KindExpense:
		return m == PayCash || m == PayOnline || m == PayCredit
	case KindIncome, KindDirectorLoan:
		return m == PayCash || m == PayOnline
	}
	return false
}

// ComputeSplit validates the payment composition and derives the cash, online
// and outstanding portions for a document.
func ComputeSplit(kind DocumentKind, method PaymentMethod, finalAmount, cashPaid, onlinePaid float64, bankID *int64) (Split, error) {
	if finalAmount <= 0 {
		return Split{}, ErrInvalidAmount
	}
	if !kind.allows(method) {
		return Split{}, fmt.Errorf("%w: %s does not support %s", ErrInvalidPaymentType, kind, method)
	}
	var split Split
	switch method {
	case PayCash:
		split.Cash = finalAmount
	case PayOnline:
		split.Online = finalAmount
	case PayMixed:
		if cashPaid < 0 || onlinePaid < 0 || cashPaid+onlinePaid <= 0 || cashPaid+onlinePaid > finalAmount {
			return Split{}, ErrMixedSplit
		}
		split.Cash = cashPaid
		split.Online = onlinePaid
	case PayCredit:
		// everything outstanding
	default:
		return Split{}, ErrInvalidPaymentType
	}
	if split.Online > 0 && (bankID == nil || *bankID == 0) {
		return Split{}, ErrBankRequired
	}
	split.Outstanding = finalAmount - split.Paid()
	return split, nil
}
