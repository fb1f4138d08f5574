// Package ledger is the durable record of cash, bank and credit movements.
// Every append adjusts the matching running balance in the same transaction;
// balances are cached projections that can always be rebuilt by summing the
// non-deleted rows of their ledger.
package ledger

import (
	"fmt"
	"time"

	"github.com/ledgerly/ledgerly/internal/shared"
)

// Direction is the sign of a ledger movement.
type Direction string

const (
	// DirectionCredit is money flowing in.
	DirectionCredit Direction = "Credit"
	// DirectionDebit is money flowing out.
	DirectionDebit Direction = "Debit"
)

// Signed returns amount with the direction's sign applied.
func (d Direction) Signed(amount float64) float64 {
	if d == DirectionDebit {
		return -amount
	}
	return amount
}

// Inverse returns the opposite direction.
func (d Direction) Inverse() Direction {
	if d == DirectionDebit {
		return DirectionCredit
	}
	return DirectionDebit
}

// RefKind identifies the source that caused a ledger entry. Together with a
// reference id it forms the composite key every reversal is scoped by.
type RefKind string

const (
	RefSale            RefKind = "Sale"
	RefPurchase        RefKind = "Purchase"
	RefExpense         RefKind = "Expense"
	RefIncome          RefKind = "Income"
	RefDirectorLoan    RefKind = "DirectorLoan"
	RefCustomerPayment RefKind = "CustomerPayment"
	RefSupplierPayment RefKind = "SupplierPayment"
	RefManual          RefKind = "Manual"
)

// CreditType groups credit ledger entries by the kind of obligation.
type CreditType string

const (
	CreditCustomer CreditType = "CustomerCredit"
	CreditSupplier CreditType = "SupplierCredit"
	CreditExpense  CreditType = "ExpenseCredit"
)

// Reference is the composite key tying a ledger entry to its source document.
// A zero ID with RefManual means a hand-keyed entry with no source.
type Reference struct {
	Kind RefKind
	ID   int64
}

// CashEntry is one row of the cash ledger.
type CashEntry struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Direction Direction `json:"type"`
	Amount    float64   `json:"amount"`
	TxnDate   time.Time `json:"txn_date"`
	RefKind   RefKind   `json:"reference_type"`
	RefID     *int64    `json:"reference_id"`
	Note      string    `json:"note"`
	CreatedBy int64     `json:"created_by"`
	Deleted   bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// BankEntry is one row of the bank ledger, scoped to a bank account.
type BankEntry struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"company_id"`
	BankID      int64     `json:"bank_id"`
	Direction   Direction `json:"type"`
	Amount      float64   `json:"amount"`
	TxnDate     time.Time `json:"txn_date"`
	RefKind     RefKind   `json:"module"`
	RefID       *int64    `json:"reference_id"`
	Description string    `json:"description"`
	CreatedBy   int64     `json:"created_by"`
	Deleted     bool      `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreditEntry is one row of the credit ledger. Unlike cash and bank entries it
// carries no balance side effect: the outstanding amount lives on the source
// document and is settled there by the payment allocator.
type CreditEntry struct {
	ID         int64      `json:"id"`
	CompanyID  int64      `json:"company_id"`
	Type       CreditType `json:"type"`
	PartyID    *int64     `json:"party_id"`
	Amount     float64    `json:"amount"`
	TxnDate    time.Time  `json:"txn_date"`
	RefKind    RefKind    `json:"reference_type"`
	RefID      *int64     `json:"reference_id"`
	Note       string     `json:"note"`
	CreatedBy  int64      `json:"created_by"`
	Deleted    bool       `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
}

// CashAppend is the input for appending a cash ledger entry.
type CashAppend struct {
	CompanyID int64
	Direction Direction
	Amount    float64
	TxnDate   time.Time
	Ref       Reference
	Note      string
	Actor     int64
}

// BankAppend is the input for appending a bank ledger entry.
type BankAppend struct {
	CompanyID   int64
	BankID      int64
	Direction   Direction
	Amount      float64
	TxnDate     time.Time
	Ref         Reference
	Description string
	Actor       int64
}

// CreditAppend is the input for appending a credit ledger entry.
type CreditAppend struct {
	CompanyID int64
	Type      CreditType
	PartyID   *int64
	Amount    float64
	TxnDate   time.Time
	Ref       Reference
	Note      string
	Actor     int64
}

var (
	// ErrInvalidAmount rejects zero or negative ledger amounts.
	ErrInvalidAmount = fmt.Errorf("%w: amount must be positive", shared.ErrValidation)
	// ErrInvalidDirection rejects directions outside Credit/Debit.
	ErrInvalidDirection = fmt.Errorf("%w: type must be Credit or Debit", shared.ErrValidation)
	// ErrBankNotFound indicates the bank account is absent, deleted or owned by another company.
	ErrBankNotFound = fmt.Errorf("%w: bank account", shared.ErrNotFound)
	// ErrCashAccountNotFound indicates the company has no cash balance row to reverse against.
	ErrCashAccountNotFound = fmt.Errorf("%w: cash account", shared.ErrNotFound)
)

func (in CashAppend) validate() error {
	if in.Amount <= 0 {
		return ErrInvalidAmount
	}
	if in.Direction != DirectionCredit && in.Direction != DirectionDebit {
		return ErrInvalidDirection
	}
	return nil
}

func (in BankAppend) validate() error {
	if in.Amount <= 0 {
		return ErrInvalidAmount
	}
	if in.Direction != DirectionCredit && in.Direction != DirectionDebit {
		return ErrInvalidDirection
	}
	if in.BankID == 0 {
		return ErrBankNotFound
	}
	return nil
}

func (in CreditAppend) validate() error {
	if in.Amount <= 0 {
		return ErrInvalidAmount
	}
	switch in.Type {
	case CreditCustomer, CreditSupplier, CreditExpense:
		return nil
	default:
		return fmt.Errorf("%w: unknown credit type %q", shared.ErrValidation, in.Type)
	}
}
