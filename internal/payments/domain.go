// Package payments settles lump payments against open documents, oldest first.
package payments

import (
	"fmt"
	"time"

	"github.com/ledgerly/ledgerly/internal/ledger"
	"github.com/ledgerly/ledgerly/internal/posting"
	"github.com/ledgerly/ledgerly/internal/shared"
)

// Side distinguishes money received from customers from money paid to suppliers.
type Side string

const (
	SideReceivable Side = "Receivable"
	SidePayable    Side = "Payable"
)

// DocumentKind returns the source-document kind a side settles against.
func (s Side) DocumentKind() (posting.DocumentKind, error) {
	switch s {
	case SideReceivable:
		return posting.KindSale, nil
	case SidePayable:
		return posting.KindPurchase, nil
	default:
		return "", fmt.Errorf("%w: side must be Receivable or Payable", shared.ErrValidation)
	}
}

// Direction returns the ledger direction of the recorded payment.
func (s Side) Direction() ledger.Direction {
	if s == SidePayable {
		return ledger.DirectionDebit
	}
	return ledger.DirectionCredit
}

// RefKind tags the ledger entry so reporting can exclude settlements from
// revenue and expense aggregates.
func (s Side) RefKind() ledger.RefKind {
	if s == SidePayable {
		return ledger.RefSupplierPayment
	}
	return ledger.RefCustomerPayment
}

// PartyMatch identifies the counterparty: by master record id when known,
// otherwise by name plus contact for parties without one.
type PartyMatch struct {
	PartyID *int64
	Name    string
	Contact string
}

func (m PartyMatch) validate() error {
	if m.PartyID == nil && (m.Name == "" || m.Contact == "") {
		return fmt.Errorf("%w: party_id or name and contact required", shared.ErrValidation)
	}
	return nil
}

// AllocateInput is the command for receiving or paying a lump amount.
type AllocateInput struct {
	Side    Side
	Party   PartyMatch
	Amount  float64
	Method  posting.PaymentMethod // Cash or Online
	BankID  *int64
	Date    time.Time
}

// Payment is the recorded receipt/disbursement history row. It is not itself a
// ledger entry; the ledger entry references it by id.
type Payment struct {
	ID           int64                 `json:"id"`
	CompanyID    int64                 `json:"company_id"`
	Side         Side                  `json:"side"`
	PartyID      *int64                `json:"party_id"`
	PartyName    string                `json:"party_name"`
	PartyContact string                `json:"party_contact"`
	Amount       float64               `json:"amount"`
	Method       posting.PaymentMethod `json:"payment_type"`
	BankID       *int64                `json:"bank_id"`
	CreatedBy    int64                 `json:"created_by"`
	CreatedAt    time.Time             `json:"created_at"`
}

// OpenDocument is a document with outstanding balance, ordered oldest first.
type OpenDocument struct {
	ID          int64
	Date        time.Time
	Outstanding float64
}

// Result reports an allocation outcome.
type Result struct {
	PaymentID         int64   `json:"payment_id"`
	DocumentsAffected int     `json:"documents_affected"`
	Allocated         float64 `json:"allocated"`
}

// OutstandingParty is one row of the outstanding-by-party summary.
type OutstandingParty struct {
	PartyID     *int64  `json:"party_id"`
	Name        string  `json:"name"`
	Contact     string  `json:"contact"`
	Total       float64 `json:"total"`
	Outstanding float64 `json:"outstanding"`
}

var (
	// ErrUnallocatedAmount rejects payments exceeding the party's total outstanding.
	ErrUnallocatedAmount = fmt.Errorf("%w: payment exceeds outstanding balance", shared.ErrValidation)
	// ErrInvalidMethod rejects methods other than Cash or Online.
	ErrInvalidMethod = fmt.Errorf("%w: payment type must be Cash or Online", shared.ErrValidation)
)

func (in AllocateInput) validate() error {
	if in.Amount <= 0 {
		return posting.ErrInvalidAmount
	}
	if err := in.Party.validate(); err != nil {
		return err
	}
	switch in.Method {
	case posting.PayCash:
	case posting.PayOnline:
		if in.BankID == nil || *in.BankID == 0 {
			return posting.ErrBankRequired
		}
	default:
		return ErrInvalidMethod
	}
	if _, err := in.Side.DocumentKind(); err != nil {
		return err
	}
	return nil
}
