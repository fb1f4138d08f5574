package payments

import (
	"context"
	"log/slog"
	"time"

	"github.com/ledgerly/ledgerly/internal/ledger"
	"github.com/ledgerly/ledgerly/internal/posting"
	"github.com/ledgerly/ledgerly/internal/shared"
)

// Allocator applies lump payments to a party's open documents, oldest first,
// then records the receipt in the payment history and the cash or bank ledger.
type Allocator struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewAllocator constructs the payment allocator.
func NewAllocator(repo Repository, logger *slog.Logger) *Allocator {
	return &Allocator{repo: repo, logger: logger, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (a *Allocator) WithNow(now func() time.Time) {
	if now != nil {
		a.now = now
	}
}

// Allocate settles the amount against open documents in FIFO order
// (document date ascending, id ascending). The whole allocation, the payment
// row and the ledger entry commit or roll back as one transaction. A payment
// larger than the party's total outstanding is rejected, never absorbed.
func (a *Allocator) Allocate(ctx context.Context, id shared.Identity, in AllocateInput) (Result, error) {
	if err := in.validate(); err != nil {
		return Result{}, err
	}
	kind, err := in.Side.DocumentKind()
	if err != nil {
		return Result{}, err
	}
	date := in.Date
	if date.IsZero() {
		date = a.now()
	}

	var result Result
	err = a.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		open, err := tx.ListOpenDocumentsForUpdate(ctx, id.CompanyID, kind, in.Party)
		if err != nil {
			return err
		}
		remaining := in.Amount
		for _, doc := range open {
			if remaining <= 0 {
				break
			}
			pay := min(remaining, doc.Outstanding)
			if err := tx.SettleDocument(ctx, id.CompanyID, doc.ID, pay); err != nil {
				return err
			}
			remaining -= pay
			result.DocumentsAffected++
		}
		if remaining > 0 {
			return ErrUnallocatedAmount
		}
		result.Allocated = in.Amount

		paymentID, err := tx.InsertPayment(ctx, Payment{
			CompanyID:    id.CompanyID,
			Side:         in.Side,
			PartyID:      in.Party.PartyID,
			PartyName:    in.Party.Name,
			PartyContact: in.Party.Contact,
			Amount:       in.Amount,
			Method:       in.Method,
			BankID:       in.BankID,
			CreatedBy:    id.UserID,
		})
		if err != nil {
			return err
		}
		result.PaymentID = paymentID

		ref := ledger.Reference{Kind: in.Side.RefKind(), ID: paymentID}
		note := paymentNote(in)
		if in.Method == posting.PayCash {
			_, err = tx.AppendCash(ctx, ledger.CashAppend{
				CompanyID: id.CompanyID,
				Direction: in.Side.Direction(),
				Amount:    in.Amount,
				TxnDate:   date,
				Ref:       ref,
				Note:      note,
				Actor:     id.UserID,
			})
			return err
		}
		_, err = tx.AppendBank(ctx, ledger.BankAppend{
			CompanyID:   id.CompanyID,
			BankID:      *in.BankID,
			Direction:   in.Side.Direction(),
			Amount:      in.Amount,
			TxnDate:     date,
			Ref:         ref,
			Description: note,
			Actor:       id.UserID,
		})
		return err
	})
	if err != nil {
		return Result{}, err
	}

	a.logger.Info("payment allocated",
		slog.String("side", string(in.Side)),
		slog.Int64("company_id", id.CompanyID),
		slog.Float64("amount", in.Amount),
		slog.Int("documents_affected", result.DocumentsAffected))
	return result, nil
}

// Outstanding lists parties with open balances for a side, largest first.
func (a *Allocator) Outstanding(ctx context.Context, id shared.Identity, side Side) ([]OutstandingParty, error) {
	kind, err := side.DocumentKind()
	if err != nil {
		return nil, err
	}
	return a.repo.OutstandingByParty(ctx, id.CompanyID, kind)
}

// History returns a page of recorded payments for a side.
func (a *Allocator) History(ctx context.Context, id shared.Identity, side Side, page, perPage int) ([]Payment, shared.Pagination, error) {
	if _, err := side.DocumentKind(); err != nil {
		return nil, shared.Pagination{}, err
	}
	p := shared.NewPagination(page, perPage, 0)
	rows, total, err := a.repo.ListPayments(ctx, id.CompanyID, side, p.PerPage, p.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return rows, shared.NewPagination(p.Page, p.PerPage, total), nil
}

func paymentNote(in AllocateInput) string {
	if in.Side == SidePayable {
		return "Paid to " + in.Party.Name
	}
	return "Received from " + in.Party.Name
}
