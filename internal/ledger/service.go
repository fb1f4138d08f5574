package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ledgerly/ledgerly/internal/shared"
)

// EntryKind is the caller-facing name for a manual movement.
type EntryKind string

const (
	EntryDeposit  EntryKind = "Deposit"
	EntryWithdraw EntryKind = "Withdraw"
)

func (k EntryKind) direction() (Direction, error) {
	switch k {
	case EntryDeposit:
		return DirectionCredit, nil
	case EntryWithdraw:
		return DirectionDebit, nil
	default:
		return "", fmt.Errorf("%w: entry type must be Deposit or Withdraw", shared.ErrValidation)
	}
}

// ManualEntryInput describes a hand-keyed cash or bank movement.
type ManualEntryInput struct {
	Kind        EntryKind
	BankID      int64 // zero for cash entries
	Amount      float64
	TxnDate     time.Time
	Description string
}

// Service handles manual ledger entries and read access for the ledger surface.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a ledger Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// AddCashEntry appends a manual cash movement.
func (s *Service) AddCashEntry(ctx context.Context, id shared.Identity, in ManualEntryInput) (int64, error) {
	dir, err := in.Kind.direction()
	if err != nil {
		return 0, err
	}
	txnDate := in.TxnDate
	if txnDate.IsZero() {
		txnDate = s.now()
	}
	var entryID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		entryID, err = tx.AppendCash(ctx, CashAppend{
			CompanyID: id.CompanyID,
			Direction: dir,
			Amount:    in.Amount,
			TxnDate:   txnDate,
			Ref:       Reference{Kind: RefManual},
			Note:      in.Description,
			Actor:     id.UserID,
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("manual cash entry",
		slog.Int64("company_id", id.CompanyID),
		slog.String("type", string(dir)),
		slog.Float64("amount", in.Amount))
	return entryID, nil
}

// AddBankEntry appends a manual bank movement.
func (s *Service) AddBankEntry(ctx context.Context, id shared.Identity, in ManualEntryInput) (int64, error) {
	dir, err := in.Kind.direction()
	if err != nil {
		return 0, err
	}
	if in.BankID == 0 {
		return 0, fmt.Errorf("%w: bank_id is required", shared.ErrValidation)
	}
	txnDate := in.TxnDate
	if txnDate.IsZero() {
		txnDate = s.now()
	}
	var entryID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		entryID, err = tx.AppendBank(ctx, BankAppend{
			CompanyID:   id.CompanyID,
			BankID:      in.BankID,
			Direction:   dir,
			Amount:      in.Amount,
			TxnDate:     txnDate,
			Ref:         Reference{Kind: RefManual},
			Description: in.Description,
			Actor:       id.UserID,
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("manual bank entry",
		slog.Int64("company_id", id.CompanyID),
		slog.Int64("bank_id", in.BankID),
		slog.String("type", string(dir)),
		slog.Float64("amount", in.Amount))
	return entryID, nil
}

// CashBalance returns the company's cash-in-hand balance.
func (s *Service) CashBalance(ctx context.Context, id shared.Identity) (float64, error) {
	return s.repo.CashBalance(ctx, id.CompanyID)
}

// ListCash returns a page of the company's cash ledger.
func (s *Service) ListCash(ctx context.Context, id shared.Identity, page, perPage int) ([]CashEntry, shared.Pagination, error) {
	p := shared.NewPagination(page, perPage, 0)
	entries, total, err := s.repo.ListCash(ctx, id.CompanyID, p.PerPage, p.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return entries, shared.NewPagination(p.Page, p.PerPage, total), nil
}

// ListBank returns a page of one bank account's ledger.
func (s *Service) ListBank(ctx context.Context, id shared.Identity, bankID int64, page, perPage int) ([]BankEntry, shared.Pagination, error) {
	p := shared.NewPagination(page, perPage, 0)
	entries, total, err := s.repo.ListBank(ctx, id.CompanyID, bankID, p.PerPage, p.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return entries, shared.NewPagination(p.Page, p.PerPage, total), nil
}

// ListCredit returns a page of the company's credit ledger, optionally by type.
func (s *Service) ListCredit(ctx context.Context, id shared.Identity, creditType CreditType, page, perPage int) ([]CreditEntry, shared.Pagination, error) {
	p := shared.NewPagination(page, perPage, 0)
	entries, total, err := s.repo.ListCredit(ctx, id.CompanyID, creditType, p.PerPage, p.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return entries, shared.NewPagination(p.Page, p.PerPage, total), nil
}
