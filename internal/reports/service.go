package reports

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ledgerly/ledgerly/internal/posting"
	"github.com/ledgerly/ledgerly/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Balances fans out the four independent balance queries.
func (s *Service) Balances(ctx context.Context, id shared.Identity) (Balances, error) {
	var b Balances
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.repo.CashInHand(ctx, id.CompanyID)
		b.CashInHand = v
		return err
	})
	g.Go(func() error {
		v, err := s.repo.TotalBankBalance(ctx, id.CompanyID)
		b.BankBalance = v
		return err
	})
	g.Go(func() error {
		v, err := s.repo.TotalOutstanding(ctx, id.CompanyID, posting.KindSale)
		b.Receivable = v
		return err
	})
	g.Go(func() error {
		v, err := s.repo.TotalOutstanding(ctx, id.CompanyID, posting.KindPurchase)
		b.Payable = v
		return err
	})
	if err := g.Wait(); err != nil {
		return Balances{}, err
	}
	return b, nil
}

// Summary aggregates document totals and ledger flows for a date range.
func (s *Service) Summary(ctx context.Context, id shared.Identity, from, to time.Time) (PeriodSummary, error) {
	sum := PeriodSummary{From: from, To: to}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sum.Sales, sum.Purchases, sum.Expenses, sum.Income, err = s.repo.DocumentTotals(ctx, id.CompanyID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		sum.CashIn, sum.CashOut, err = s.repo.CashFlow(ctx, id.CompanyID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		sum.BankIn, sum.BankOut, err = s.repo.BankFlow(ctx, id.CompanyID, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return PeriodSummary{}, err
	}
	return sum, nil
}

// Daily returns the summary for a single day.
func (s *Service) Daily(ctx context.Context, id shared.Identity, day time.Time) (PeriodSummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return s.Summary(ctx, id, start, start.AddDate(0, 0, 1).Add(-time.Second))
}

// Monthly returns the summary for a calendar month.
func (s *Service) Monthly(ctx context.Context, id shared.Identity, year int, month time.Month) (PeriodSummary, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return s.Summary(ctx, id, start, start.AddDate(0, 1, 0).Add(-time.Second))
}

// Banks returns the per-account balance summary.
func (s *Service) Banks(ctx context.Context, id shared.Identity) ([]BankBalance, error) {
	return s.repo.BankBalances(ctx, id.CompanyID)
}

// GST reports outward and inward taxable value for a filing period.
func (s *Service) GST(ctx context.Context, id shared.Identity, from, to time.Time) (GSTSummary, error) {
	sales, purchases, _, _, err := s.repo.DocumentTotals(ctx, id.CompanyID, from, to)
	if err != nil {
		return GSTSummary{}, err
	}
	return GSTSummary{From: from, To: to, OutwardTaxable: sales, InwardTaxable: purchases}, nil
}
