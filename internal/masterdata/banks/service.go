package banks

import (
	"context"
	"fmt"

	"github.com/ledgerly/ledgerly/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, id shared.Identity) ([]Bank, error) {
	return s.repo.List(ctx, id.CompanyID)
}

func (s *Service) Get(ctx context.Context, id shared.Identity, bankID int64) (Bank, error) {
	if bankID <= 0 {
		return Bank{}, fmt.Errorf("%w: invalid bank id", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id.CompanyID, bankID)
}

func (s *Service) Create(ctx context.Context, id shared.Identity, b Bank) (Bank, error) {
	if b.Name == "" || b.AccountNumber == "" {
		return Bank{}, fmt.Errorf("%w: bank name and account number required", shared.ErrValidation)
	}
	if b.AccountBalance < 0 {
		return Bank{}, fmt.Errorf("%w: opening balance cannot be negative", shared.ErrValidation)
	}
	b.CompanyID = id.CompanyID
	return s.repo.Create(ctx, b)
}

func (s *Service) Update(ctx context.Context, id shared.Identity, b Bank) error {
	if b.ID <= 0 {
		return fmt.Errorf("%w: invalid bank id", shared.ErrValidation)
	}
	if b.Name == "" || b.AccountNumber == "" {
		return fmt.Errorf("%w: bank name and account number required", shared.ErrValidation)
	}
	b.CompanyID = id.CompanyID
	return s.repo.Update(ctx, b)
}

func (s *Service) Delete(ctx context.Context, id shared.Identity, bankID int64) error {
	if bankID <= 0 {
		return fmt.Errorf("%w: invalid bank id", shared.ErrValidation)
	}
	return s.repo.SoftDelete(ctx, id.CompanyID, bankID)
}
