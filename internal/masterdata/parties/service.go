package parties

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

func (s *Service) List(ctx context.Context, id shared.Identity, filters ListFilters) ([]Party, int, error) {
	if filters.Type != "" && filters.Type != TypeCustomer && filters.Type != TypeSupplier {
		return nil, 0, fmt.Errorf("%w: type must be Customer or Supplier", shared.ErrValidation)
	}
	return s.repo.List(ctx, id.CompanyID, filters)
}

func (s *Service) Get(ctx context.Context, id shared.Identity, partyID int64) (Party, error) {
	if partyID <= 0 {
		return Party{}, fmt.Errorf("%w: invalid party id", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id.CompanyID, partyID)
}

func (s *Service) Create(ctx context.Context, id shared.Identity, p Party) (Party, error) {
	if err := validate(p); err != nil {
		return Party{}, err
	}
	p.CompanyID = id.CompanyID
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id shared.Identity, p Party) error {
	if p.ID <= 0 {
		return fmt.Errorf("%w: invalid party id", shared.ErrValidation)
	}
	if err := validate(p); err != nil {
		return err
	}
	p.CompanyID = id.CompanyID
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id shared.Identity, partyID int64) error {
	if partyID <= 0 {
		return fmt.Errorf("%w: invalid party id", shared.ErrValidation)
	}
	return s.repo.Delete(ctx, id.CompanyID, partyID)
}

func validate(p Party) error {
	if p.Type != TypeCustomer && p.Type != TypeSupplier {
		return fmt.Errorf("%w: type must be Customer or Supplier", shared.ErrValidation)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: party name required", shared.ErrValidation)
	}
	return nil
}
