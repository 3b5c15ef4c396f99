// Package usecase implements the business logic for the company reference table.
package usecase

import (
	"context"
	"errors"

	"stock_predictor/internal/feature/symbollist/domain/entity"
)

// SymbolRepository abstracts the persistence layer for the reference table.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SymbolRepository interface {
	ListAll(ctx context.Context) ([]entity.Symbol, error)
	FindByCode(ctx context.Context, code string) (*entity.Symbol, error)
}

// SymbolUsecase provides read access to the reference table.
type SymbolUsecase struct {
	repo SymbolRepository
}

// NewSymbolUsecase creates a new SymbolUsecase with the given repository.
func NewSymbolUsecase(r SymbolRepository) *SymbolUsecase {
	return &SymbolUsecase{repo: r}
}

// ListSymbols returns every reference entry in import order.
func (u *SymbolUsecase) ListSymbols(ctx context.Context) ([]entity.Symbol, error) {
	return u.repo.ListAll(ctx)
}

// Lookup resolves a series code to its company name.
// A missing code is reported through ok rather than as an error.
func (u *SymbolUsecase) Lookup(ctx context.Context, code string) (string, bool, error) {
	s, err := u.repo.FindByCode(ctx, code)
	if errors.Is(err, ErrSymbolNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return s.Name, true, nil
}
