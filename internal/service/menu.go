package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atinyakov/GreenCart/internal/catalog"
	"github.com/atinyakov/GreenCart/internal/models"
	"github.com/atinyakov/GreenCart/internal/repository"
	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown states, dispensaries and products.
var ErrNotFound = errors.New("not found")

// ProductRepository defines the persistence operations needed by the MenuService.
type ProductRepository interface {
	ListByDispensary(ctx context.Context, dispensaryID string) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Upsert(ctx context.Context, products []models.Product) error
	Delete(ctx context.Context, id string) error
}

// MenuService answers directory and menu queries.
type MenuService struct {
	dir  *catalog.Directory
	repo ProductRepository
}

// NewMenuService constructs a MenuService over dir and repo.
func NewMenuService(dir *catalog.Directory, repo ProductRepository) *MenuService {
	return &MenuService{dir: dir, repo: repo}
}

// States lists the covered states.
func (s *MenuService) States() []models.State {
	return s.dir.States()
}

// SearchState resolves a name or abbreviation to a state and its page route.
func (s *MenuService) SearchState(query string) (models.State, string, error) {
	st, ok := s.dir.FindState(query)
	if !ok {
		return models.State{}, "", ErrNotFound
	}
	return st, catalog.StateRoute(st), nil
}

// Dispensaries lists the dispensaries of the state identified by slug or name.
func (s *MenuService) Dispensaries(state string) ([]models.Dispensary, error) {
	st, ok := s.dir.StateBySlug(state)
	if !ok {
		st, ok = s.dir.FindState(state)
	}
	if !ok {
		return nil, ErrNotFound
	}
	entries, _ := s.dir.ByState(st.Name)
	return entries, nil
}

// Dispensary returns one directory entry.
func (s *MenuService) Dispensary(id string) (models.Dispensary, error) {
	d, ok := s.dir.Dispensary(id)
	if !ok {
		return models.Dispensary{}, ErrNotFound
	}
	return d, nil
}

// Menu returns the products of a known dispensary.
func (s *MenuService) Menu(ctx context.Context, dispensaryID string) ([]models.Product, error) {
	if _, ok := s.dir.Dispensary(dispensaryID); !ok {
		return nil, ErrNotFound
	}
	return s.repo.ListByDispensary(ctx, dispensaryID)
}

// Product returns a single product.
func (s *MenuService) Product(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return p, err
}

// SaveProducts validates and upserts products. Missing ids are generated.
func (s *MenuService) SaveProducts(ctx context.Context, products []models.Product) ([]models.Product, error) {
	out := make([]models.Product, 0, len(products))
	for i, p := range products {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return nil, fmt.Errorf("%w: product %d has no name", ErrInvalidInput, i)
		}
		if p.PriceCents < 0 {
			return nil, fmt.Errorf("%w: product %d has a negative price", ErrInvalidInput, i)
		}
		if _, ok := s.dir.Dispensary(p.DispensaryID); !ok {
			return nil, fmt.Errorf("%w: product %d references unknown dispensary %q", ErrInvalidInput, i, p.DispensaryID)
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		out = append(out, p)
	}
	if err := s.repo.Upsert(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteProduct removes a product from its menu.
func (s *MenuService) DeleteProduct(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
