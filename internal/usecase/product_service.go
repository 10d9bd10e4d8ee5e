package usecase

import (
	"context"

	"github.com/laxmi8801/data-extractor/internal/domain"
)

// ProductService reads stored product records
type ProductService struct {
	repo domain.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(repo domain.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// Lookup finds a stored product by id, or by exact product name when id is
// empty. At least one of them must be given.
func (s *ProductService) Lookup(ctx context.Context, id, name string) (*domain.StoredProduct, error) {
	switch {
	case id != "":
		return s.repo.FindByID(ctx, id)
	case name != "":
		return s.repo.FindByName(ctx, name)
	default:
		return nil, domain.ErrInvalidRequest
	}
}
