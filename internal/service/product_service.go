package service

import (
	"context"

	"shop-crud/internal/events"
	"shop-crud/internal/model"
	"shop-crud/internal/query"
	"shop-crud/internal/validation"
)

type ProductService struct {
	*crud[model.Product]
}

func NewProductService(store Store[model.Product], v *validation.Validator, pub events.Publisher) *ProductService {
	return &ProductService{crud: newCrud[model.Product]("ProductService", "product", store, v, pub)}
}

func (s *ProductService) List(ctx context.Context, f query.ProductFilter) ([]model.Product, error) {
	return s.find(ctx, f.BSON())
}
