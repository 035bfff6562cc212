package repository

import (
	"shop-crud/internal/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const ProductCollection = "products"

type ProductRepository struct {
	*store[model.Product]
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{
		store: newStore[model.Product](db, ProductCollection, "ProductRepository"),
	}
}
