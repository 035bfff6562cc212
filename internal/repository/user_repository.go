package repository

import (
	"shop-crud/internal/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const UserCollection = "users"

type UserRepository struct {
	*store[model.User]
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		store: newStore[model.User](db, UserCollection, "UserRepository"),
	}
}
