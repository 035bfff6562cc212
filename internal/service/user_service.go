package service

import (
	"context"

	"shop-crud/internal/events"
	"shop-crud/internal/model"
	"shop-crud/internal/query"
	"shop-crud/internal/validation"
)

type UserService struct {
	*crud[model.User]
}

func NewUserService(store Store[model.User], v *validation.Validator, pub events.Publisher) *UserService {
	return &UserService{crud: newCrud[model.User]("UserService", "user", store, v, pub)}
}

func (s *UserService) List(ctx context.Context, f query.UserFilter) ([]model.User, error) {
	return s.find(ctx, f.BSON())
}
