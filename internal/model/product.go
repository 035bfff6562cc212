package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product field order is the order validation failures are reported in.
type Product struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name" validate:"required,max=100"`
	Description string             `json:"description" bson:"description" validate:"max=1000"`
	Price       *float64           `json:"price" bson:"price" validate:"required,gte=0"`
	Stock       int                `json:"stock" bson:"stock" validate:"gte=0"`
	Image       string             `json:"image,omitempty" bson:"image,omitempty" validate:"omitempty,url"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (p *Product) Prepare(now time.Time) {
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
}

func (p *Product) DocumentID() primitive.ObjectID { return p.ID }
