package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Account   string             `json:"account" bson:"account" validate:"required,min=4,max=20,alphanum"`
	Email     string             `json:"email" bson:"email" validate:"required,email"`
	Name      string             `json:"name" bson:"name" validate:"max=50"`
	Age       int                `json:"age" bson:"age" validate:"gte=0,lte=150"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (u *User) Prepare(now time.Time) {
	u.ID = primitive.NewObjectID()
	u.CreatedAt = now
	u.UpdatedAt = now
}

func (u *User) DocumentID() primitive.ObjectID { return u.ID }
