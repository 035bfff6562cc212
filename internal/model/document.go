package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is implemented by every stored entity.
type Document interface {
	// Prepare assigns a fresh id and creation timestamps before insert.
	Prepare(now time.Time)
	DocumentID() primitive.ObjectID
}

// ReadOnlyFields are JSON keys a client can never write.
var ReadOnlyFields = map[string]bool{
	"_id":       true,
	"createdAt": true,
	"updatedAt": true,
}
