package query

import (
	"net/url"

	"go.mongodb.org/mongo-driver/bson"
)

// UserFilter supports exact matches on identity fields and an age range.
type UserFilter struct {
	Account string
	Email   string
	Name    string
	Age     *IntRange
}

func ParseUserFilter(q url.Values) UserFilter {
	return UserFilter{
		Account: q.Get("account"),
		Email:   q.Get("email"),
		Name:    q.Get("name"),
		Age:     ParseRange(q, "agegte", "agelte"),
	}
}

func (f UserFilter) BSON() bson.D {
	d := bson.D{}
	if f.Account != "" {
		d = append(d, bson.E{Key: "account", Value: f.Account})
	}
	if f.Email != "" {
		d = append(d, bson.E{Key: "email", Value: f.Email})
	}
	if f.Name != "" {
		d = append(d, bson.E{Key: "name", Value: f.Name})
	}
	if !f.Age.IsZero() {
		d = append(d, bson.E{Key: "age", Value: f.Age.BSON()})
	}
	return d
}
