package query

import (
	"net/url"

	"go.mongodb.org/mongo-driver/bson"
)

// ProductFilter is the set of constraints accepted by the product listing.
type ProductFilter struct {
	Price    *IntRange
	Keywords []string
}

// ParseProductFilter reads pricegte, pricelte and keywords.
func ParseProductFilter(q url.Values) ProductFilter {
	return ProductFilter{
		Price:    ParseRange(q, "pricegte", "pricelte"),
		Keywords: SplitKeywords(q.Get("keywords")),
	}
}

// BSON renders the predicate: price bounds share one sub-document, and keywords
// match when name or description contains any of them.
func (f ProductFilter) BSON() bson.D {
	d := bson.D{}
	if !f.Price.IsZero() {
		d = append(d, bson.E{Key: "price", Value: f.Price.BSON()})
	}
	if len(f.Keywords) > 0 {
		d = append(d, anyFieldMatches([]string{"name", "description"}, f.Keywords))
	}
	return d
}
