// Package query turns listing query parameters into typed filters and renders them as
// MongoDB predicates. A filter only produces keys for constraints that were actually
// supplied, so an unset range never shows up as an empty sub-document.
package query

import (
	"net/url"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IntRange is a closed interval; either bound may be absent.
type IntRange struct {
	Gte *int
	Lte *int
}

func (r *IntRange) IsZero() bool {
	return r == nil || (r.Gte == nil && r.Lte == nil)
}

func (r *IntRange) BSON() bson.D {
	d := bson.D{}
	if r == nil {
		return d
	}
	if r.Gte != nil {
		d = append(d, bson.E{Key: "$gte", Value: *r.Gte})
	}
	if r.Lte != nil {
		d = append(d, bson.E{Key: "$lte", Value: *r.Lte})
	}
	return d
}

// ParseRange reads the two bound parameters. Values that do not parse are ignored;
// nil is returned when neither bound survives.
func ParseRange(q url.Values, gteKey, lteKey string) *IntRange {
	var r IntRange
	if n, ok := ParseInt(q.Get(gteKey)); ok {
		r.Gte = &n
	}
	if n, ok := ParseInt(q.Get(lteKey)); ok {
		r.Lte = &n
	}
	if r.IsZero() {
		return nil
	}
	return &r
}

// ParseInt reads a leading integer the way lenient form parsers do: surrounding spaces
// are skipped, an optional sign is honoured, a "0x" prefix switches to base 16 and
// anything after the digits is ignored. "12.9" is 12, "10abc" is 10, "0x10" is 16,
// "abc", "0x" and "" fail.
func ParseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	base := 10
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	const maxInt = int(^uint(0) >> 1)
	n, digits := 0, 0
	for ; digits < len(s); digits++ {
		d := digitValue(s[digits])
		if d < 0 || d >= base {
			break
		}
		if n > (maxInt-d)/base {
			return 0, false
		}
		n = n*base + d
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return -1
	}
}

// SplitKeywords splits a comma separated list keeping each token verbatim. Empty
// tokens are dropped, since an empty pattern would match every document.
func SplitKeywords(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, token := range strings.Split(raw, ",") {
		if token != "" {
			out = append(out, token)
		}
	}
	return out
}

// keywordPatterns builds one case-insensitive, unanchored, literal pattern per keyword.
func keywordPatterns(keywords []string) bson.A {
	patterns := make(bson.A, 0, len(keywords))
	for _, k := range keywords {
		patterns = append(patterns, primitive.Regex{Pattern: regexp.QuoteMeta(k), Options: "i"})
	}
	return patterns
}

// anyFieldMatches requires at least one of fields to match at least one pattern.
func anyFieldMatches(fields []string, keywords []string) bson.E {
	patterns := keywordPatterns(keywords)
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.D{{Key: f, Value: bson.D{{Key: "$in", Value: patterns}}}})
	}
	return bson.E{Key: "$or", Value: or}
}
