package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"shop-crud/internal/apperror"
	"shop-crud/internal/model"
	"shop-crud/internal/validation"

	"go.mongodb.org/mongo-driver/bson"
)

// formatMessage is reported for a body that is not a JSON object.
const formatMessage = "format error"

// field links the JSON name a client sends to the Go field validated and the stored key.
type field struct {
	jsonName string
	goName   string
	bsonName string
	index    int
}

// schema lists the writable fields of a document in declaration order.
type schema []field

func (s schema) lookup(jsonName string) (field, bool) {
	for _, f := range s {
		if f.jsonName == jsonName {
			return f, true
		}
	}
	return field{}, false
}

// schemaOf collects the writable fields of T, skipping read-only and "-" fields.
func schemaOf[T any]() schema {
	t := reflect.TypeOf((*T)(nil)).Elem()
	fields := make(schema, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		jsonName := tagName(f, "json")
		if jsonName == "-" || model.ReadOnlyFields[jsonName] {
			continue
		}
		fields = append(fields, field{
			jsonName: jsonName,
			goName:   f.Name,
			bsonName: tagName(f, "bson"),
			index:    i,
		})
	}
	return fields
}

func tagName(f reflect.StructField, key string) string {
	name := strings.Split(f.Tag.Get(key), ",")[0]
	if name == "" {
		return f.Name
	}
	return name
}

// decodeFields reads a JSON object into a T. Read-only and unknown keys are dropped.
// Fields are decoded in declaration order, so the first type mismatch reported is the
// first in the struct; the JSON names that were present come back in the same order.
func decodeFields[T any](body []byte, fields schema) (*T, []string, error) {
	var doc T
	if len(bytes.TrimSpace(body)) == 0 {
		return &doc, nil, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, nil, apperror.Format(formatMessage, err)
	}

	v := reflect.ValueOf(&doc).Elem()
	present := make([]string, 0, len(raw))
	for _, f := range fields {
		value, ok := raw[f.jsonName]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, v.Field(f.index).Addr().Interface()); err != nil {
			return nil, nil, decodeError(f.jsonName, err)
		}
		present = append(present, f.jsonName)
	}
	return &doc, present, nil
}

func decodeError(name string, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperror.Validation(name, validation.TypeMismatch(name, jsonType(typeErr.Type)))
	}
	return apperror.Format(formatMessage, err)
}

// jsonType names the JSON value a Go type accepts, with its article.
func jsonType(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	default:
		return "a valid value"
	}
}

// setOf renders the present fields of doc as a $set document keyed by bson name,
// and returns the Go names to validate.
func setOf[T any](doc *T, present []string, fields schema) (bson.M, []string) {
	v := reflect.ValueOf(doc).Elem()
	set := make(bson.M, len(present))
	goNames := make([]string, 0, len(present))
	for _, name := range present {
		f, _ := fields.lookup(name)
		set[f.bsonName] = v.Field(f.index).Interface()
		goNames = append(goNames, f.goName)
	}
	return set, goNames
}
