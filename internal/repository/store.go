package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"shop-crud/internal/logger"
	"shop-crud/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrNotFound is returned when no document has the requested id.
var ErrNotFound = errors.New("document not found")

// store implements the collection operations shared by every resource.
type store[T any] struct {
	collection *mongo.Collection
	name       string
	tracer     trace.Tracer
	now        func() time.Time
}

func newStore[T any](db *mongo.Database, collection, name string) *store[T] {
	return &store[T]{
		collection: db.Collection(collection),
		name:       name,
		tracer:     otel.Tracer(name),
		now:        time.Now,
	}
}

func (s *store[T]) start(ctx context.Context, op string) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, s.name+"."+op,
		trace.WithAttributes(attribute.String("db.collection", s.collection.Name())))
	logger.Debug(ctx, "Repository", logSpan(s.name, op)...)
	return ctx, span
}

// Insert stores doc, first letting it assign its id and timestamps.
func (s *store[T]) Insert(ctx context.Context, doc *T) error {
	ctx, span := s.start(ctx, "Insert")
	defer span.End()

	if d, ok := any(doc).(model.Document); ok {
		d.Prepare(s.now().UTC().Truncate(time.Millisecond))
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		span.RecordError(err)
		return fmt.Errorf("%s insert: %w", s.name, err)
	}
	return nil
}

// Find returns every document matching filter. The result is never nil.
func (s *store[T]) Find(ctx context.Context, filter bson.D) ([]T, error) {
	ctx, span := s.start(ctx, "Find")
	defer span.End()

	cursor, err := s.collection.Find(ctx, filter)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%s find: %w", s.name, err)
	}
	defer cursor.Close(ctx)

	docs := make([]T, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%s decode: %w", s.name, err)
	}
	span.SetAttributes(attribute.Int("db.result_count", len(docs)))
	return docs, nil
}

func (s *store[T]) FindByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	ctx, span := s.start(ctx, "FindByID")
	defer span.End()

	var doc T
	err := s.collection.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	return s.single(span, "find", &doc, err)
}

// UpdateByID applies set and returns the document as it is after the update.
// An empty set leaves the document untouched.
func (s *store[T]) UpdateByID(ctx context.Context, id primitive.ObjectID, set bson.M) (*T, error) {
	if len(set) == 0 {
		return s.FindByID(ctx, id)
	}

	ctx, span := s.start(ctx, "UpdateByID")
	defer span.End()

	fields := bson.M{"updatedAt": s.now().UTC().Truncate(time.Millisecond)}
	for k, v := range set {
		fields[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc T
	err := s.collection.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$set", Value: fields}}, opts).Decode(&doc)
	return s.single(span, "update", &doc, err)
}

// DeleteByID removes the document and returns what was removed.
func (s *store[T]) DeleteByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	ctx, span := s.start(ctx, "DeleteByID")
	defer span.End()

	var doc T
	err := s.collection.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	return s.single(span, "delete", &doc, err)
}

func (s *store[T]) single(span trace.Span, op string, doc *T, err error) (*T, error) {
	switch {
	case err == nil:
		return doc, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, ErrNotFound
	default:
		span.RecordError(err)
		return nil, fmt.Errorf("%s %s: %w", s.name, op, err)
	}
}

func logSpan(name, op string) []slog.Attr {
	return []slog.Attr{
		slog.String("repository", name),
		slog.String("operation", op),
	}
}
