package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"shop-crud/internal/apperror"
	"shop-crud/internal/events"
	"shop-crud/internal/logger"
	"shop-crud/internal/model"
	"shop-crud/internal/repository"
	"shop-crud/internal/validation"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Store is the persistence a resource service needs. The repositories implement it.
type Store[T any] interface {
	Insert(ctx context.Context, doc *T) error
	Find(ctx context.Context, filter bson.D) ([]T, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*T, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, set bson.M) (*T, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) (*T, error)
}

// crud holds the behaviour shared by every resource: ids that do not parse are reported
// as not found, writes are validated, and committed changes are announced.
type crud[T any] struct {
	name      string
	resource  string
	notFound  string
	store     Store[T]
	validator *validation.Validator
	publisher events.Publisher
	schema    schema
	tracer    trace.Tracer
	now       func() time.Time
}

func newCrud[T any](name, resource string, store Store[T], v *validation.Validator, pub events.Publisher) *crud[T] {
	if pub == nil {
		pub = events.Nop{}
	}
	return &crud[T]{
		name:      name,
		resource:  resource,
		notFound:  resource + " not found",
		store:     store,
		validator: v,
		publisher: pub,
		schema:    schemaOf[T](),
		tracer:    otel.Tracer(name),
		now:       time.Now,
	}
}

func (s *crud[T]) start(ctx context.Context, op string) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, s.name+"."+op)
	logger.Debug(ctx, "Service", slog.String("service", s.name), slog.String("operation", op))
	return ctx, span
}

// Create decodes body, validates the whole record and stores it.
func (s *crud[T]) Create(ctx context.Context, body []byte) (*T, error) {
	ctx, span := s.start(ctx, "Create")
	defer span.End()

	doc, _, err := decodeFields[T](body, s.schema)
	if err != nil {
		return nil, s.fail(span, err)
	}
	if err := s.validator.Struct(doc); err != nil {
		return nil, s.fail(span, err)
	}
	if err := s.store.Insert(ctx, doc); err != nil {
		return nil, s.fail(span, apperror.Internal(err))
	}

	if d, ok := any(doc).(model.Document); ok {
		s.publish(ctx, events.ActionCreated, d.DocumentID(), doc)
	}
	return doc, nil
}

func (s *crud[T]) find(ctx context.Context, filter bson.D) ([]T, error) {
	ctx, span := s.start(ctx, "List")
	defer span.End()

	logger.Info(ctx, "Listing "+s.resource+"s", slog.String("filter", filterString(filter)))

	docs, err := s.store.Find(ctx, filter)
	if err != nil {
		return nil, s.fail(span, apperror.Internal(err))
	}
	return docs, nil
}

func (s *crud[T]) Get(ctx context.Context, id string) (*T, error) {
	ctx, span := s.start(ctx, "Get")
	defer span.End()

	oid, err := s.parseID(id)
	if err != nil {
		return nil, s.fail(span, err)
	}
	doc, err := s.store.FindByID(ctx, oid)
	if err != nil {
		return nil, s.fail(span, s.storeError(err))
	}
	return doc, nil
}

// Update applies the known fields present in body. Only those fields are validated;
// the record is left unchanged when any of them is rejected.
func (s *crud[T]) Update(ctx context.Context, id string, body []byte) (*T, error) {
	ctx, span := s.start(ctx, "Update")
	defer span.End()

	patch, present, err := decodeFields[T](body, s.schema)
	if err != nil {
		return nil, s.fail(span, err)
	}
	oid, err := s.parseID(id)
	if err != nil {
		return nil, s.fail(span, err)
	}

	set, goNames := setOf(patch, present, s.schema)
	if err := s.validator.StructPartial(patch, goNames...); err != nil {
		return nil, s.fail(span, err)
	}

	doc, err := s.store.UpdateByID(ctx, oid, set)
	if err != nil {
		return nil, s.fail(span, s.storeError(err))
	}
	if len(set) > 0 {
		s.publish(ctx, events.ActionUpdated, oid, doc)
	}
	return doc, nil
}

// Delete removes the record. A second delete of the same id is not found.
func (s *crud[T]) Delete(ctx context.Context, id string) error {
	ctx, span := s.start(ctx, "Delete")
	defer span.End()

	oid, err := s.parseID(id)
	if err != nil {
		return s.fail(span, err)
	}
	doc, err := s.store.DeleteByID(ctx, oid)
	if err != nil {
		return s.fail(span, s.storeError(err))
	}

	s.publish(ctx, events.ActionDeleted, oid, doc)
	return nil
}

func (s *crud[T]) parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperror.NotFound(s.notFound, err)
	}
	return oid, nil
}

func (s *crud[T]) storeError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(s.notFound, err)
	}
	return apperror.Internal(err)
}

func (s *crud[T]) fail(span trace.Span, err error) error {
	if apperror.KindOf(err) == apperror.KindInternal {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// publish never fails the request; a lost event is only logged.
func (s *crud[T]) publish(ctx context.Context, action events.Action, id primitive.ObjectID, record any) {
	e := events.Event{
		Resource:   s.resource,
		Action:     action,
		ID:         id.Hex(),
		OccurredAt: s.now().UTC(),
		Record:     record,
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		logger.Warn(ctx, "Failed to publish change event",
			slog.String("resource", e.Resource),
			slog.String("action", string(e.Action)),
			slog.String("id", e.ID),
			slog.String("error", err.Error()),
		)
	}
}

func filterString(filter bson.D) string {
	b, err := bson.MarshalExtJSON(filter, false, false)
	if err != nil {
		return err.Error()
	}
	return string(b)
}
