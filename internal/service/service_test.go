package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"shop-crud/internal/apperror"
	"shop-crud/internal/events"
	"shop-crud/internal/model"
	"shop-crud/internal/query"
	"shop-crud/internal/repository"
	"shop-crud/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeStore[T any] struct {
	docs        map[primitive.ObjectID]*T
	lastFilter  bson.D
	lastSet     bson.M
	updateCalls int
	err         error
}

func newFakeStore[T any]() *fakeStore[T] {
	return &fakeStore[T]{docs: map[primitive.ObjectID]*T{}}
}

func (f *fakeStore[T]) Insert(_ context.Context, doc *T) error {
	if f.err != nil {
		return f.err
	}
	d := any(doc).(model.Document)
	d.Prepare(time.Now())
	f.docs[d.DocumentID()] = doc
	return nil
}

func (f *fakeStore[T]) Find(_ context.Context, filter bson.D) ([]T, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	out := make([]T, 0, len(f.docs))
	for _, d := range f.docs {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeStore[T]) FindByID(_ context.Context, id primitive.ObjectID) (*T, error) {
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return d, nil
}

func (f *fakeStore[T]) UpdateByID(ctx context.Context, id primitive.ObjectID, set bson.M) (*T, error) {
	f.updateCalls++
	f.lastSet = set
	return f.FindByID(ctx, id)
}

func (f *fakeStore[T]) DeleteByID(_ context.Context, id primitive.ObjectID) (*T, error) {
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(f.docs, id)
	return d, nil
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func newProductService() (*ProductService, *fakeStore[model.Product], *recordingPublisher) {
	store := newFakeStore[model.Product]()
	pub := &recordingPublisher{}
	return NewProductService(store, validation.New(), pub), store, pub
}

func seedProduct(t *testing.T, store *fakeStore[model.Product]) *model.Product {
	t.Helper()
	price := 10.0
	p := &model.Product{Name: "Lamp", Price: &price, Stock: 1}
	require.NoError(t, store.Insert(context.Background(), p))
	return p
}

func requireKind(t *testing.T, err error, kind apperror.Kind) *apperror.Error {
	t.Helper()
	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr), "expected *apperror.Error, got %v", err)
	require.Equal(t, kind, appErr.Kind, appErr.Error())
	return appErr
}

func TestCreateEchoesStoredRecord(t *testing.T) {
	svc, store, pub := newProductService()

	body := `{"name":"Lamp","price":10,"stock":2,"_id":"not-an-id","extra":true}`
	p, err := svc.Create(context.Background(), []byte(body))
	require.NoError(t, err)

	assert.False(t, p.ID.IsZero())
	assert.Equal(t, "Lamp", p.Name)
	assert.Equal(t, 10.0, *p.Price)
	assert.Equal(t, 2, p.Stock)
	assert.Len(t, store.docs, 1)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.ActionCreated, pub.events[0].Action)
	assert.Equal(t, "product", pub.events[0].Resource)
	assert.Equal(t, p.ID.Hex(), pub.events[0].ID)
}

func TestCreateReportsFirstViolation(t *testing.T) {
	svc, store, pub := newProductService()

	_, err := svc.Create(context.Background(), []byte(`{"price":-1,"stock":-1}`))
	appErr := requireKind(t, err, apperror.KindValidation)
	assert.Equal(t, "name is required", appErr.Message)
	assert.Empty(t, store.docs)
	assert.Empty(t, pub.events)
}

func TestCreateTypeMismatchIsValidation(t *testing.T) {
	svc, store, _ := newProductService()

	_, err := svc.Create(context.Background(), []byte(`{"name":"Lamp","price":"abc"}`))
	appErr := requireKind(t, err, apperror.KindValidation)
	assert.Equal(t, "price", appErr.Field)
	assert.Equal(t, "price must be a number", appErr.Message)
	assert.Empty(t, store.docs)
}

func TestCreateMalformedBody(t *testing.T) {
	svc, _, _ := newProductService()

	for _, body := range []string{`{"name":`, `[1,2]`, `"lamp"`} {
		_, err := svc.Create(context.Background(), []byte(body))
		appErr := requireKind(t, err, apperror.KindFormat)
		assert.Equal(t, "format error", appErr.Message)
	}
}

func TestCreateEmptyBodyIsValidated(t *testing.T) {
	svc, _, _ := newProductService()

	_, err := svc.Create(context.Background(), nil)
	appErr := requireKind(t, err, apperror.KindValidation)
	assert.Equal(t, "name is required", appErr.Message)
}

func TestGetMalformedIDIsNotFound(t *testing.T) {
	svc, _, _ := newProductService()

	for _, id := range []string{"123", "zzzzzzzzzzzzzzzzzzzzzzzz", primitive.NewObjectID().Hex()} {
		_, err := svc.Get(context.Background(), id)
		appErr := requireKind(t, err, apperror.KindNotFound)
		assert.Equal(t, "product not found", appErr.Message)
	}
}

func TestGet(t *testing.T) {
	svc, store, _ := newProductService()
	seeded := seedProduct(t, store)

	p, err := svc.Get(context.Background(), seeded.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, seeded, p)
}

func TestUpdateSetsOnlyKnownPresentFields(t *testing.T) {
	svc, store, pub := newProductService()
	seeded := seedProduct(t, store)

	body := `{"stock":5,"createdAt":"2020-01-01T00:00:00Z","_id":"x","bogus":1}`
	_, err := svc.Update(context.Background(), seeded.ID.Hex(), []byte(body))
	require.NoError(t, err)

	assert.Equal(t, bson.M{"stock": 5}, store.lastSet)
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.ActionUpdated, pub.events[0].Action)
}

func TestUpdateInvalidLeavesRecordUnchanged(t *testing.T) {
	svc, store, pub := newProductService()
	seeded := seedProduct(t, store)

	_, err := svc.Update(context.Background(), seeded.ID.Hex(), []byte(`{"price":-3}`))
	appErr := requireKind(t, err, apperror.KindValidation)
	assert.Equal(t, "price must be greater than or equal to 0", appErr.Message)
	assert.Zero(t, store.updateCalls)
	assert.Equal(t, 10.0, *store.docs[seeded.ID].Price)
	assert.Empty(t, pub.events)
}

func TestUpdateNullRequiredField(t *testing.T) {
	svc, store, _ := newProductService()
	seeded := seedProduct(t, store)

	_, err := svc.Update(context.Background(), seeded.ID.Hex(), []byte(`{"price":null}`))
	appErr := requireKind(t, err, apperror.KindValidation)
	assert.Equal(t, "price is required", appErr.Message)
}

func TestUpdateEmptyPatchReturnsCurrentRecord(t *testing.T) {
	svc, store, pub := newProductService()
	seeded := seedProduct(t, store)

	p, err := svc.Update(context.Background(), seeded.ID.Hex(), []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, seeded.Name, p.Name)
	assert.Empty(t, store.lastSet)
	assert.Empty(t, pub.events)
}

func TestUpdateMissingRecord(t *testing.T) {
	svc, _, _ := newProductService()

	_, err := svc.Update(context.Background(), primitive.NewObjectID().Hex(), []byte(`{"stock":1}`))
	requireKind(t, err, apperror.KindNotFound)

	_, err = svc.Update(context.Background(), "bad", []byte(`{"stock":1}`))
	requireKind(t, err, apperror.KindNotFound)
}

func TestDeleteIsNotRepeatable(t *testing.T) {
	svc, store, pub := newProductService()
	seeded := seedProduct(t, store)
	id := seeded.ID.Hex()

	require.NoError(t, svc.Delete(context.Background(), id))
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.ActionDeleted, pub.events[0].Action)

	err := svc.Delete(context.Background(), id)
	appErr := requireKind(t, err, apperror.KindNotFound)
	assert.Equal(t, "product not found", appErr.Message)
}

func TestStoreFailureIsInternal(t *testing.T) {
	svc, store, _ := newProductService()
	store.err = errors.New("connection reset")

	_, err := svc.List(context.Background(), query.ProductFilter{})
	requireKind(t, err, apperror.KindInternal)

	_, err = svc.Get(context.Background(), primitive.NewObjectID().Hex())
	requireKind(t, err, apperror.KindInternal)

	_, err = svc.Create(context.Background(), []byte(`{"name":"Lamp","price":1}`))
	requireKind(t, err, apperror.KindInternal)
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	svc, store, pub := newProductService()
	pub.err = errors.New("broker down")

	_, err := svc.Create(context.Background(), []byte(`{"name":"Lamp","price":1}`))
	require.NoError(t, err)
	assert.Len(t, store.docs, 1)
}

func TestListPassesRenderedFilter(t *testing.T) {
	svc, store, _ := newProductService()
	seedProduct(t, store)

	lo := 5
	f := query.ProductFilter{Price: &query.IntRange{Gte: &lo}, Keywords: []string{"lamp"}}
	products, err := svc.List(context.Background(), f)
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, f.BSON(), store.lastFilter)
}

func TestListEmptyIsNotNil(t *testing.T) {
	svc, _, _ := newProductService()

	products, err := svc.List(context.Background(), query.ProductFilter{})
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestUserService(t *testing.T) {
	store := newFakeStore[model.User]()
	svc := NewUserService(store, validation.New(), nil)

	u, err := svc.Create(context.Background(), []byte(`{"account":"alice01","email":"alice@example.com","age":30}`))
	require.NoError(t, err)
	assert.Equal(t, "alice01", u.Account)

	_, err = svc.Update(context.Background(), u.ID.Hex(), []byte(`{"age":200}`))
	appErr := requireKind(t, err, apperror.KindValidation)
	assert.Equal(t, "age must be less than or equal to 150", appErr.Message)

	_, err = svc.Get(context.Background(), "nope")
	appErr = requireKind(t, err, apperror.KindNotFound)
	assert.Equal(t, "user not found", appErr.Message)

	users, err := svc.List(context.Background(), query.UserFilter{Account: "alice01"})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, bson.D{{Key: "account", Value: "alice01"}}, store.lastFilter)
}

func TestSchemaOfSkipsReadOnlyFields(t *testing.T) {
	fields := schemaOf[model.Product]()

	price, ok := fields.lookup("price")
	require.True(t, ok)
	assert.Equal(t, "Price", price.goName)
	assert.Equal(t, "price", price.bsonName)

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.jsonName)
	}
	assert.Equal(t, []string{"name", "description", "price", "stock", "image"}, names)

	for _, readOnly := range []string{"_id", "createdAt", "updatedAt"} {
		_, ok := fields.lookup(readOnly)
		assert.False(t, ok, readOnly)
	}
}

func TestCreateTypeMismatchFollowsDeclarationOrder(t *testing.T) {
	svc, store, _ := newProductService()

	// image is sent first but declared after price.
	_, err := svc.Create(context.Background(), []byte(`{"image":5,"price":"x"}`))
	appErr := requireKind(t, err, apperror.KindValidation)
	assert.Equal(t, "price", appErr.Field)
	assert.Equal(t, "price must be a number", appErr.Message)
	assert.Empty(t, store.docs)
}

func TestIntegerFieldMismatch(t *testing.T) {
	svc, _, _ := newProductService()

	_, err := svc.Create(context.Background(), []byte(`{"name":"Lamp","price":1,"stock":1.5}`))
	appErr := requireKind(t, err, apperror.KindValidation)
	assert.Equal(t, "stock", appErr.Field)
	assert.Equal(t, "stock must be an integer", appErr.Message)
}

func TestUpdatePresentFieldsFollowDeclarationOrder(t *testing.T) {
	_, present, err := decodeFields[model.Product]([]byte(`{"stock":3,"name":"Desk","extra":1}`), schemaOf[model.Product]())
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "stock"}, present)
}
