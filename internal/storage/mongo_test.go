package storage

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"finsmart/internal/records"
	"finsmart/internal/sheets"
)

// fakeCollection keeps documents keyed by _id.
type fakeCollection struct {
	docs     map[string]interface{}
	replaces int
	fail     error
	findErr  error
}

func newFakeCollection() *fakeCollection {
	return &fakeCollection{docs: map[string]interface{}{}}
}

func idOf(filter interface{}) string {
	id, _ := filter.(bson.M)["_id"].(string)
	return id
}

func (f *fakeCollection) FindOne(_ context.Context, filter interface{}, _ ...*options.FindOneOptions) *mongo.SingleResult {
	if f.findErr != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, f.findErr, nil)
	}
	doc, ok := f.docs[idOf(filter)]
	if !ok {
		return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
	}
	return mongo.NewSingleResultFromDocument(doc, nil, nil)
}

func (f *fakeCollection) ReplaceOne(_ context.Context, filter interface{}, replacement interface{}, _ ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.replaces++
	f.docs[idOf(filter)] = replacement
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (f *fakeCollection) CountDocuments(_ context.Context, filter interface{}, _ ...*options.CountOptions) (int64, error) {
	if _, ok := f.docs[idOf(filter)]; ok {
		return 1, nil
	}
	return 0, nil
}

func TestMongoStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	coll := newFakeCollection()
	s := NewMongoStore(coll, nil)

	if _, err := s.Read(ctx, records.ReviewsTable); !errors.Is(err, sheets.ErrTableNotFound) {
		t.Fatalf("expected ErrTableNotFound, got %v", err)
	}
	if err := s.Create(ctx, records.ReviewsTable, records.Reviews.Columns); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create(ctx, records.ReviewsTable, records.Reviews.Columns); err != nil {
		t.Fatalf("create twice: %v", err)
	}
	if coll.replaces != 1 {
		t.Fatalf("second create must not rewrite, got %d writes", coll.replaces)
	}

	want := records.Reviews.Empty().Append([]string{"Ana", "a@b.c", "5", "mantap", "2025-01-01 10:00:00"})
	if err := s.Write(ctx, want); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := s.Read(ctx, records.ReviewsTable)
	if err != nil || !got.Equal(want) {
		t.Fatalf("round trip mismatch: %+v err=%v", got, err)
	}
}

func TestMongoStoreCorruptDocument(t *testing.T) {
	coll := newFakeCollection()
	coll.docs["Users"] = bson.D{{Key: "_id", Value: "Users"}, {Key: "columns", Value: 42}}
	s := NewMongoStore(coll, nil)
	if _, err := s.Read(context.Background(), "Users"); !errors.Is(err, sheets.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestMongoStoreFindFailureIsNotCorruption(t *testing.T) {
	coll := newFakeCollection()
	rows := records.Users.Empty().
		Append([]string{"a@b.c", "h:x", "1000"}).
		Append([]string{"d@e.f", "h:y", "2000"})
	coll.docs["Users"] = tableDocument{Name: "Users", Columns: rows.Columns, Rows: rows.Rows}
	coll.findErr = errors.New("server selection error: ReplicaSetNoPrimary")
	s := NewMongoStore(coll, nil)

	_, err := s.Read(context.Background(), "Users")
	if err == nil || errors.Is(err, sheets.ErrCorrupt) || errors.Is(err, sheets.ErrTableNotFound) {
		t.Fatalf("expected a plain find error, got %v", err)
	}
	if coll.replaces != 0 {
		t.Fatalf("read must not write, got %d writes", coll.replaces)
	}
}

func TestMongoStoreWriteFailure(t *testing.T) {
	coll := newFakeCollection()
	coll.fail = errors.New("connection reset")
	s := NewMongoStore(coll, nil)
	if err := s.Write(context.Background(), records.Users.Empty()); err == nil {
		t.Fatalf("expected write error")
	}
}
