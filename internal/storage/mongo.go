package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"finsmart/internal/records"
	"finsmart/internal/sheets"
)

// TablesCollection is the collection holding one document per table.
const TablesCollection = "tables"

// DocumentStore is the subset of *mongo.Collection the store needs.
type DocumentStore interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

type tableDocument struct {
	Name      string     `bson:"_id"`
	Columns   []string   `bson:"columns"`
	Rows      [][]string `bson:"rows"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

// MongoStore writes each table as a single document, so a write is one
// atomic ReplaceOne.
type MongoStore struct {
	coll   DocumentStore
	client *mongo.Client
	logger *slog.Logger
}

var _ sheets.TableMedium = (*MongoStore)(nil)

// NewMongoStore wraps an existing collection.
func NewMongoStore(coll DocumentStore, logger *slog.Logger) *MongoStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoStore{coll: coll, logger: logger}
}

// ConnectMongoStore dials uri and uses the tables collection of database.
func ConnectMongoStore(ctx context.Context, uri, database string, logger *slog.Logger) (*MongoStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.DebugContext(ctx, "Attempting to connect to MongoDB")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.InfoContext(ctx, "Successfully established connection to MongoDB", "database", database)
	s := NewMongoStore(client.Database(database).Collection(TablesCollection), logger)
	s.client = client
	return s, nil
}

func (s *MongoStore) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Exists(ctx context.Context, name string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": name})
	if err != nil {
		return false, fmt.Errorf("count %s: %w", name, err)
	}
	return n > 0, nil
}

func (s *MongoStore) Create(ctx context.Context, name string, columns []string) error {
	ok, err := s.Exists(ctx, name)
	if err != nil || ok {
		return err
	}
	return s.Write(ctx, records.NewTable(name, columns))
}

func (s *MongoStore) Read(ctx context.Context, name string) (records.Table, error) {
	res := s.coll.FindOne(ctx, bson.M{"_id": name})
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return records.Table{}, fmt.Errorf("%w: %s", sheets.ErrTableNotFound, name)
		}
		return records.Table{}, fmt.Errorf("find %s: %w", name, err)
	}
	// The document arrived; only a decode failure means bad content.
	var doc tableDocument
	if err := res.Decode(&doc); err != nil {
		return records.Table{}, fmt.Errorf("%w: %s: %v", sheets.ErrCorrupt, name, err)
	}
	t := records.NewTable(name, doc.Columns)
	t.Rows = append(t.Rows, doc.Rows...)
	return t, nil
}

func (s *MongoStore) Write(ctx context.Context, t records.Table) error {
	if t.Name == "" {
		return errors.New("write: table name is required")
	}
	doc := tableDocument{Name: t.Name, Columns: t.Columns, Rows: t.Rows, UpdatedAt: time.Now().UTC()}
	if doc.Columns == nil {
		doc.Columns = []string{}
	}
	if doc.Rows == nil {
		doc.Rows = [][]string{}
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": t.Name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace %s: %w", t.Name, err)
	}
	s.logger.DebugContext(ctx, "Table written to MongoDB", "table", t.Name, "rows", len(t.Rows))
	return nil
}
