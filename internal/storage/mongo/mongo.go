// Package mongo implements the transaction store on top of a MongoDB
// collection.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

const transactionsCollection = "transactions"

// document is the persisted shape of a transaction. Timestamps are
// maintained here on every write.
type document struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Type        string             `bson:"type"`
	Amount      float64            `bson:"amount"`
	Description string             `bson:"description"`
	Category    string             `bson:"category"`
	Date        time.Time          `bson:"date"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d document) toCore() core.Transaction {
	return core.Transaction{
		ID:          d.ID.Hex(),
		Type:        core.TransactionType(d.Type),
		Amount:      d.Amount,
		Description: d.Description,
		Category:    d.Category,
		Date:        d.Date.UTC(),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// Repository implements storage.Repository on a MongoDB collection.
type Repository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ storage.Repository = (*Repository)(nil)

// Connect establishes a MongoDB connection, pings it, and returns a
// repository bound to the transactions collection of the given database.
func Connect(ctx context.Context, uri, database string) (*Repository, error) {
	slog.DebugContext(ctx, "Connecting to MongoDB", "database", database)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	slog.InfoContext(ctx, "Connected to MongoDB", "database", database)
	return &Repository{
		client: client,
		coll:   client.Database(database).Collection(transactionsCollection),
	}, nil
}

// buildFilter translates filter criteria into a store query predicate.
// Category is a case-insensitive substring match; date bounds are
// inclusive and may apply simultaneously.
func buildFilter(f core.Filter) bson.M {
	q := bson.M{}
	if f.HasType() {
		q["type"] = f.Type
	}
	if f.Category != "" {
		q["category"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Category), Options: "i"}
	}
	if !f.StartDate.IsZero() || !f.EndDate.IsZero() {
		dateRange := bson.M{}
		if !f.StartDate.IsZero() {
			dateRange["$gte"] = f.StartDate
		}
		if !f.EndDate.IsZero() {
			dateRange["$lte"] = f.EndDate
		}
		q["date"] = dateRange
	}
	return q
}

func (r *Repository) List(ctx context.Context, f core.Filter) ([]core.Transaction, int64, error) {
	query := buildFilter(f)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	skip, take := f.Window()
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(take))

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode transactions: %w", err)
	}

	items := make([]core.Transaction, len(docs))
	for i, d := range docs {
		items[i] = d.toCore()
	}
	return items, total, nil
}

func (r *Repository) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	now := time.Now().UTC()
	doc := document{
		Type:        string(tx.Type),
		Amount:      tx.Amount,
		Description: tx.Description,
		Category:    tx.Category,
		Date:        tx.Date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return core.Transaction{}, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	doc.ID = oid
	return doc.toCore(), nil
}

func (r *Repository) Update(ctx context.Context, id string, p core.Patch) (core.Transaction, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// A malformed id can never resolve to a document.
		return core.Transaction{}, storage.ErrNotFound
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if p.Type != nil {
		set["type"] = string(*p.Type)
	}
	if p.Amount != nil {
		set["amount"] = *p.Amount
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Date != nil {
		set["date"] = *p.Date
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc document
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return core.Transaction{}, storage.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}
	return doc.toCore(), nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return storage.ErrNotFound
	}

	var doc document
	err = r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (core.Transaction, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return core.Transaction{}, storage.ErrNotFound
	}

	var doc document
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return core.Transaction{}, storage.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return doc.toCore(), nil
}

func (r *Repository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect from MongoDB: %w", err)
	}
	return nil
}
