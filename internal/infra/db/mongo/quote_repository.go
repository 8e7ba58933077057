package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"travelquote/internal/domain/quote"
	"travelquote/internal/domain/shared/money"
)

const quoteSequence = "quote_id"

type QuoteRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewQuoteRepository(ctx context.Context, db *mongo.Database) (*QuoteRepository, error) {
	col := db.Collection("agg_quote")
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "provider_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "valid_until", Value: 1}}},
		{Keys: bson.D{{Key: "provider_id", Value: 1}, {Key: "reference", Value: 1}}},
	})
	if err != nil {
		return nil, unavailable(err)
	}
	return &QuoteRepository{col: col, counters: db.Collection("counters")}, nil
}

func (r *QuoteRepository) FindByID(ctx context.Context, id quote.ID) (*quote.Quote, error) {
	var doc quoteDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": int64(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, quote.ErrNotFound
		}
		return nil, unavailable(err)
	}
	return doc.toAggregate(), nil
}

func (r *QuoteRepository) FindByProvider(ctx context.Context, providerID string) ([]*quote.Quote, error) {
	return r.find(ctx, bson.M{"provider_id": providerID})
}

func (r *QuoteRepository) FindByStatus(ctx context.Context, status quote.Status) ([]*quote.Quote, error) {
	return r.find(ctx, bson.M{"status": string(status)})
}

func (r *QuoteRepository) FindByProviderAndStatus(ctx context.Context, providerID string, status quote.Status) ([]*quote.Quote, error) {
	return r.find(ctx, bson.M{"provider_id": providerID, "status": string(status)})
}

func (r *QuoteRepository) FindByReference(ctx context.Context, providerID, reference string) (*quote.Quote, error) {
	var doc quoteDocument
	err := r.col.FindOne(ctx, bson.M{"provider_id": providerID, "reference": reference}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, quote.ErrNotFound
		}
		return nil, unavailable(err)
	}
	return doc.toAggregate(), nil
}

func (r *QuoteRepository) FindExpired(ctx context.Context, now time.Time) ([]*quote.Quote, error) {
	return r.find(ctx, bson.M{
		"status":      string(quote.StatusPending),
		"valid_until": bson.M{"$lte": now.UTC()},
	})
}

func (r *QuoteRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, unavailable(err)
	}
	return n, nil
}

func (r *QuoteRepository) CountByStatus(ctx context.Context, status quote.Status) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"status": string(status)})
	if err != nil {
		return 0, unavailable(err)
	}
	return n, nil
}

func (r *QuoteRepository) Save(ctx context.Context, q *quote.Quote) (*quote.Quote, error) {
	saved, err := r.SaveAll(ctx, []*quote.Quote{q})
	if err != nil {
		return nil, err
	}
	return saved[0], nil
}

// SaveAll writes the batch in one transaction. When ctx already carries a
// session the caller's transaction is reused.
func (r *QuoteRepository) SaveAll(ctx context.Context, qs []*quote.Quote) ([]*quote.Quote, error) {
	if len(qs) == 0 {
		return nil, nil
	}
	if mongo.SessionFromContext(ctx) != nil || len(qs) == 1 {
		return r.saveAll(ctx, qs)
	}
	session, err := r.col.Database().Client().StartSession()
	if err != nil {
		return nil, unavailable(err)
	}
	defer session.EndSession(ctx)
	res, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return r.saveAll(sc, qs)
	})
	if err != nil {
		return nil, err
	}
	return res.([]*quote.Quote), nil
}

func (r *QuoteRepository) saveAll(ctx context.Context, qs []*quote.Quote) ([]*quote.Quote, error) {
	ids, err := r.allocateIDs(ctx, qs)
	if err != nil {
		return nil, err
	}
	docs := make([]quoteDocument, len(qs))
	for i, q := range qs {
		doc := newQuoteDocument(q)
		if doc.ID == 0 {
			doc.ID = ids[0]
			ids = ids[1:]
		}
		filter := bson.M{"_id": doc.ID, "version": q.Version}
		doc.Version = q.Version + 1
		res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, quote.ErrConcurrentUpdate
			}
			return nil, unavailable(err)
		}
		if res.MatchedCount == 0 && res.UpsertedCount == 0 {
			return nil, quote.ErrConcurrentUpdate
		}
		docs[i] = doc
	}
	out := make([]*quote.Quote, len(qs))
	for i, q := range qs {
		q.ID = quote.ID(docs[i].ID)
		q.Version = docs[i].Version
		out[i] = docs[i].toAggregate()
	}
	return out, nil
}

// allocateIDs reserves one id per unsaved quote from the counters collection.
func (r *QuoteRepository) allocateIDs(ctx context.Context, qs []*quote.Quote) ([]int64, error) {
	fresh := 0
	for _, q := range qs {
		if q.ID == 0 {
			fresh++
		}
	}
	if fresh == 0 {
		return nil, nil
	}
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx, bson.M{"_id": quoteSequence}, bson.M{"$inc": bson.M{"seq": fresh}}, opts).Decode(&counter)
	if err != nil {
		return nil, unavailable(err)
	}
	ids := make([]int64, fresh)
	first := counter.Seq - int64(fresh) + 1
	for i := range ids {
		ids[i] = first + int64(i)
	}
	return ids, nil
}

func (r *QuoteRepository) find(ctx context.Context, filter bson.M) ([]*quote.Quote, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, unavailable(err)
	}
	var docs []quoteDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, unavailable(err)
	}
	out := make([]*quote.Quote, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toAggregate())
	}
	return out, nil
}

type quoteDocument struct {
	ID           int64       `bson:"_id"`
	ProviderID   string      `bson:"provider_id"`
	Reference    string      `bson:"reference"`
	Premium      money.Money `bson:"premium"`
	CoverageType string      `bson:"coverage_type"`
	ValidUntil   time.Time   `bson:"valid_until"`
	CreatedAt    time.Time   `bson:"created_at"`
	UpdatedAt    time.Time   `bson:"updated_at"`
	Status       string      `bson:"status"`
	Version      int64       `bson:"version"`
}

func newQuoteDocument(q *quote.Quote) quoteDocument {
	return quoteDocument{
		ID:           int64(q.ID),
		ProviderID:   q.ProviderID,
		Reference:    q.Reference,
		Premium:      q.Premium,
		CoverageType: q.CoverageType,
		ValidUntil:   q.ValidUntil.UTC(),
		CreatedAt:    q.CreatedAt.UTC(),
		UpdatedAt:    q.UpdatedAt.UTC(),
		Status:       string(q.Status),
		Version:      q.Version,
	}
}

func (d quoteDocument) toAggregate() *quote.Quote {
	return &quote.Quote{
		ID:           quote.ID(d.ID),
		ProviderID:   d.ProviderID,
		Reference:    d.Reference,
		Premium:      d.Premium,
		CoverageType: d.CoverageType,
		ValidUntil:   d.ValidUntil.UTC(),
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
		Status:       quote.Status(d.Status),
		Version:      d.Version,
	}
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", quote.ErrStorageUnavailable, err)
}

var _ quote.Store = (*QuoteRepository)(nil)
