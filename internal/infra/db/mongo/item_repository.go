package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainitems "gearbook/internal/domain/items"
	domainpricing "gearbook/internal/domain/pricing"
)

type ItemRepository struct {
	col *mongo.Collection
}

func NewItemRepository(db *mongo.Database) *ItemRepository {
	col := db.Collection("agg_item")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{Keys: bson.D{{Key: "owner_id", Value: 1}}})
	return &ItemRepository{col: col}
}

func (r *ItemRepository) ByID(ctx context.Context, id string) (*domainitems.Item, error) {
	var doc itemDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainitems.ErrItemNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ItemRepository) Save(ctx context.Context, item *domainitems.Item) error {
	doc := newItemDocument(item)
	filter := bson.M{"_id": doc.ID, "version": item.Version}
	doc.Version = item.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	item.Version = doc.Version
	return nil
}

func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domainitems.Item, error) {
	cur, err := r.col.Find(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainitems.Item
	for cur.Next(ctx) {
		var doc itemDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type itemDocument struct {
	ID          string  `bson:"_id"`
	OwnerID     string  `bson:"owner_id"`
	Title       string  `bson:"title"`
	Description string  `bson:"description"`
	Category    string  `bson:"category"`
	Currency    string  `bson:"currency"`
	DailyRate   int64   `bson:"daily_rate"`
	WeekendRate int64   `bson:"weekend_rate"`
	HourlyRate  int64   `bson:"hourly_rate"`
	MinHours    float64 `bson:"min_hours"`
	InstantBook bool    `bson:"instant_book"`
	Archived    bool    `bson:"archived"`
	Version     int64   `bson:"version"`
}

func newItemDocument(i *domainitems.Item) itemDocument {
	return itemDocument{
		ID:          i.ID,
		OwnerID:     i.OwnerID,
		Title:       i.Title,
		Description: i.Description,
		Category:    i.Category,
		Currency:    i.RateCard.Currency,
		DailyRate:   i.RateCard.DailyRateCents,
		WeekendRate: i.RateCard.WeekendRateCents,
		HourlyRate:  i.RateCard.HourlyRateCents,
		MinHours:    i.RateCard.MinHours,
		InstantBook: i.InstantBook,
		Archived:    i.Archived,
		Version:     i.Version,
	}
}

func (d itemDocument) toAggregate() *domainitems.Item {
	return &domainitems.Item{
		ID:          d.ID,
		OwnerID:     d.OwnerID,
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		RateCard: domainpricing.RateCard{
			Currency:         d.Currency,
			DailyRateCents:   d.DailyRate,
			WeekendRateCents: d.WeekendRate,
			HourlyRateCents:  d.HourlyRate,
			MinHours:         d.MinHours,
		},
		InstantBook: d.InstantBook,
		Archived:    d.Archived,
		Version:     d.Version,
	}
}
