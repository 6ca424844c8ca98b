package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "gearbook/internal/domain/availability"
	domainrange "gearbook/internal/domain/shared/daterange"
)

type CalendarRepository struct {
	col *mongo.Collection
}

func NewCalendarRepository(db *mongo.Database) *CalendarRepository {
	return &CalendarRepository{col: db.Collection("agg_calendar")}
}

func (r *CalendarRepository) ByItemID(ctx context.Context, itemID string) (*domainavailability.Calendar, error) {
	var doc calendarDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": itemID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainavailability.ErrCalendarNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *CalendarRepository) Save(ctx context.Context, calendar *domainavailability.Calendar) error {
	doc := newCalendarDocument(calendar)
	filter := bson.M{"_id": doc.ID, "version": calendar.Version}
	doc.Version = calendar.Version + 1
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
	calendar.Version = doc.Version
	return nil
}

type calendarDocument struct {
	ID      string         `bson:"_id"`
	Holds   []holdDocument `bson:"holds"`
	Version int64          `bson:"version"`
}

type holdDocument struct {
	Day       int64  `bson:"day"`
	Kind      string `bson:"kind"`
	Reference string `bson:"reference"`
}

func newCalendarDocument(c *domainavailability.Calendar) calendarDocument {
	doc := calendarDocument{ID: c.ItemID, Version: c.Version}
	for _, hold := range c.Holds {
		doc.Holds = append(doc.Holds, holdDocument{
			Day:       hold.Day.UnixMilli(),
			Kind:      string(hold.Kind),
			Reference: hold.Reference,
		})
	}
	return doc
}

func (d calendarDocument) toAggregate() *domainavailability.Calendar {
	cal := domainavailability.NewCalendar(d.ID)
	cal.Version = d.Version
	for _, h := range d.Holds {
		day := time.UnixMilli(h.Day).UTC()
		cal.Holds[domainrange.DayKey(day)] = domainavailability.Hold{
			Day:       day,
			Kind:      domainavailability.HoldKind(h.Kind),
			Reference: h.Reference,
		}
	}
	return cal
}
