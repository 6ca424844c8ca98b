package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainpricing "gearbook/internal/domain/pricing"
	domainrental "gearbook/internal/domain/rental"
	domainrange "gearbook/internal/domain/shared/daterange"
	"gearbook/internal/domain/shared/money"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type RentalRepository struct {
	col *mongo.Collection
}

func NewRentalRepository(db *mongo.Database) *RentalRepository {
	col := db.Collection("agg_rental")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{Keys: bson.D{{Key: "renter_id", Value: 1}}})
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{Keys: bson.D{{Key: "owner_id", Value: 1}}})
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{Keys: bson.D{{Key: "item_id", Value: 1}}})
	return &RentalRepository{col: col}
}

func (r *RentalRepository) ByID(ctx context.Context, id string) (*domainrental.Rental, error) {
	var doc rentalDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainrental.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save uses a compare-and-swap on the stored version so two writers cannot
// both win.
func (r *RentalRepository) Save(ctx context.Context, rental *domainrental.Rental) error {
	doc := newRentalDocument(rental)
	filter := bson.M{"_id": doc.ID, "version": rental.Version}
	doc.Version = rental.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	rental.Version = doc.Version
	return nil
}

func (r *RentalRepository) ListByRenter(ctx context.Context, renterID string) ([]*domainrental.Rental, error) {
	return r.find(ctx, bson.M{"renter_id": renterID})
}

func (r *RentalRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domainrental.Rental, error) {
	return r.find(ctx, bson.M{"owner_id": ownerID})
}

func (r *RentalRepository) ListByItem(ctx context.Context, itemID string) ([]*domainrental.Rental, error) {
	return r.find(ctx, bson.M{"item_id": itemID})
}

func (r *RentalRepository) find(ctx context.Context, filter bson.M) ([]*domainrental.Rental, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "requested_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainrental.Rental
	for cur.Next(ctx) {
		var doc rentalDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type rentalDocument struct {
	ID        string `bson:"_id"`
	ItemID    string `bson:"item_id"`
	ItemTitle string `bson:"item_title"`
	OwnerID   string `bson:"owner_id"`
	RenterID  string `bson:"renter_id"`

	Start       int64  `bson:"start"`
	End         int64  `bson:"end"`
	BillingMode string `bson:"billing_mode"`
	Protection  string `bson:"protection"`

	Currency      string `bson:"currency"`
	Subtotal      int64  `bson:"subtotal"`
	ServiceFee    int64  `bson:"service_fee"`
	ProtectionFee int64  `bson:"protection_fee"`
	Total         int64  `bson:"total"`

	Status     string `bson:"status"`
	Settlement string `bson:"settlement"`

	PaymentSessionID string `bson:"payment_session_id"`
	PaymentRef       string `bson:"payment_ref"`

	Inspections []inspectionDocument `bson:"inspections"`

	RequestedAt int64 `bson:"requested_at"`
	DecidedAt   int64 `bson:"decided_at"`
	PaidAt      int64 `bson:"paid_at"`
	ActivatedAt int64 `bson:"activated_at"`
	CompletedAt int64 `bson:"completed_at"`
	CancelledAt int64 `bson:"cancelled_at"`

	Version int64 `bson:"version"`
}

type inspectionDocument struct {
	Stage       string   `bson:"stage"`
	PhotoKeys   []string `bson:"photo_keys"`
	Notes       string   `bson:"notes"`
	WaiverBy    string   `bson:"waiver_by"`
	WaiverAt    int64    `bson:"waiver_at"`
	SubmittedBy string   `bson:"submitted_by"`
	SubmittedAt int64    `bson:"submitted_at"`
}

func newRentalDocument(r *domainrental.Rental) rentalDocument {
	doc := rentalDocument{
		ID:               r.ID,
		ItemID:           r.ItemID,
		ItemTitle:        r.ItemTitle,
		OwnerID:          r.OwnerID,
		RenterID:         r.RenterID,
		Start:            r.Period.Start.UnixMilli(),
		End:              r.Period.End.UnixMilli(),
		BillingMode:      string(r.BillingMode),
		Protection:       string(r.Protection),
		Currency:         r.Total.Currency,
		Subtotal:         r.Subtotal.Cents,
		ServiceFee:       r.ServiceFee.Cents,
		ProtectionFee:    r.ProtectionFee.Cents,
		Total:            r.Total.Cents,
		Status:           string(r.Status),
		Settlement:       string(r.Settlement),
		PaymentSessionID: r.PaymentSessionID,
		PaymentRef:       r.PaymentRef,
		RequestedAt:      toMillis(r.RequestedAt),
		DecidedAt:        toMillis(r.DecidedAt),
		PaidAt:           toMillis(r.PaidAt),
		ActivatedAt:      toMillis(r.ActivatedAt),
		CompletedAt:      toMillis(r.CompletedAt),
		CancelledAt:      toMillis(r.CancelledAt),
		Version:          r.Version,
	}
	for _, stage := range []domainrental.Stage{domainrental.StagePickup, domainrental.StageReturn} {
		insp, ok := r.Inspections[stage]
		if !ok {
			continue
		}
		doc.Inspections = append(doc.Inspections, inspectionDocument{
			Stage:       string(insp.Stage),
			PhotoKeys:   insp.PhotoKeys,
			Notes:       insp.Notes,
			WaiverBy:    insp.Waiver.SignedBy,
			WaiverAt:    toMillis(insp.Waiver.SignedAt),
			SubmittedBy: insp.SubmittedBy,
			SubmittedAt: toMillis(insp.SubmittedAt),
		})
	}
	return doc
}

func (d rentalDocument) toAggregate() *domainrental.Rental {
	r := &domainrental.Rental{
		ID:               d.ID,
		ItemID:           d.ItemID,
		ItemTitle:        d.ItemTitle,
		OwnerID:          d.OwnerID,
		RenterID:         d.RenterID,
		Period:           domainrange.Range{Start: fromMillis(d.Start), End: fromMillis(d.End)},
		BillingMode:      domainpricing.BillingMode(d.BillingMode),
		Protection:       domainpricing.ProtectionTier(d.Protection),
		Subtotal:         money.Money{Cents: d.Subtotal, Currency: d.Currency},
		ServiceFee:       money.Money{Cents: d.ServiceFee, Currency: d.Currency},
		ProtectionFee:    money.Money{Cents: d.ProtectionFee, Currency: d.Currency},
		Total:            money.Money{Cents: d.Total, Currency: d.Currency},
		Status:           domainrental.Status(d.Status),
		Settlement:       domainrental.SettlementState(d.Settlement),
		PaymentSessionID: d.PaymentSessionID,
		PaymentRef:       d.PaymentRef,
		Inspections:      map[domainrental.Stage]*domainrental.Inspection{},
		RequestedAt:      fromMillis(d.RequestedAt),
		DecidedAt:        fromMillis(d.DecidedAt),
		PaidAt:           fromMillis(d.PaidAt),
		ActivatedAt:      fromMillis(d.ActivatedAt),
		CompletedAt:      fromMillis(d.CompletedAt),
		CancelledAt:      fromMillis(d.CancelledAt),
		Version:          d.Version,
	}
	for _, insp := range d.Inspections {
		stage := domainrental.Stage(insp.Stage)
		r.Inspections[stage] = &domainrental.Inspection{
			Stage:       stage,
			PhotoKeys:   insp.PhotoKeys,
			Notes:       insp.Notes,
			Waiver:      domainrental.WaiverSignature{SignedBy: insp.WaiverBy, SignedAt: fromMillis(insp.WaiverAt)},
			SubmittedBy: insp.SubmittedBy,
			SubmittedAt: fromMillis(insp.SubmittedAt),
		}
	}
	return r
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
