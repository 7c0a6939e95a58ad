package bookingsRepo

import (
	"context"
	"fmt"
	"time"

	"homely/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingRepo implements Repository using MongoDB.
type MongoBookingRepo struct {
	bookingColl *mongo.Collection
}

// NewMongoBookingRepo constructs a ledger over the given database handle.
func NewMongoBookingRepo(db *mongo.Database) *MongoBookingRepo {
	return &MongoBookingRepo{
		bookingColl: db.Collection("bookings"),
	}
}

// Create inserts a new booking document in pending state.
func (repo *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	if booking.Version == 0 {
		booking.Version = 1
	}
	booking.Active = booking.Status != models.StatusCancelled

	if _, err := repo.bookingColl.InsertOne(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateSlot
		}
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

// Get retrieves a booking by its ID.
func (repo *MongoBookingRepo) Get(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := repo.bookingColl.FindOne(ctx, bson.M{"id": id}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching booking %s: %w", id, err)
	}
	return &booking, nil
}

// Update applies a field-level mutation guarded by the version token.
func (repo *MongoBookingRepo) Update(ctx context.Context, id string, mut Mutation, expectedVersion int) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"updatedAt": time.Now()}
	unset := bson.M{}
	if mut.Status != nil {
		set["status"] = *mut.Status
	}
	if mut.PaymentStatus != nil {
		set["paymentStatus"] = *mut.PaymentStatus
	}
	if mut.WorkerID != nil {
		if *mut.WorkerID == "" {
			unset["workerId"] = ""
		} else {
			set["workerId"] = *mut.WorkerID
		}
	}
	if mut.Active != nil {
		set["active"] = *mut.Active
	}

	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	var updated models.Booking
	err := repo.bookingColl.FindOneAndUpdate(ctx,
		bson.M{"id": id, "version": expectedVersion},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		// Disambiguate a missing record from a concurrent writer.
		if _, getErr := repo.Get(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrVersionConflict
	}
	if err != nil {
		return nil, fmt.Errorf("error updating booking %s: %w", id, err)
	}
	return &updated, nil
}

// ListByCustomer returns the customer's bookings, newest first.
func (repo *MongoBookingRepo) ListByCustomer(ctx context.Context, customerID string, limit int64) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := repo.bookingColl.Find(ctx, bson.M{"customerId": customerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings for customer %s: %w", customerID, err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}
