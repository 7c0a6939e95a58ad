package slotsRepo

import (
	"context"
	"fmt"
	"time"

	"homely/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRegistry implements Registry on a slot_buckets collection with one
// document per (serviceId, date). All mutation is done through conditional
// single-document updates, so the document itself is the critical section;
// MongoDB linearizes writers on it without a multi-document transaction.
type MongoRegistry struct {
	bucketColl *mongo.Collection
}

// NewMongoRegistry constructs a registry over the given database handle.
func NewMongoRegistry(db *mongo.Database) *MongoRegistry {
	return &MongoRegistry{
		bucketColl: db.Collection("slot_buckets"),
	}
}

func bucketFilter(serviceID, date string) bson.M {
	return bson.M{"serviceId": serviceID, "date": date}
}

func claimField(slot string) string {
	return "slotMap." + slot
}

// ensureBucket lazily creates the bucket document. The unique compound
// index on (serviceId, date) keeps concurrent upserts from duplicating it:
// the losing upsert of two first-ever reservers surfaces E11000, after
// which the bucket exists, so one retry settles it.
func (r *MongoRegistry) ensureBucket(ctx context.Context, serviceID, date string) error {
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		_, err = r.bucketColl.UpdateOne(ctx,
			bucketFilter(serviceID, date),
			bson.M{"$setOnInsert": models.SlotBucket{
				ServiceID:   serviceID,
				Date:        date,
				BookedSlots: []string{},
				SlotMap:     map[string]models.SlotClaim{},
				CreatedAt:   time.Now(),
			}},
			options.Update().SetUpsert(true),
		)
		if err == nil || !mongo.IsDuplicateKeyError(err) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("failed to ensure slot bucket %s/%s: %w", serviceID, date, err)
	}
	return nil
}

func (r *MongoRegistry) Reserve(ctx context.Context, serviceID, date, slot string, holdFor time.Duration) (Hold, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := r.ensureBucket(ctx, serviceID, date); err != nil {
		return Hold{}, err
	}

	now := time.Now()
	hold := Hold{
		ServiceID: serviceID,
		Date:      date,
		Slot:      slot,
		Token:     uuid.New().String(),
		ExpiresAt: now.Add(holdFor),
	}
	claim := models.SlotClaim{HoldToken: hold.Token, HoldExpiresAt: hold.ExpiresAt}

	// Insert the slot into the booked set only if it is absent. The filter
	// and update run as one document-level operation, so of N concurrent
	// reservers exactly one observes ModifiedCount == 1.
	filter := bucketFilter(serviceID, date)
	filter["bookedSlots"] = bson.M{"$ne": slot}
	res, err := r.bucketColl.UpdateOne(ctx, filter,
		bson.M{
			"$addToSet": bson.M{"bookedSlots": slot},
			"$set":      bson.M{claimField(slot): claim},
		},
	)
	if err != nil {
		return Hold{}, fmt.Errorf("failed to reserve slot %s: %w", slot, err)
	}
	if res.ModifiedCount == 1 {
		return hold, nil
	}

	// The slot is present. A pending claim whose hold has lapsed may be
	// taken over in place, so a crashed reserver never strands the slot.
	takeover := bucketFilter(serviceID, date)
	takeover[claimField(slot)+".bookingId"] = bson.M{"$in": bson.A{nil, ""}}
	takeover[claimField(slot)+".holdToken"] = bson.M{"$gt": ""}
	takeover[claimField(slot)+".holdExpiresAt"] = bson.M{"$lt": now}
	res, err = r.bucketColl.UpdateOne(ctx, takeover,
		bson.M{"$set": bson.M{claimField(slot): claim}},
	)
	if err != nil {
		return Hold{}, fmt.Errorf("failed to take over expired hold on slot %s: %w", slot, err)
	}
	if res.ModifiedCount == 1 {
		return hold, nil
	}
	return Hold{}, ErrSlotTaken
}

func (r *MongoRegistry) Confirm(ctx context.Context, hold Hold, bookingID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bucketFilter(hold.ServiceID, hold.Date)
	filter[claimField(hold.Slot)+".holdToken"] = hold.Token
	res, err := r.bucketColl.UpdateOne(ctx, filter,
		bson.M{"$set": bson.M{claimField(hold.Slot): models.SlotClaim{BookingID: bookingID}}},
	)
	if err != nil {
		return fmt.Errorf("failed to confirm slot %s: %w", hold.Slot, err)
	}
	if res.MatchedCount == 0 {
		return ErrHoldLost
	}
	return nil
}

func (r *MongoRegistry) Release(ctx context.Context, serviceID, date, slot string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.bucketColl.UpdateOne(ctx, bucketFilter(serviceID, date),
		bson.M{
			"$pull":  bson.M{"bookedSlots": slot},
			"$unset": bson.M{claimField(slot): ""},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to release slot %s: %w", slot, err)
	}
	return nil
}

func (r *MongoRegistry) ReleaseExpired(ctx context.Context, serviceID, date, slot, token string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Scoped to the token so a claim confirmed or re-reserved in the
	// meantime is left alone.
	filter := bucketFilter(serviceID, date)
	filter[claimField(slot)+".holdToken"] = token
	filter[claimField(slot)+".bookingId"] = bson.M{"$in": bson.A{nil, ""}}
	res, err := r.bucketColl.UpdateOne(ctx, filter,
		bson.M{
			"$pull":  bson.M{"bookedSlots": slot},
			"$unset": bson.M{claimField(slot): ""},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to reclaim slot %s: %w", slot, err)
	}
	return res.ModifiedCount > 0, nil
}

func (r *MongoRegistry) ListAvailable(ctx context.Context, serviceID, date string, candidates []string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var bucket models.SlotBucket
	err := r.bucketColl.FindOne(ctx, bucketFilter(serviceID, date),
		options.FindOne().SetProjection(bson.M{"bookedSlots": 1}),
	).Decode(&bucket)
	if err == mongo.ErrNoDocuments {
		// No bucket yet: nothing has been reserved for this pair.
		return append([]string(nil), candidates...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load slot bucket %s/%s: %w", serviceID, date, err)
	}

	booked := make(map[string]struct{}, len(bucket.BookedSlots))
	for _, s := range bucket.BookedSlots {
		booked[s] = struct{}{}
	}
	free := make([]string, 0, len(candidates))
	for _, s := range candidates {
		if _, ok := booked[s]; !ok {
			free = append(free, s)
		}
	}
	return free, nil
}
