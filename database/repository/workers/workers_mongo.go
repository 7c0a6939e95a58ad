package workersRepo

import (
	"context"
	"fmt"
	"time"

	"homely/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoWorkerRepo implements Repository using MongoDB.
type MongoWorkerRepo struct {
	workerColl *mongo.Collection
}

// NewMongoWorkerRepo constructs a roster repo over the given database handle.
func NewMongoWorkerRepo(db *mongo.Database) *MongoWorkerRepo {
	return &MongoWorkerRepo{
		workerColl: db.Collection("workers"),
	}
}

func (repo *MongoWorkerRepo) Get(ctx context.Context, id string) (*models.Worker, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var worker models.Worker
	err := repo.workerColl.FindOne(ctx, bson.M{"id": id}).Decode(&worker)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching worker %s: %w", id, err)
	}
	return &worker, nil
}

func (repo *MongoWorkerRepo) Upsert(ctx context.Context, worker *models.Worker) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	worker.UpdatedAt = now
	if worker.CreatedAt.IsZero() {
		worker.CreatedAt = now
	}
	_, err := repo.workerColl.UpdateOne(ctx,
		bson.M{"id": worker.ID},
		bson.M{"$set": worker},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("error upserting worker %s: %w", worker.ID, err)
	}
	return nil
}

// Claim flips availability true -> false in one conditional update, so two
// assigners racing for the same worker cannot both win.
func (repo *MongoWorkerRepo) Claim(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := repo.workerColl.UpdateOne(ctx,
		bson.M{"id": id, "available": true},
		bson.M{"$set": bson.M{"available": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("error claiming worker %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		if _, getErr := repo.Get(ctx, id); getErr != nil {
			return getErr
		}
		return ErrUnavailable
	}
	return nil
}

func (repo *MongoWorkerRepo) ReleaseWorker(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := repo.workerColl.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"available": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("error releasing worker %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (repo *MongoWorkerRepo) ListAvailable(ctx context.Context, skill string) ([]models.Worker, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"available": true}
	if skill != "" {
		filter["$or"] = bson.A{
			bson.M{"skills": skill},
			bson.M{"skills": bson.M{"$size": 0}},
			bson.M{"skills": bson.M{"$exists": false}},
		}
	}
	cursor, err := repo.workerColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing available workers: %w", err)
	}
	defer cursor.Close(ctx)

	var workers []models.Worker
	if err := cursor.All(ctx, &workers); err != nil {
		return nil, fmt.Errorf("error decoding workers: %w", err)
	}
	return workers, nil
}
