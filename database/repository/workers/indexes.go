package workersRepo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the roster indexes.
func (repo *MongoWorkerRepo) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_worker_id"),
		},
		{
			Keys:    bson.D{{Key: "available", Value: 1}, {Key: "skills", Value: 1}},
			Options: options.Index().SetName("available_skills"),
		},
	}
	if _, err := repo.workerColl.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create worker indexes: %w", err)
	}
	return nil
}
