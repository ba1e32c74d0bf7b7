package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tieubaoca/pdf-insight-be/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// JobRepo is the Mongo-backed job store, used when MONGODB_URI is set so
// that job records survive a restart.
type JobRepo struct {
	collection *mongo.Collection
}

func NewJobRepo(db *mongo.Database) *JobRepo {
	return &JobRepo{
		collection: db.Collection("jobs"),
	}
}

func (r *JobRepo) Create(ctx context.Context, job *types.Job) error {
	_, err := r.collection.InsertOne(ctx, job)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (r *JobRepo) Get(ctx context.Context, id string) (*types.Job, error) {
	var job types.Job
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&job)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: job %s", types.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

func (r *JobRepo) SetStatus(ctx context.Context, id string, status types.JobStatus) error {
	return r.set(ctx, id, bson.M{"status": status})
}

func (r *JobRepo) SetResult(ctx context.Context, id string, result *types.JobResult) error {
	return r.set(ctx, id, bson.M{
		"status": types.JobStatusCompleted,
		"result": result,
	})
}

func (r *JobRepo) SetError(ctx context.Context, id string, message string) error {
	return r.set(ctx, id, bson.M{
		"status": types.JobStatusFailed,
		"error":  message,
	})
}

func (r *JobRepo) set(ctx context.Context, id string, fields bson.M) error {
	fields["updated_at"] = time.Now().Unix()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: job %s", types.ErrNotFound, id)
	}
	return nil
}
