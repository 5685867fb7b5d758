package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/technotrends/workflow-backend/internal/models"
)

// ProjectCollection defines the interface for project database operations.
type ProjectCollection interface {
	Insert(ctx context.Context, project models.Project) (*models.Project, error)
	FindByID(ctx context.Context, id string) (*models.Project, error)
	Find(ctx context.Context, filter bson.M) ([]models.Project, error)
	FindRecent(ctx context.Context, filter bson.M, limit int64) ([]models.Project, error)
	FindCreatedStamps(ctx context.Context, filter bson.M) ([]models.CreatedStamp, error)
	UpdateByID(ctx context.Context, id string, update bson.M) (*models.Project, error)
	AddUsers(ctx context.Context, id string, userIDs []primitive.ObjectID) (*models.Project, error)
	SetStatus(ctx context.Context, id string, status models.Status) error
	Count(ctx context.Context, filter bson.M) (int64, error)
}

// MongoProjectCollection implements ProjectCollection for MongoDB.
type MongoProjectCollection struct {
	Collection *mongo.Collection
}

// Insert inserts a new project.
func (c *MongoProjectCollection) Insert(ctx context.Context, project models.Project) (*models.Project, error) {
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	res, err := c.Collection.InsertOne(ctx, project)
	if err != nil {
		return nil, err
	}
	project.ID = res.InsertedID.(primitive.ObjectID)
	return &project, nil
}

// FindByID finds a project by its id.
func (c *MongoProjectCollection) FindByID(ctx context.Context, id string) (*models.Project, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var project models.Project
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

// Find queries projects matching the filter, newest first.
func (c *MongoProjectCollection) Find(ctx context.Context, filter bson.M) ([]models.Project, error) {
	cursor, err := c.Collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var projects []models.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// FindRecent queries the most recent projects matching the filter.
func (c *MongoProjectCollection) FindRecent(ctx context.Context, filter bson.M, limit int64) ([]models.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var projects []models.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// FindCreatedStamps projects matching documents down to their creation
// time, for the dashboard activity feed.
func (c *MongoProjectCollection) FindCreatedStamps(ctx context.Context, filter bson.M) ([]models.CreatedStamp, error) {
	opts := options.Find().SetProjection(bson.M{"createdAt": 1})
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var stamps []models.CreatedStamp
	if err := cursor.All(ctx, &stamps); err != nil {
		return nil, err
	}
	return stamps, nil
}

// UpdateByID applies an update document and returns the post-update
// project.
func (c *MongoProjectCollection) UpdateByID(ctx context.Context, id string, update bson.M) (*models.Project, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	if set, ok := update["$set"].(bson.M); ok {
		set["updatedAt"] = time.Now()
	} else {
		update["$set"] = bson.M{"updatedAt": time.Now()}
	}

	var project models.Project
	err = c.Collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

// AddUsers adds user ids to the assignment set ($addToSet) and returns the
// post-update project.
func (c *MongoProjectCollection) AddUsers(ctx context.Context, id string, userIDs []primitive.ObjectID) (*models.Project, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var project models.Project
	err = c.Collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{
			"$addToSet": bson.M{"users": bson.M{"$each": userIDs}},
			"$set":      bson.M{"updatedAt": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

// SetStatus updates only the lifecycle status.
func (c *MongoProjectCollection) SetStatus(ctx context.Context, id string, status models.Status) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Count counts projects matching the filter.
func (c *MongoProjectCollection) Count(ctx context.Context, filter bson.M) (int64, error) {
	return c.Collection.CountDocuments(ctx, filter)
}
