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

// ComplaintCollection defines the interface for complaint database
// operations.
type ComplaintCollection interface {
	Insert(ctx context.Context, complaint models.Complaint) (*models.Complaint, error)
	FindByID(ctx context.Context, id string) (*models.Complaint, error)
	Find(ctx context.Context, filter bson.M) ([]models.Complaint, error)
	FindRecent(ctx context.Context, filter bson.M, limit int64) ([]models.Complaint, error)
	FindCreatedStamps(ctx context.Context, filter bson.M) ([]models.CreatedStamp, error)
	UpdateByID(ctx context.Context, id string, update bson.M) (*models.Complaint, error)
	AddUsers(ctx context.Context, id string, userIDs []primitive.ObjectID) (*models.Complaint, error)
	SetStatus(ctx context.Context, id string, status models.Status) error
	Count(ctx context.Context, filter bson.M) (int64, error)
}

// MongoComplaintCollection implements ComplaintCollection for MongoDB.
type MongoComplaintCollection struct {
	Collection *mongo.Collection
}

// Insert inserts a new complaint.
func (c *MongoComplaintCollection) Insert(ctx context.Context, complaint models.Complaint) (*models.Complaint, error) {
	now := time.Now()
	complaint.CreatedAt = now
	complaint.UpdatedAt = now

	res, err := c.Collection.InsertOne(ctx, complaint)
	if err != nil {
		return nil, err
	}
	complaint.ID = res.InsertedID.(primitive.ObjectID)
	return &complaint, nil
}

// FindByID finds a complaint by its id.
func (c *MongoComplaintCollection) FindByID(ctx context.Context, id string) (*models.Complaint, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var complaint models.Complaint
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&complaint)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &complaint, nil
}

// Find queries complaints matching the filter, newest first.
func (c *MongoComplaintCollection) Find(ctx context.Context, filter bson.M) ([]models.Complaint, error) {
	cursor, err := c.Collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var complaints []models.Complaint
	if err := cursor.All(ctx, &complaints); err != nil {
		return nil, err
	}
	return complaints, nil
}

// FindRecent queries the most recent complaints matching the filter.
func (c *MongoComplaintCollection) FindRecent(ctx context.Context, filter bson.M, limit int64) ([]models.Complaint, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var complaints []models.Complaint
	if err := cursor.All(ctx, &complaints); err != nil {
		return nil, err
	}
	return complaints, nil
}

// FindCreatedStamps projects matching documents down to their creation
// time.
func (c *MongoComplaintCollection) FindCreatedStamps(ctx context.Context, filter bson.M) ([]models.CreatedStamp, error) {
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
// complaint.
func (c *MongoComplaintCollection) UpdateByID(ctx context.Context, id string, update bson.M) (*models.Complaint, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	if set, ok := update["$set"].(bson.M); ok {
		set["updatedAt"] = time.Now()
	} else {
		update["$set"] = bson.M{"updatedAt": time.Now()}
	}

	var complaint models.Complaint
	err = c.Collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&complaint)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &complaint, nil
}

// AddUsers adds user ids to the assignment set and returns the post-update
// complaint.
func (c *MongoComplaintCollection) AddUsers(ctx context.Context, id string, userIDs []primitive.ObjectID) (*models.Complaint, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var complaint models.Complaint
	err = c.Collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{
			"$addToSet": bson.M{"users": bson.M{"$each": userIDs}},
			"$set":      bson.M{"updatedAt": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&complaint)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &complaint, nil
}

// SetStatus updates only the lifecycle status.
func (c *MongoComplaintCollection) SetStatus(ctx context.Context, id string, status models.Status) error {
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

// Count counts complaints matching the filter.
func (c *MongoComplaintCollection) Count(ctx context.Context, filter bson.M) (int64, error) {
	return c.Collection.CountDocuments(ctx, filter)
}
