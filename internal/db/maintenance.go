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

// MaintenanceCollection defines the interface for maintenance database
// operations.
type MaintenanceCollection interface {
	Insert(ctx context.Context, maintenance models.Maintenance) (*models.Maintenance, error)
	FindByID(ctx context.Context, id string) (*models.Maintenance, error)
	Find(ctx context.Context, filter bson.M) ([]models.Maintenance, error)
	FindRecent(ctx context.Context, filter bson.M, limit int64) ([]models.Maintenance, error)
	FindCreatedStamps(ctx context.Context, filter bson.M) ([]models.CreatedStamp, error)
	FindUpcoming(ctx context.Context, from, to time.Time) ([]models.Maintenance, error)
	Replace(ctx context.Context, id string, maintenance models.Maintenance) (*models.Maintenance, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, filter bson.M) (int64, error)
}

// MongoMaintenanceCollection implements MaintenanceCollection for MongoDB.
type MongoMaintenanceCollection struct {
	Collection *mongo.Collection
}

// Insert inserts a new maintenance contract.
func (c *MongoMaintenanceCollection) Insert(ctx context.Context, maintenance models.Maintenance) (*models.Maintenance, error) {
	now := time.Now()
	maintenance.CreatedAt = now
	maintenance.UpdatedAt = now

	res, err := c.Collection.InsertOne(ctx, maintenance)
	if err != nil {
		return nil, err
	}
	maintenance.ID = res.InsertedID.(primitive.ObjectID)
	return &maintenance, nil
}

// FindByID finds a maintenance contract by its id.
func (c *MongoMaintenanceCollection) FindByID(ctx context.Context, id string) (*models.Maintenance, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var maintenance models.Maintenance
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&maintenance)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &maintenance, nil
}

// Find queries maintenance contracts matching the filter, newest first.
func (c *MongoMaintenanceCollection) Find(ctx context.Context, filter bson.M) ([]models.Maintenance, error) {
	cursor, err := c.Collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var maintenances []models.Maintenance
	if err := cursor.All(ctx, &maintenances); err != nil {
		return nil, err
	}
	return maintenances, nil
}

// FindRecent queries the most recent contracts matching the filter.
func (c *MongoMaintenanceCollection) FindRecent(ctx context.Context, filter bson.M, limit int64) ([]models.Maintenance, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var maintenances []models.Maintenance
	if err := cursor.All(ctx, &maintenances); err != nil {
		return nil, err
	}
	return maintenances, nil
}

// FindCreatedStamps projects matching documents down to their creation
// time.
func (c *MongoMaintenanceCollection) FindCreatedStamps(ctx context.Context, filter bson.M) ([]models.CreatedStamp, error) {
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

// FindUpcoming queries contracts with an incomplete service date inside the
// window, soonest first ($elemMatch).
func (c *MongoMaintenanceCollection) FindUpcoming(ctx context.Context, from, to time.Time) ([]models.Maintenance, error) {
	filter := bson.M{
		"serviceDates": bson.M{
			"$elemMatch": bson.M{
				"serviceDate": bson.M{"$gte": from, "$lte": to},
				"isCompleted": false,
			},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "serviceDates.serviceDate", Value: 1}})
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var maintenances []models.Maintenance
	if err := cursor.All(ctx, &maintenances); err != nil {
		return nil, err
	}
	return maintenances, nil
}

// Replace stores the full document back (save semantics for the
// read-modify-write update path).
func (c *MongoMaintenanceCollection) Replace(ctx context.Context, id string, maintenance models.Maintenance) (*models.Maintenance, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	maintenance.ID = objectID
	maintenance.UpdatedAt = time.Now()

	res, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": objectID}, maintenance)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return &maintenance, nil
}

// Delete removes a maintenance contract permanently.
func (c *MongoMaintenanceCollection) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Count counts maintenance contracts matching the filter.
func (c *MongoMaintenanceCollection) Count(ctx context.Context, filter bson.M) (int64, error) {
	return c.Collection.CountDocuments(ctx, filter)
}
