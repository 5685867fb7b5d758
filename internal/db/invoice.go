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

// InvoiceCollection defines the interface for invoice database operations.
type InvoiceCollection interface {
	Insert(ctx context.Context, invoice models.Invoice) (*models.Invoice, error)
	FindByID(ctx context.Context, id string) (*models.Invoice, error)
	Find(ctx context.Context, filter bson.M) ([]models.Invoice, error)
	FindOneByProject(ctx context.Context, projectID primitive.ObjectID) (*models.Invoice, error)
	FindOverdue(ctx context.Context, now time.Time) ([]models.Invoice, error)
	UpdateByID(ctx context.Context, id string, update bson.M) (*models.Invoice, error)
	SetStatus(ctx context.Context, id string, status models.Status) error
	Count(ctx context.Context, filter bson.M) (int64, error)
}

// MongoInvoiceCollection implements InvoiceCollection for MongoDB.
type MongoInvoiceCollection struct {
	Collection *mongo.Collection
}

// Insert inserts a new invoice.
func (c *MongoInvoiceCollection) Insert(ctx context.Context, invoice models.Invoice) (*models.Invoice, error) {
	now := time.Now()
	invoice.CreatedAt = now
	invoice.UpdatedAt = now
	if invoice.Status == "" {
		invoice.Status = models.StatusPending
	}

	res, err := c.Collection.InsertOne(ctx, invoice)
	if err != nil {
		return nil, err
	}
	invoice.ID = res.InsertedID.(primitive.ObjectID)
	return &invoice, nil
}

// FindByID finds an invoice by its id.
func (c *MongoInvoiceCollection) FindByID(ctx context.Context, id string) (*models.Invoice, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var invoice models.Invoice
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&invoice)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// Find queries invoices matching the filter, newest first.
func (c *MongoInvoiceCollection) Find(ctx context.Context, filter bson.M) ([]models.Invoice, error) {
	cursor, err := c.Collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var invoices []models.Invoice
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindOneByProject finds any invoice referencing the project. Used as the
// duplicate check before auto-provisioning.
func (c *MongoInvoiceCollection) FindOneByProject(ctx context.Context, projectID primitive.ObjectID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := c.Collection.FindOne(ctx, bson.M{"project": projectID}).Decode(&invoice)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindOverdue queries invoices past their due date that are neither
// completed nor cancelled, most overdue first.
func (c *MongoInvoiceCollection) FindOverdue(ctx context.Context, now time.Time) ([]models.Invoice, error) {
	filter := bson.M{
		"dueDate": bson.M{"$lt": now},
		"status":  bson.M{"$nin": []models.Status{models.StatusCompleted, models.StatusCancelled}},
	}
	cursor, err := c.Collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "dueDate", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var invoices []models.Invoice
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

// UpdateByID applies an update document and returns the post-update
// invoice.
func (c *MongoInvoiceCollection) UpdateByID(ctx context.Context, id string, update bson.M) (*models.Invoice, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	if set, ok := update["$set"].(bson.M); ok {
		set["updatedAt"] = time.Now()
	} else {
		update["$set"] = bson.M{"updatedAt": time.Now()}
	}

	var invoice models.Invoice
	err = c.Collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&invoice)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// SetStatus updates only the lifecycle status.
func (c *MongoInvoiceCollection) SetStatus(ctx context.Context, id string, status models.Status) error {
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

// Count counts invoices matching the filter.
func (c *MongoInvoiceCollection) Count(ctx context.Context, filter bson.M) (int64, error) {
	return c.Collection.CountDocuments(ctx, filter)
}
