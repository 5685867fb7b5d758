package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a lookup matches no document. Invalid hex
// ids resolve to the same error: the caller asked for something that cannot
// exist.
var ErrNotFound = errors.New("document not found")

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// Collections bundles one handle per entity collection.
type Collections struct {
	Users        UserCollection
	Projects     ProjectCollection
	Complaints   ComplaintCollection
	Invoices     InvoiceCollection
	Maintenances MaintenanceCollection
}

// NewCollections wires the Mongo-backed implementations against a database.
func NewCollections(database *mongo.Database) *Collections {
	return &Collections{
		Users:        &MongoUserCollection{Collection: database.Collection("users")},
		Projects:     &MongoProjectCollection{Collection: database.Collection("projects")},
		Complaints:   &MongoComplaintCollection{Collection: database.Collection("complaints")},
		Invoices:     &MongoInvoiceCollection{Collection: database.Collection("invoices")},
		Maintenances: &MongoMaintenanceCollection{Collection: database.Collection("maintenances")},
	}
}
