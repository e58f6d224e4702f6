package db

import (
	"context"
	"fmt"
	"time"

	"github.com/ukydev/walkroutes/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// RoutesCollectionName is the collection holding saved routes.
const RoutesCollectionName = "routes"

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo URI is empty")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	// Ping to verify connection
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// MongoRouteCollection wraps a MongoDB collection for route operations.
type MongoRouteCollection struct {
	Collection *mongo.Collection
}

// NewMongoRouteCollection returns the routes collection of the given database.
// Embedded documents decode as bson.M so stored geometry serializes back to the
// same JSON object it was created from.
func NewMongoRouteCollection(database *mongo.Database) *MongoRouteCollection {
	opts := options.Collection().SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	return &MongoRouteCollection{Collection: database.Collection(RoutesCollectionName, opts)}
}

// EnsureIndexes creates the index backing newest-first listing.
func (c *MongoRouteCollection) EnsureIndexes(ctx context.Context) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	return err
}

// InsertRoute inserts a route record into the collection and returns it as stored.
func (c *MongoRouteCollection) InsertRoute(ctx context.Context, route models.Route) (models.Route, error) {
	if c.Collection == nil {
		return models.Route{}, fmt.Errorf("mongo collection is nil")
	}
	if route.ID.IsZero() {
		route.ID = primitive.NewObjectID()
	}
	if route.CreatedAt.IsZero() {
		route.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	if _, err := c.Collection.InsertOne(ctx, route); err != nil {
		return models.Route{}, err
	}
	return route, nil
}

// FindRoutes returns every saved route, newest first.
func (c *MongoRouteCollection) FindRoutes(ctx context.Context) ([]models.Route, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := c.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	routes := make([]models.Route, 0)
	if err := cursor.All(ctx, &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

// DeleteRoute deletes a route by its ID. Deleting an id that does not exist is
// not an error; the returned bool tells the caller whether anything was removed.
func (c *MongoRouteCollection) DeleteRoute(ctx context.Context, id string) (bool, error) {
	if c.Collection == nil {
		return false, fmt.Errorf("mongo collection is nil")
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

// Ping checks that the backing database is reachable.
func (c *MongoRouteCollection) Ping(ctx context.Context) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	return c.Collection.Database().Client().Ping(ctx, readpref.Primary())
}
