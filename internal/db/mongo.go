package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// NewMongo connects and pings. The returned client is usable even when the
// ping fails: the driver keeps reconnecting and reads fail fast after timeout.
func NewMongo(uri, dbName string, timeout time.Duration) (*mongo.Client, *mongo.Database, error) {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	clientOptions := options.Client().ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout).
		SetRetryWrites(true).
		SetRetryReads(true).
		SetMaxConnIdleTime(15 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}

	database := client.Database(dbName)
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return client, database, fmt.Errorf("ping mongo: %w", err)
	}
	return client, database, nil
}
