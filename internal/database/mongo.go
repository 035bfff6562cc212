package database

import (
	"context"
	"fmt"
	"time"

	"shop-crud/internal/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

// Mongo is the process wide connection. The client is safe for concurrent use.
type Mongo struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func ClientOptions(uri string, timeout time.Duration) *options.ClientOptions {
	return options.Client().
		ApplyURI(uri).
		SetMonitor(otelmongo.NewMonitor()).
		SetServerSelectionTimeout(timeout).
		SetConnectTimeout(timeout)
}

// Connect dials uri and pings the primary before returning, so a bad URI fails at startup.
func Connect(ctx context.Context, uri, dbName string, timeout time.Duration) (*Mongo, error) {
	client, err := mongo.Connect(ctx, ClientOptions(uri, timeout))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	logger.Info(ctx, "Connected to MongoDB successfully")

	return &Mongo{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	if err := m.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect MongoDB: %w", err)
	}
	return nil
}
