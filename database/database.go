// database/database.go
package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Mongo is the process-wide document store connection. It connects on first
// use and reuses the client afterwards; a failed attempt is retried on the
// next call instead of being cached.
type Mongo struct {
	uri        string
	database   string
	collection string
	log        *zap.Logger

	mu     sync.Mutex
	client *mongo.Client
}

func NewMongo(uri, database, collection string, log *zap.Logger) *Mongo {
	return &Mongo{uri: uri, database: database, collection: collection, log: log}
}

// Client returns the connected client, connecting if needed.
func (m *Mongo) Client(ctx context.Context) (*mongo.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		return m.client, nil
	}
	if m.uri == "" {
		return nil, fmt.Errorf("MONGODB_URI environment variable is required")
	}

	clientOptions := options.Client().
		ApplyURI(m.uri).
		SetConnectTimeout(20 * time.Second).
		SetServerSelectionTimeout(15 * time.Second).
		SetSocketTimeout(20 * time.Second).
		SetMaxPoolSize(50)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create MongoDB client: %w", err)
	}

	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m.log.Info("connected to MongoDB", zap.String("database", m.database))
	m.client = client
	return client, nil
}

// Collection returns the assets collection.
func (m *Mongo) Collection(ctx context.Context) (*mongo.Collection, error) {
	client, err := m.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(m.database).Collection(m.collection), nil
}

// Ping checks the connection, connecting first if needed.
func (m *Mongo) Ping(ctx context.Context) error {
	client, err := m.Client(ctx)
	if err != nil {
		return err
	}
	return client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.client.Disconnect(ctx); err != nil {
		m.log.Warn("MongoDB disconnect warning", zap.Error(err))
	}
	m.client = nil
}
