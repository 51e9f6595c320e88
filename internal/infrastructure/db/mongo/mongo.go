package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultTimeout = 10 * time.Second

// Config captures the settings required to reach the registry database.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client and verifies connectivity with a
// primary ping. A default timeout is applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// Store bundles the registry repositories sharing one database.
type Store struct {
	EnergyObjects *EnergyObjectRepository
	Users         *UserRepository
}

// NewStore builds the repositories and creates their indexes.
func NewStore(ctx context.Context, db *mongo.Database) (*Store, error) {
	s := &Store{
		EnergyObjects: NewEnergyObjectRepository(db),
		Users:         NewUserRepository(db),
	}
	if err := s.EnergyObjects.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("energy object indexes: %w", err)
	}
	if err := s.Users.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("user indexes: %w", err)
	}
	return s, nil
}
