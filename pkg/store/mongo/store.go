// Package mongo implements the chunk and file stores on a MongoDB GridFS
// bucket using the official driver.
//
// The scan never fetches chunk payloads: it projects only the files_id field
// and hints the bucket's {files_id, n} index, so the read is satisfied from
// the index. Chunk payloads run to 255KB per document; fetching them would
// dominate the run at any realistic scale.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Dualog-students/GridFSCleaner/internal/logger"
	"github.com/Dualog-students/GridFSCleaner/pkg/gc"
)

// Store implements gc.ChunkStore and gc.FileStore against one GridFS bucket.
type Store struct {
	client *mongo.Client
	chunks *mongo.Collection
	files  *mongo.Collection
	target string
}

var (
	_ gc.ChunkStore = (*Store)(nil)
	_ gc.FileStore  = (*Store)(nil)
)

// Connect establishes a client, verifies the server is reachable, and binds
// the bucket's files and chunks collections.
func Connect(ctx context.Context, cfg *Config) (*Store, error) {
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.DatabaseName())
	store := &Store{
		client: client,
		chunks: db.Collection(cfg.Bucket + ".chunks"),
		files:  db.Collection(cfg.Bucket + ".files"),
		target: cfg.Target(),
	}

	logger.Debug("connected to MongoDB",
		logger.KeyTarget, store.target,
		"bucket", cfg.Bucket)

	return store, nil
}

// Target returns the redacted store target for logging.
func (s *Store) Target() string {
	return s.target
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	return nil
}
