package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Dualog-students/GridFSCleaner/pkg/gc"
)

// FileExists implements gc.FileStore with a limit-1 count on the files
// collection's _id index. One round trip, no document body.
func (s *Store) FileExists(ctx context.Context, id gc.FileID) (bool, error) {
	n, err := s.files.CountDocuments(ctx,
		bson.D{{Key: "_id", Value: primitive.ObjectID(id)}},
		options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("lookup file %s: %w", id, err)
	}
	return n > 0, nil
}
