package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Dualog-students/GridFSCleaner/pkg/gc"
)

// chunksIndex is the unique index every GridFS bucket carries on its chunks
// collection. Hinting it makes the files_id projection a covered read.
var chunksIndex = bson.D{
	{Key: "files_id", Value: 1},
	{Key: "n", Value: 1},
}

// ScanFileIDs implements gc.ChunkStore. It opens one cursor over the whole
// chunks collection, projecting only files_id, and flushes the distinct
// identifiers of each server-delivered batch to the callback. Batch size is
// whatever the server returns; the application does not page manually.
func (s *Store) ScanFileIDs(ctx context.Context, fn func(batch []gc.FileID, chunkCount int) error) error {
	findOpts := options.Find().
		SetProjection(bson.D{
			{Key: "files_id", Value: 1},
			{Key: "_id", Value: 0},
		}).
		SetHint(chunksIndex)

	cursor, err := s.chunks.Find(ctx, bson.D{}, findOpts)
	if err != nil {
		return fmt.Errorf("open chunk cursor: %w", err)
	}
	// Close must succeed even when ctx was cancelled mid-scan.
	defer cursor.Close(context.WithoutCancel(ctx))

	var (
		batch      []gc.FileID
		seen       = make(map[gc.FileID]struct{})
		chunkCount int
	)

	for cursor.Next(ctx) {
		var doc struct {
			FilesID primitive.ObjectID `bson:"files_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return fmt.Errorf("decode chunk record: %w", err)
		}

		chunkCount++
		id := gc.FileID(doc.FilesID)
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			batch = append(batch, id)
		}

		// The driver's buffer runs dry exactly at a server batch boundary.
		if cursor.RemainingBatchLength() == 0 {
			if err := fn(batch, chunkCount); err != nil {
				return err
			}
			batch = nil
			seen = make(map[gc.FileID]struct{})
			chunkCount = 0
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("chunk cursor: %w", err)
	}

	if chunkCount > 0 {
		if err := fn(batch, chunkCount); err != nil {
			return err
		}
	}
	return nil
}

// CountChunks implements gc.ChunkStore.
func (s *Store) CountChunks(ctx context.Context, id gc.FileID) (int64, error) {
	n, err := s.chunks.CountDocuments(ctx, bson.D{{Key: "files_id", Value: primitive.ObjectID(id)}})
	if err != nil {
		return 0, fmt.Errorf("count chunks for %s: %w", id, err)
	}
	return n, nil
}

// DeleteChunks implements gc.ChunkStore. All of a file's chunks go in one
// DeleteMany command; there is no client-side transaction to manage and the
// operation is idempotent.
func (s *Store) DeleteChunks(ctx context.Context, id gc.FileID) (int64, error) {
	res, err := s.chunks.DeleteMany(ctx, bson.D{{Key: "files_id", Value: primitive.ObjectID(id)}})
	if err != nil {
		return 0, fmt.Errorf("delete chunks for %s: %w", id, err)
	}
	return res.DeletedCount, nil
}
