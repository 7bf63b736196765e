package filestore

import (
	"context"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
)

// GridFSStore implements Store on a MongoDB GridFS bucket.
type GridFSStore struct {
	bucket *gridfs.Bucket
}

// NewGridFSStore creates a GridFS-backed file store on the given database.
func NewGridFSStore(db *mongo.Database) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db)
	if err != nil {
		return nil, fmt.Errorf("filestore: failed to open gridfs bucket: %w", err)
	}
	return &GridFSStore{bucket: bucket}, nil
}

// Save uploads the stream under name and returns the stored file id.
func (s *GridFSStore) Save(_ context.Context, name string, r io.Reader) (string, error) {
	id, err := s.bucket.UploadFromStream(name, r)
	if err != nil {
		return "", fmt.Errorf("filestore: upload failed: %w", err)
	}
	return id.Hex(), nil
}

// Delete removes a stored file. Deleting an unknown id is a no-op.
func (s *GridFSStore) Delete(_ context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("filestore: invalid file id %q: %w", id, err)
	}
	if err := s.bucket.Delete(objectID); err != nil && err != gridfs.ErrFileNotFound {
		return fmt.Errorf("filestore: delete failed: %w", err)
	}
	return nil
}
