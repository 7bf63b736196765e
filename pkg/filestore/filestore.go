// Package filestore stores binary assets, currently profile images.
package filestore

import (
	"context"
	"io"
)

// Store saves and deletes binary assets by opaque id.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, id string) error
}
