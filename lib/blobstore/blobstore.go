// Package blobstore is a path-addressed content store: the durable state of
// a user (playlist list, day records, schedule) lives in small blobs under
// well-known keys, with an opaque revision token guarding overwrites.
package blobstore

import (
	"context"
	"errors"
)

var (
	ErrNotFound         = errors.New("object not found")
	ErrRevisionMismatch = errors.New("object was modified concurrently")
)

type Object struct {
	Data []byte
	// opaque token identifying the revision read; passed back to Put
	// to detect concurrent writers
	Revision string
}

type Store interface {
	Get(ctx context.Context, key string) (Object, error)
	// Put writes data under key. An empty expectedRevision means
	// "create or overwrite whatever is there"; a non-empty one must
	// match the stored revision or ErrRevisionMismatch is returned.
	Put(ctx context.Context, key string, data []byte, expectedRevision string) error
	// List returns the names of the immediate children under prefix,
	// e.g. List("data") -> user ids. A missing prefix is an empty
	// list, not an error.
	List(ctx context.Context, prefix string) ([]string, error)
}
