package store

import "context"

// FileStore is the contract for the external object-storage collaborator.
// The task subsystem only ever asks it to delete the objects referenced by
// a task that is being removed.
type FileStore interface {
	// DeleteFiles removes the objects with the given storage keys in one
	// batch call. A nil error means the batch was accepted; individual key
	// misses are not reported.
	DeleteFiles(ctx context.Context, keys []string) error
}
