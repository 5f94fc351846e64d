package mongodb

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/codequest/codequest-api/internal/store"
)

// MapError maps a MongoDB driver error to an appropriate store error.
// It wraps the original error to preserve context and provide better
// debugging information. This function should be used in all database
// operations to ensure consistent error handling.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}

	// Return the original error for errors that don't have specific mappings
	return err
}

// IsNotFoundError checks if the given error represents a "not found"
// scenario, covering both the raw driver error and mapped store errors.
func IsNotFoundError(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, store.ErrNotFound)
}
