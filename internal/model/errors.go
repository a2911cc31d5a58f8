package model

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks input rejected before any side effect (empty turn,
// blank persona id).
var ErrInvalidInput = errors.New("invalid input")

// EmbeddingError wraps a failure of the embedding collaborator. It is
// recoverable: the affected candidate is dropped, siblings continue.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// StorageError wraps a persistence failure. It propagates to the caller; the
// atomic triplet write guarantees no partial state was left behind.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
