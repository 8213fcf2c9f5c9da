package db

// Description: Define error types for db package.

import "errors"

var (
	ErrNoDefaultMongoClient = errors.New("no mongodb client is registered with a connection string")

	// ErrNotFound reports that no configuration record exists for the key.
	ErrNotFound = errors.New("configuration not found")

	// ErrConflict reports an optimistic version check failure: the record
	// changed under the caller, who should reload and retry.
	ErrConflict = errors.New("configuration version conflict")
)
