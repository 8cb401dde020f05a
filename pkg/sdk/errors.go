package lodestar

import (
	"errors"
	"fmt"
)

// Sentinel errors matching the API's error codes. Use errors.Is() to check.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrEmptyDocument       = errors.New("document is empty")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrEmbeddingProvider   = errors.New("embedding provider error")
	ErrIndexWrite          = errors.New("index write failed")
	ErrUnauthorized        = errors.New("unauthorized")
)

var codeSentinels = map[string]error{
	"not_found":                ErrNotFound,
	"validation_failed":        ErrInvalidArgument,
	"bad_request":              ErrInvalidArgument,
	"empty_document":           ErrEmptyDocument,
	"unsupported_file_type":    ErrUnsupportedFileType,
	"embedding_provider_error": ErrEmbeddingProvider,
	"index_write_failed":       ErrIndexWrite,
	"unauthorized":             ErrUnauthorized,
}

// APIError is a non-2xx reply from the service.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("lodestar: %s (%d): %s", e.Code, e.Status, e.Message)
}

// Unwrap maps the API error code onto its sentinel so errors.Is works.
func (e *APIError) Unwrap() error {
	return codeSentinels[e.Code]
}
