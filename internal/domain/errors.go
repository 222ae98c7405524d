package domain

import (
	"errors"
	"fmt"
)

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// NetworkError represents a network-related error that may be retriable
type NetworkError struct {
	Op        string // Operation that failed (e.g., "GET /coins/markets")
	Err       error  // Underlying error
	Retriable bool   // Whether this error is retriable
}

func (e *NetworkError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) IsRetriable() bool {
	return e.Retriable
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new retriable network error
func NewNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: true}
}

// NewFatalNetworkError creates a non-retriable network error
func NewFatalNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: false}
}

// GatewayError is returned when the asset list cannot be loaded.
// The dashboard treats it as fatal for the view and offers a full reload.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return "gateway error [" + e.Op + "]: " + e.Err.Error()
}

// IsRetriable is always true: the user may reload the whole list.
func (e *GatewayError) IsRetriable() bool {
	return true
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// HistoryError is returned when a chart series cannot be produced.
// It is local to one chart session.
type HistoryError struct {
	AssetID string
	Days    int
	Err     error
}

func (e *HistoryError) Error() string {
	return fmt.Sprintf("history error [%s/%dd]: %v", e.AssetID, e.Days, e.Err)
}

// IsRetriable is false only when the asset is unknown to the source.
func (e *HistoryError) IsRetriable() bool {
	return !errors.Is(e.Err, ErrAssetNotFound)
}

func (e *HistoryError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps key-value store failures. These are logged and
// never reach the user.
type PersistenceError struct {
	Key string
	Op  string // "load", "save", "remove"
	Err error
}

func (e *PersistenceError) Error() string {
	return "persistence error [" + e.Op + " " + e.Key + "]: " + e.Err.Error()
}

func (e *PersistenceError) IsRetriable() bool {
	return false
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error (never retriable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

var (
	// ErrMalformedPayload is returned when a response body cannot be decoded.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrEmptyHistory is returned when no valid price point remains after filtering.
	ErrEmptyHistory = errors.New("no valid price points")

	// ErrAssetNotFound is returned when the history source does not know the asset. Not retriable.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrConfigNotFound is returned when configuration file is missing
	ErrConfigNotFound = errors.New("configuration not found")
)
