// Package storage provides persistence abstractions for user settings.
package storage

import (
	"context"
	"errors"
	"time"
)

// Store persists settings as string key/value pairs.
type Store interface {
	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
	DeleteConfig(ctx context.Context, key string) error
	ListConfig(ctx context.Context) ([]Setting, error)

	// Lifecycle
	Close() error
}

// Setting is one stored key/value pair.
type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// NewSetting creates a setting stamped with the current time.
func NewSetting(key, value string) Setting {
	return Setting{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
}

// ErrNotFound is returned when a record is not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e ErrNotFound) Error() string {
	return e.Resource + " not found: " + e.ID
}

// IsNotFound checks if an error is, or wraps, a not found error.
func IsNotFound(err error) bool {
	var nf ErrNotFound
	return errors.As(err, &nf)
}
