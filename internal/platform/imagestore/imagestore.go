// Package imagestore provides storage for member reference photos and
// encounter photos. It defines the Store interface, an S3-backed
// implementation, and a thread-safe in-memory implementation suitable for
// testing and development.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrImageNotFound = errors.New("image not found")
	ErrEmptyImage    = errors.New("image data is empty")
)

// MaxImageSize is the maximum allowed image size in bytes (10 MB).
const MaxImageSize = 10 * 1024 * 1024

// ContentTypeJPEG is the content type used for stored photos.
const ContentTypeJPEG = "image/jpeg"

// Store defines the contract for image storage backends. Put returns the
// public URL of the stored object.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
}

// ProfileKey builds the object key for a member reference photo uploaded by
// the given user.
func ProfileKey(userID string, now time.Time) string {
	return fmt.Sprintf("uploads/%s/%d.jpg", userID, now.Unix())
}

// EncounterKey builds the object key for an encounter photo captured during
// verification by the given user.
func EncounterKey(userID string, now time.Time) string {
	return fmt.Sprintf("encounter/%s/%d.jpg", userID, now.Unix())
}
