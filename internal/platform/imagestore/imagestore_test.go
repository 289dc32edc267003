package imagestore

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestMemoryStore_PutAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	data := []byte("jpeg-bytes")
	url, err := store.Put(ctx, "uploads/user-1/123.jpg", data, ContentTypeJPEG)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(url, "uploads/user-1/123.jpg") {
		t.Errorf("unexpected url %q", url)
	}

	got, err := store.Get(ctx, "uploads/user-1/123.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("got %q, want %q", got, data)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Get(context.Background(), "encounter/nobody/1.jpg")
	if !errors.Is(err, ErrImageNotFound) {
		t.Errorf("expected ErrImageNotFound, got %v", err)
	}
}

func TestMemoryStore_RejectsEmpty(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Put(context.Background(), "uploads/u/1.jpg", nil, ContentTypeJPEG)
	if !errors.Is(err, ErrEmptyImage) {
		t.Errorf("expected ErrEmptyImage, got %v", err)
	}
}

func TestMemoryStore_CopiesData(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	data := []byte("original")
	if _, err := store.Put(ctx, "k", data, ContentTypeJPEG); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data[0] = 'X'

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "original" {
		t.Errorf("stored data was mutated: %q", got)
	}
}

func TestKeyBuilders(t *testing.T) {
	now := time.Unix(1700000000, 0)

	if got := ProfileKey("user-7", now); got != "uploads/user-7/1700000000.jpg" {
		t.Errorf("ProfileKey = %q", got)
	}
	if got := EncounterKey("user-7", now); got != "encounter/user-7/1700000000.jpg" {
		t.Errorf("EncounterKey = %q", got)
	}
}
