// Package storage keeps uploaded files: event logos, documents and the
// participants' signed attachments.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/gdg-garage/convention-booking/internal/config"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type Storage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	// URL is where clients download the file from.
	URL(key string) string
}

// New picks the backend named by STORAGE_BACKEND.
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.StorageBackend {
	case "", "local":
		return NewLocal(cfg.MediaRoot, cfg.MediaURL), nil
	case "s3":
		return NewS3(ctx, cfg.S3Bucket, cfg.S3PublicURL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// CleanName turns an uploaded file name into something safe for a key,
// keeping the extension.
func CleanName(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	ext := strings.ToLower(path.Ext(base))
	name := slug.Make(strings.TrimSuffix(base, path.Ext(base)))
	if name == "" {
		name = "file"
	}
	return name + ext
}

// UniqueKey prefixes the file name with a random id so uploads never
// overwrite each other.
func UniqueKey(dir, filename string) string {
	return path.Join(dir, uuid.NewString()+"-"+CleanName(filename))
}

// AttachmentKey is where a participant's upload for a booking lives.
func AttachmentKey(code, filename string) string {
	return path.Join("attachments", code, CleanName(filename))
}
