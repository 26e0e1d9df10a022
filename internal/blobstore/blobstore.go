// Package blobstore moves bytes in and out of the object store buckets.
package blobstore

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("object not found")

// Store is the object store gateway.
type Store interface {
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error
	Move(ctx context.Context, bucket, src, dst string) error
	Delete(ctx context.Context, bucket, key string) error
}

// FilterSuffix keeps keys ending in suffix, case-insensitively.
func FilterSuffix(keys []string, suffix string) []string {
	suffix = strings.ToLower(suffix)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.HasSuffix(strings.ToLower(k), suffix) {
			out = append(out, k)
		}
	}
	return out
}

// ExcludePrefix drops keys starting with any of prefixes.
func ExcludePrefix(keys []string, prefixes ...string) []string {
	out := make([]string, 0, len(keys))
next:
	for _, k := range keys {
		for _, p := range prefixes {
			if p != "" && strings.HasPrefix(k, p) {
				continue next
			}
		}
		out = append(out, k)
	}
	return out
}

// URI renders the s3:// address of an object.
func URI(bucket, key string) string {
	return "s3://" + bucket + "/" + key
}
