// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package media resolves a product's image_uri into raw bytes. Worker-
// Search's image_search path accepts either raw bytes or a gs:// URI; this
// package makes the two uniform for internal/embedding's EmbedImage.
package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

// Fetcher resolves an image_uri to bytes. gs://bucket/object URIs are
// downloaded via Cloud Storage; anything else is treated as already-
// resolved raw content and returned unchanged (a convenience for callers
// that already have bytes in hand, e.g. direct uploads or local fixtures).
type Fetcher struct {
	client *storage.Client
}

// NewFetcher wraps an already-constructed Cloud Storage client. Client
// construction (credentials, emulator host) is the caller's concern,
// matching the teacher's pattern of assembling external clients in main.
func NewFetcher(client *storage.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch returns the bytes behind imageURI. A gs:// URI is downloaded from
// Cloud Storage; any other value is returned as raw bytes.
func (f *Fetcher) Fetch(ctx context.Context, imageURI string) ([]byte, error) {
	bucket, object, ok := parseGCSURI(imageURI)
	if !ok {
		return []byte(imageURI), nil
	}

	rc, err := f.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("media fetcher: open gs://%s/%s: %w", bucket, object, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("media fetcher: read gs://%s/%s: %w", bucket, object, err)
	}
	return data, nil
}

// parseGCSURI splits "gs://bucket/path/to/object" into bucket and object.
func parseGCSURI(uri string) (bucket, object string, ok bool) {
	const prefix = "gs://"
	if !strings.HasPrefix(uri, prefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(uri, prefix)
	idx := strings.Index(rest, "/")
	if idx < 0 || idx == len(rest)-1 {
		return "", "", false
	}
	return rest[:idx], rest[idx+1:], true
}
