package storage

import (
	"context"
	"io"
)

// DocumentStore adapts Client to the narrow upload/delete port the
// command layer depends on.
type DocumentStore struct {
	client *Client
}

// NewDocumentStore creates a new DocumentStore.
func NewDocumentStore(client *Client) *DocumentStore {
	return &DocumentStore{client: client}
}

// Upload stores a file and returns its URL and deletion reference.
func (s *DocumentStore) Upload(ctx context.Context, name, contentType string, data io.Reader, size int64) (string, string, error) {
	stored, err := s.client.Upload(ctx, UploadRequest{
		FileName:    name,
		ContentType: contentType,
		Data:        data,
		Size:        size,
	})
	if err != nil {
		return "", "", err
	}
	return stored.URL, stored.ExternalRef, nil
}

// Delete removes a stored file by reference.
func (s *DocumentStore) Delete(ctx context.Context, externalRef string) error {
	return s.client.Delete(ctx, externalRef)
}
