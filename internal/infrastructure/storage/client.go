// Package storage implements the external file-storage API client.
// Uploaded documents (transcripts, recommendation letters, portfolios)
// live in this service; the tracker keeps only the URL and reference.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the storage API client.
type ClientConfig struct {
	// BaseURL is the storage API base URL.
	BaseURL string

	// APIKey is the bearer token for authentication.
	APIKey string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// MaxFileSize is the largest accepted upload, in bytes.
	MaxFileSize int64
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:     baseURL,
		Timeout:     30 * time.Second,
		MaxFileSize: 20 << 20,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the storage API client.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
}

// NewClient creates a new storage API client.
func NewClient(config ClientConfig) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// UploadRequest describes a file to store.
type UploadRequest struct {
	// FileName is the original file name.
	FileName string

	// ContentType is the MIME type of the payload.
	ContentType string

	// Data is the file payload.
	Data io.Reader

	// Size is the payload size in bytes, when known.
	Size int64
}

// StoredFile is the storage service's record of an upload.
type StoredFile struct {
	// URL is the public download URL.
	URL string `json:"url"`

	// ExternalRef is the storage-side identifier used for deletion.
	ExternalRef string `json:"ref"`

	// Size is the stored size in bytes.
	Size int64 `json:"size"`
}

// Upload stores a file and returns its URL and reference.
func (c *Client) Upload(ctx context.Context, req UploadRequest) (*StoredFile, error) {
	if req.FileName == "" {
		return nil, shared.NewDomainError("storage", "Upload", shared.ErrInvalidInput,
			"file name is required")
	}
	if req.Size > 0 && c.config.MaxFileSize > 0 && req.Size > c.config.MaxFileSize {
		return nil, shared.NewDomainError("storage", "Upload", shared.ErrValueOutOfRange,
			fmt.Sprintf("file exceeds the %d byte limit", c.config.MaxFileSize))
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", req.FileName)
	if err != nil {
		return nil, fmt.Errorf("create multipart form: %w", err)
	}
	if _, err := io.Copy(part, req.Data); err != nil {
		return nil, fmt.Errorf("copy file payload: %w", err)
	}
	if req.ContentType != "" {
		if err := writer.WriteField("content_type", req.ContentType); err != nil {
			return nil, fmt.Errorf("write content type field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/v1/files", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, shared.WrapError("storage", "Upload", shared.ErrServiceUnavailable,
			"storage request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return nil, shared.WrapError("storage", "Upload", shared.ErrServiceUnavailable,
			fmt.Sprintf("storage returned status %d", resp.StatusCode), errFromBody(respBody))
	}
	if resp.StatusCode >= 400 {
		return nil, shared.WrapError("storage", "Upload", shared.ErrExternalService,
			fmt.Sprintf("storage rejected the upload with status %d", resp.StatusCode), errFromBody(respBody))
	}

	var stored StoredFile
	if err := json.Unmarshal(respBody, &stored); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if stored.URL == "" || stored.ExternalRef == "" {
		return nil, shared.NewDomainError("storage", "Upload", shared.ErrExternalService,
			"storage returned an incomplete file record")
	}

	return &stored, nil
}

// Delete removes a stored file by its reference. A missing file is not
// an error.
func (c *Client) Delete(ctx context.Context, externalRef string) error {
	if externalRef == "" {
		return nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.config.BaseURL+"/v1/files/"+url.PathEscape(externalRef), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.authorize(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return shared.WrapError("storage", "Delete", shared.ErrServiceUnavailable,
			"storage request failed", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil
	case resp.StatusCode >= 500:
		return shared.WrapError("storage", "Delete", shared.ErrServiceUnavailable,
			fmt.Sprintf("storage returned status %d", resp.StatusCode), nil)
	case resp.StatusCode >= 400:
		return shared.WrapError("storage", "Delete", shared.ErrExternalService,
			fmt.Sprintf("storage rejected the delete with status %d", resp.StatusCode), nil)
	}

	return nil
}

// IsHealthy checks if the storage API is reachable.
func (c *Client) IsHealthy(ctx context.Context) bool {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.config.BaseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

func (c *Client) authorize(req *http.Request) {
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}
}

// errFromBody extracts the service's error message when present.
func errFromBody(body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return errors.New(payload.Error)
	}
	return nil
}
