package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	gcs "cloud.google.com/go/storage"
)

// ObjectStore is the storage contract the worker renders against: three
// logical buckets (uploads, captions, renders) reached through time-boxed
// signed URLs.
type ObjectStore interface {
	// SignedURL issues a time-boxed download URL for an object.
	SignedURL(ctx context.Context, bucket, object string, ttl time.Duration) (string, error)
	// PublicURL returns the unauthenticated URL for an object; only useful
	// for public buckets, used as a signing fallback.
	PublicURL(bucket, object string) string
	// Upload writes an object, overwriting any existing content.
	Upload(ctx context.Context, bucket, object string, data []byte, contentType string) error
}

// Client implements ObjectStore against Google Cloud Storage.
type Client struct {
	client *gcs.Client
}

func NewClient(ctx context.Context) (*Client, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("init storage client: %w", err)
	}
	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) SignedURL(ctx context.Context, bucket, object string, ttl time.Duration) (string, error) {
	if bucket == "" || object == "" {
		return "", fmt.Errorf("bucket and object are required")
	}
	signed, err := c.client.Bucket(bucket).SignedURL(object, &gcs.SignedURLOptions{
		Scheme:  gcs.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("signed url: %w", err)
	}
	return signed, nil
}

func (c *Client) PublicURL(bucket, object string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, url.PathEscape(object))
}

func (c *Client) Upload(ctx context.Context, bucket, object string, data []byte, contentType string) error {
	w := c.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %s/%s: %w", bucket, object, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize object %s/%s: %w", bucket, object, err)
	}
	return nil
}

// DownloadToFile fetches a URL into a local file.
func DownloadToFile(ctx context.Context, rawURL, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("download failed: %d - %s", resp.StatusCode, string(body))
	}

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create download target: %w", err)
	}
	defer func() {
		_ = out.Close()
	}()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("write download target: %w", err)
	}
	return nil
}
