package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// UploadObject writes the object under key into the default bucket, replacing
// any existing content.
func (c *Client) UploadObject(ctx context.Context, key, contentType string, body io.Reader) error {
	if c == nil || c.tokenSource == nil {
		return errors.New("gcs client not initialized")
	}
	if key == "" {
		return errors.New("object key is required")
	}

	u := fmt.Sprintf(
		"https://storage.googleapis.com/upload/storage/v1/b/%s/o?uploadType=media&name=%s",
		url.PathEscape(c.defaultBucket),
		url.QueryEscape(key),
	)
	resp, err := c.authorizedDo(ctx, http.MethodPost, u, contentType, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return responseError("gcs upload failed", resp)
	}
	return nil
}

// DeleteObject removes the object stored under key from the default bucket.
// A missing object counts as already deleted.
func (c *Client) DeleteObject(ctx context.Context, key string) error {
	if c == nil || c.tokenSource == nil {
		return errors.New("gcs client not initialized")
	}
	if key == "" {
		return errors.New("object key is required")
	}

	u := fmt.Sprintf(
		"https://storage.googleapis.com/storage/v1/b/%s/o/%s",
		url.PathEscape(c.defaultBucket),
		url.PathEscape(key),
	)
	resp, err := c.authorizedDo(ctx, http.MethodDelete, u, "", nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return responseError("gcs delete failed", resp)
	}
}

// PublicURL returns the canonical public URL for an object in the default
// bucket.
func (c *Client) PublicURL(key string) string {
	if c == nil || key == "" {
		return ""
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.defaultBucket, key)
}

// Upload implements storage.BlobStore.
func (c *Client) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	return c.UploadObject(ctx, key, contentType, body)
}

// Delete implements storage.BlobStore.
func (c *Client) Delete(ctx context.Context, key string) error {
	return c.DeleteObject(ctx, key)
}
