// Package blobstore uploads bank slip proof images to the media store
// and returns the durable public URL. Bucket layout and retention are
// owned by the store, not by this client.
package blobstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

type Client struct {
	UploadURL    string
	UploadPreset string
	HTTP         *http.Client
}

func New(uploadURL, uploadPreset string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		UploadURL:    uploadURL,
		UploadPreset: uploadPreset,
		HTTP:         httpClient,
	}
}

type uploadResp struct {
	SecureURL string `json:"secure_url"`
}

func (c *Client) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write file part: %w", err)
	}
	if err := writer.WriteField("upload_preset", c.UploadPreset); err != nil {
		return "", fmt.Errorf("write preset field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart body: %w", err)
	}

	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.UploadURL, body)
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("blob store %s: %s", resp.Status, string(raw))
	}

	var out uploadResp
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if out.SecureURL == "" {
		return "", fmt.Errorf("blob store returned no url")
	}

	return out.SecureURL, nil
}
