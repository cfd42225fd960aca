// internal/services/tryon_client.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/javajoker/tailor-backend/internal/config"
)

// Responses larger than this are refused.
const maxImageBytes = 20 << 20

// TryOnProxy renders a garment onto a photo of the user.
type TryOnProxy interface {
	TryOn(ctx context.Context, avatar, garment []byte) ([]byte, error)
}

// ImageFetcher downloads an image by URL.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// RapidAPIClient calls the try-on diffusion API and downloads source images.
type RapidAPIClient struct {
	cfg    config.TryOnConfig
	client *http.Client
}

func NewRapidAPIClient(cfg config.TryOnConfig) *RapidAPIClient {
	return &RapidAPIClient{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

func (c *RapidAPIClient) TryOn(ctx context.Context, avatar, garment []byte) ([]byte, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := writeFormFile(form, "avatar_image", "user.png", avatar); err != nil {
		return nil, err
	}
	if err := writeFormFile(form, "clothing_image", "garment.png", garment); err != nil {
		return nil, err
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("X-RapidAPI-Key", c.cfg.APIKey)
	req.Header.Set("X-RapidAPI-Host", c.cfg.APIHost)

	return c.do(req)
}

func (c *RapidAPIClient) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *RapidAPIClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if len(data) > 512 {
			data = data[:512]
		}
		return nil, fmt.Errorf("%s %s returned %d: %s", req.Method, req.URL.Host, resp.StatusCode, data)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("%s %s: response exceeds %d bytes", req.Method, req.URL.Host, maxImageBytes)
	}
	return data, nil
}

func writeFormFile(form *multipart.Writer, field, filename string, data []byte) error {
	part, err := form.CreateFormFile(field, filename)
	if err != nil {
		return err
	}
	_, err = part.Write(data)
	return err
}
