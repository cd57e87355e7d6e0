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
	"path"
	"time"

	"go.uber.org/zap"
)

const (
	VariantPublic = "public" // Orijinal boyut

	defaultImagesBaseURL = "https://api.cloudflare.com/client/v4"
	imageDeliveryURL     = "https://imagedelivery.net"
)

// CloudflareImageResponse represents the response from Cloudflare Images API
type CloudflareImageResponse struct {
	Success bool `json:"success"`
	Result  struct {
		ID       string   `json:"id"`
		Variants []string `json:"variants"`
	} `json:"result"`
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// CloudflareImages has no batch delete endpoint, so DeleteMany issues one request per image.
type CloudflareImages struct {
	accountID   string
	apiToken    string
	baseURL     string
	client      *http.Client
	accountHash string // Cloudflare Images URL'leri için özel hash değeri
	log         *zap.Logger
}

func NewCloudflareImages(accountID, token, accountHash string, log *zap.Logger) *CloudflareImages {
	client := &http.Client{
		Timeout: 5 * time.Minute, // Büyük dosya yüklemeleri için daha uzun timeout
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &CloudflareImages{
		accountID:   accountID,
		apiToken:    token,
		baseURL:     defaultImagesBaseURL,
		client:      client,
		accountHash: accountHash,
		log:         log.With(zap.String("component", "cloudflare-images")),
	}
}

// Upload dosyayı Cloudflare Images'a yükler. The key's base name is sent as the file name.
func (c *CloudflareImages) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*Object, error) {
	var buf bytes.Buffer
	if size > 0 {
		buf.Grow(int(size))
	}
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}
	if buf.Len() == 0 {
		return nil, errors.New("empty file, size is 0 bytes")
	}
	fileBytes := buf.Bytes()

	createForm := func() (*bytes.Buffer, string, error) {
		formBuf := &bytes.Buffer{}
		writer := multipart.NewWriter(formBuf)

		part, err := writer.CreateFormFile("file", path.Base(key))
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := part.Write(fileBytes); err != nil {
			return nil, "", fmt.Errorf("failed to copy file: %w", err)
		}
		if err := writer.WriteField("requireSignedURLs", "false"); err != nil {
			return nil, "", fmt.Errorf("failed to add form field: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, "", fmt.Errorf("failed to close writer: %w", err)
		}
		return formBuf, writer.FormDataContentType(), nil
	}

	formBuf, formContentType, err := createForm()
	if err != nil {
		return nil, err
	}

	uploadURL := fmt.Sprintf("%s/accounts/%s/images/v1", c.baseURL, c.accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, formBuf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// GetBody fonksiyonunu ekle - HTTP/2 retry için gerekli
	req.GetBody = func() (io.ReadCloser, error) {
		newForm, _, err := createForm()
		if err != nil {
			return nil, err
		}
		return io.NopCloser(newForm), nil
	}
	req.Header.Set("Content-Type", formContentType)
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.Error("upload rejected", zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return nil, fmt.Errorf("cloudflare returned non-OK status: %d, response: %s", resp.StatusCode, body)
	}

	var response CloudflareImageResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !response.Success {
		return nil, fmt.Errorf("cloudflare returned error: %v", response.Errors)
	}

	return &Object{
		ID:  response.Result.ID,
		URL: c.GetVariantURL(response.Result.ID, VariantPublic),
	}, nil
}

func (c *CloudflareImages) Delete(ctx context.Context, imageID string) error {
	deleteURL := fmt.Sprintf("%s/accounts/%s/images/v1/%s", c.baseURL, c.accountID, imageID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, deleteURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNotFound:
		return nil
	default:
		return fmt.Errorf("failed to delete image %s: %d", imageID, resp.StatusCode)
	}
}

func (c *CloudflareImages) DeleteMany(ctx context.Context, imageIDs []string) error {
	var errs []error
	for _, id := range imageIDs {
		if err := c.Delete(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		c.log.Error("batch delete incomplete", zap.Int("failed", len(errs)), zap.Int("total", len(imageIDs)))
	}
	return errors.Join(errs...)
}

func (c *CloudflareImages) GetVariantURL(imageID string, variant string) string {
	return fmt.Sprintf("%s/%s/%s/%s", imageDeliveryURL, c.accountHash, imageID, variant)
}
