// Package blob uploads images to the external blob host and returns the
// URL documents reference them by.
package blob

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
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

var (
	// ErrUpload covers every failed upload: transport errors, non-2xx
	// responses, error payloads and responses without a URL.
	ErrUpload = errors.New("blob upload failed")
	// ErrNotImage is returned for payloads that do not decode as an image.
	ErrNotImage = errors.New("payload is not an image")
)

const (
	defaultMaxDimension = 1600
	jpegQuality         = 85
	maxResponseBytes    = 1 << 20
)

// Config holds the upload endpoint settings. Zero MaxDimension and Timeout
// fall back to defaults.
type Config struct {
	URL          string
	Preset       string
	MaxDimension int
	Timeout      time.Duration
}

// Uploader posts images to an unsigned-upload endpoint.
type Uploader struct {
	url        string
	preset     string
	maxDim     int
	httpClient *http.Client
}

// NewUploader returns an Uploader for cfg.
func NewUploader(cfg Config) *Uploader {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxDimension <= 0 {
		cfg.MaxDimension = defaultMaxDimension
	}
	return &Uploader{
		url:    cfg.URL,
		preset: cfg.Preset,
		maxDim: cfg.MaxDimension,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Upload normalizes the image (orientation, bounded size, JPEG) and posts
// it. It returns the hosted URL.
func (u *Uploader) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if u.url == "" {
		return "", fmt.Errorf("%w: no upload url configured", ErrUpload)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	b := img.Bounds()
	if b.Dx() > u.maxDim || b.Dy() > u.maxDim {
		img = imaging.Fit(img, u.maxDim, u.maxDim, imaging.Lanczos)
	}

	var encoded bytes.Buffer
	if err := imaging.Encode(&encoded, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}

	body, contentType, err := u.form(jpegName(name), encoded.Bytes())
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	defer resp.Body.Close()

	var out uploadResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out)
	switch {
	case out.Error != nil && out.Error.Message != "":
		return "", fmt.Errorf("%w: %s", ErrUpload, out.Error.Message)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", fmt.Errorf("%w: status %d", ErrUpload, resp.StatusCode)
	case decodeErr != nil:
		return "", fmt.Errorf("%w: decode response: %v", ErrUpload, decodeErr)
	case out.SecureURL == "":
		return "", fmt.Errorf("%w: response has no secure_url", ErrUpload)
	}
	return out.SecureURL, nil
}

func (u *Uploader) form(name string, image []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("upload_preset", u.preset); err != nil {
		return nil, "", err
	}
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func jpegName(name string) string {
	base := strings.TrimSuffix(path.Base(name), path.Ext(name))
	if base == "" || base == "." || base == "/" {
		base = "upload"
	}
	return base + ".jpg"
}
