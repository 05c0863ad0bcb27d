// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package upload routes uploaded files to named endpoints, checks them
// against the endpoint's limits and stores them in object storage.
package upload

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // register WebP decoder

	"learnhub/internal/models"
	"learnhub/internal/slug"
)

const (
	// CourseImageEndpoint is the endpoint used by the course image card.
	CourseImageEndpoint = "courseImage"

	// DefaultImageMaxBytes is the course image size limit.
	DefaultImageMaxBytes = 4 << 20

	// maxImagePixels caps the number of pixels to prevent memory bombs.
	maxImagePixels = 100_000_000
)

// imageTypes maps accepted image types to the stored file extension.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ErrUnknownEndpoint is returned for an endpoint name that isn't routed.
var ErrUnknownEndpoint = errors.New("upload: unknown endpoint")

var errNoOwner = errors.New("upload: owner is required")

// Error is a rejected upload. Message is shown to the user as is.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// Endpoint describes what one upload endpoint accepts.
type Endpoint struct {
	Name    string
	MaxSize int64
	Types   map[string]string // content type -> stored extension
	Prefix  string            // object key prefix
	Image   bool              // decode the header and record dimensions
}

// CourseImage accepts one image of up to maxBytes.
func CourseImage(maxBytes int64) Endpoint {
	if maxBytes <= 0 {
		maxBytes = DefaultImageMaxBytes
	}
	return Endpoint{
		Name:    CourseImageEndpoint,
		MaxSize: maxBytes,
		Types:   imageTypes,
		Prefix:  "courses",
		Image:   true,
	}
}

// TooLarge is the rejection for a file over the endpoint's size limit.
func (ep Endpoint) TooLarge() *Error {
	return &Error{
		Status:  http.StatusRequestEntityTooLarge,
		Message: fmt.Sprintf("File too large. Maximum size is %s.", formatSize(ep.MaxSize)),
	}
}

// Storage is where accepted files go.
type Storage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	FileURL(key string) string
}

// Service is the upload router.
type Service struct {
	storage   Storage
	endpoints map[string]Endpoint
	now       func() time.Time
}

// NewService routes the given endpoints to storage. A nil storage makes
// every upload fail with 503.
func NewService(storage Storage, endpoints ...Endpoint) *Service {
	s := &Service{
		storage:   storage,
		endpoints: make(map[string]Endpoint, len(endpoints)),
		now:       time.Now,
	}
	for _, ep := range endpoints {
		s.endpoints[ep.Name] = ep
	}
	return s
}

// Endpoint returns the named endpoint.
func (s *Service) Endpoint(name string) (Endpoint, bool) {
	ep, ok := s.endpoints[name]
	return ep, ok
}

// OwnerSegment is the key segment that marks objects uploaded by userID.
// User ids are opaque, so the segment is a digest rather than the id itself.
func OwnerSegment(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:16])
}

// Owns reports whether key was stored by userID through one of the
// service's endpoints.
func (s *Service) Owns(userID, key string) bool {
	if userID == "" {
		return false
	}
	seg := OwnerSegment(userID)
	for _, ep := range s.endpoints {
		if strings.HasPrefix(key, ep.Prefix+"/"+seg+"/") {
			return true
		}
	}
	return false
}

// Upload checks data against the endpoint and stores it under the owner's
// key segment.
func (s *Service) Upload(ctx context.Context, endpoint, owner, filename string, data []byte) (*models.Upload, error) {
	ep, ok := s.endpoints[endpoint]
	if !ok {
		return nil, ErrUnknownEndpoint
	}
	if s.storage == nil {
		return nil, &Error{Status: http.StatusServiceUnavailable, Message: "File storage is not configured."}
	}
	if owner == "" {
		return nil, errNoOwner
	}
	if len(data) == 0 {
		return nil, &Error{Status: http.StatusBadRequest, Message: "No file provided."}
	}
	if int64(len(data)) > ep.MaxSize {
		return nil, ep.TooLarge()
	}

	contentType := http.DetectContentType(data)
	ext, ok := ep.Types[contentType]
	if !ok {
		return nil, &Error{Status: http.StatusBadRequest, Message: fmt.Sprintf("File type %q is not allowed.", contentType)}
	}

	res := &models.Upload{
		Name:        filepath.Base(filename),
		Size:        int64(len(data)),
		ContentType: contentType,
	}
	if ep.Image {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, &Error{Status: http.StatusBadRequest, Message: "File is not a valid image."}
		}
		if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
			return nil, &Error{Status: http.StatusBadRequest, Message: fmt.Sprintf("Image is too large: %dx%d.", cfg.Width, cfg.Height)}
		}
		res.Width, res.Height = cfg.Width, cfg.Height
	}

	now := s.now()
	res.Key = fmt.Sprintf("%s/%s/%d/%02d/%s-%s%s",
		ep.Prefix, OwnerSegment(owner), now.Year(), now.Month(), uuid.New().String(), slug.FileStem(filename), ext)
	if err := s.storage.Put(ctx, res.Key, contentType, bytes.NewReader(data), res.Size); err != nil {
		return nil, fmt.Errorf("upload %s: %w", endpoint, err)
	}
	res.URL = s.storage.FileURL(res.Key)
	return res, nil
}

// formatSize renders a byte count in whole MB or KB.
func formatSize(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%d MB", n>>20)
	}
	if n >= 1<<10 {
		return fmt.Sprintf("%d KB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}
