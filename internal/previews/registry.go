package previews

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/wpq-drafts/internal/draft"
	"github.com/localnerve/wpq-drafts/internal/metrics"
)

// URLPrefix is the path previews are served under. Preview URLs carry the
// local scheme so the draft controller revokes them on reset.
const URLPrefix = "/api/previews/"

var (
	ErrNotFound           = errors.New("preview not found")
	ErrTooLarge           = errors.New("upload exceeds the size limit")
	ErrEmpty              = errors.New("upload is empty")
	ErrUnsupportedContent = errors.New("upload is not a supported image")
)

// Accepted image types, matched against the sniffed content.
var allowedContentTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// Upload is a file held in memory until its draft is submitted or reset.
type Upload struct {
	ID          string
	OwnerID     string
	Name        string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// Handle returns the draft's reference to u.
func (u *Upload) Handle() draft.FileHandle {
	return draft.FileHandle{
		ID:          u.ID,
		Name:        u.Name,
		ContentType: u.ContentType,
		Size:        int64(len(u.Data)),
	}
}

// Registry holds uploads by id.
type Registry struct {
	mu       sync.Mutex
	uploads  map[string]*Upload
	maxBytes int
	now      func() time.Time
}

// NewRegistry creates a registry that rejects uploads over maxBytes.
func NewRegistry(maxBytes int) *Registry {
	return &Registry{
		uploads:  make(map[string]*Upload),
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

// URL returns the preview URL for id.
func URL(id string) string {
	return draft.LocalPreviewScheme + URLPrefix + id
}

// IDFromURL extracts the upload id from a preview URL.
func IDFromURL(url string) (string, bool) {
	rest, ok := strings.CutPrefix(url, draft.LocalPreviewScheme+URLPrefix)
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}

// Create stores data for owner and returns its handle and preview URL.
func (r *Registry) Create(owner, name string, data []byte) (draft.FileHandle, string, error) {
	if len(data) == 0 {
		return draft.FileHandle{}, "", ErrEmpty
	}
	if len(data) > r.maxBytes {
		return draft.FileHandle{}, "", fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, len(data), r.maxBytes)
	}
	contentType := http.DetectContentType(data)
	if !allowedContentTypes[contentType] {
		return draft.FileHandle{}, "", fmt.Errorf("%w: %s", ErrUnsupportedContent, contentType)
	}

	u := &Upload{
		ID:          uuid.NewString(),
		OwnerID:     owner,
		Name:        name,
		ContentType: contentType,
		Data:        append([]byte(nil), data...),
		CreatedAt:   r.now(),
	}

	r.mu.Lock()
	r.uploads[u.ID] = u
	metrics.PreviewsActive.Set(float64(len(r.uploads)))
	r.mu.Unlock()

	return u.Handle(), URL(u.ID), nil
}

// Open returns the upload id if it belongs to owner.
func (r *Registry) Open(owner, id string) (*Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.uploads[id]
	if !ok || u.OwnerID != owner {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return u, nil
}

// Revoke releases the upload behind a preview URL if owner holds it.
// Unknown URLs and uploads of other owners are ignored.
func (r *Registry) Revoke(owner, url string) {
	id, ok := IDFromURL(url)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.uploads[id]; ok && u.OwnerID == owner {
		delete(r.uploads, id)
		metrics.PreviewsActive.Set(float64(len(r.uploads)))
	}
}

// RevokeOwner releases every upload of owner and returns how many were held.
func (r *Registry) RevokeOwner(owner string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, u := range r.uploads {
		if u.OwnerID == owner {
			delete(r.uploads, id)
			n++
		}
	}
	metrics.PreviewsActive.Set(float64(len(r.uploads)))
	return n
}

// Len returns the number of held uploads.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.uploads)
}
