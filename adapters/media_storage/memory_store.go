package media_storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/media-gateway/internal/domain/media"
)

var ErrInvalidDataURI = errors.New("invalid data uri")

// MemoryStore keeps images in process memory. It backs local development when no
// Cloudinary account is configured and follows Cloudinary's public_id rules.
type MemoryStore struct {
	mu        sync.RWMutex
	resources map[string]media.ImageResource
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		resources: make(map[string]media.ImageResource),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Upload(ctx context.Context, dataURI string, opts media.UploadOptions) (*media.UploadedImage, error) {
	mimeType, data, err := parseDataURI(dataURI)
	if err != nil {
		return nil, err
	}
	if opts.PublicID == "" {
		opts.PublicID = uuid.NewString()
	}

	publicID := opts.PublicID
	if opts.Folder != "" {
		publicID = path.Join(opts.Folder, opts.PublicID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, overwritten := s.resources[publicID]
	now := s.now()
	res := media.ImageResource{
		AssetID:      uuid.NewString(),
		PublicID:     publicID,
		Format:       formatFromMIME(mimeType),
		Version:      int(now.Unix()),
		ResourceType: "image",
		Type:         "upload",
		CreatedAt:    now,
		Bytes:        len(data),
		Width:        opts.Width,
		URL:          "memory://" + publicID,
		SecureURL:    "memory://" + publicID,
	}
	if overwritten {
		res.AssetID = prev.AssetID
		res.CreatedAt = prev.CreatedAt
		if res.Version <= prev.Version {
			res.Version = prev.Version + 1
		}
	}
	s.resources[publicID] = res

	return &media.UploadedImage{
		PublicID:    publicID,
		SecureURL:   res.SecureURL,
		Version:     res.Version,
		Overwritten: overwritten,
	}, nil
}

func (s *MemoryStore) ListResources(ctx context.Context, query media.ResourceQuery) (*media.ResourceList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]media.ImageResource, 0, len(s.resources))
	for id, res := range s.resources {
		if query.Type != "" && res.Type != query.Type {
			continue
		}
		if !strings.HasPrefix(id, query.Prefix) {
			continue
		}
		if query.NextCursor != "" && id < query.NextCursor {
			continue
		}
		matched = append(matched, res)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].PublicID < matched[j].PublicID })

	list := &media.ResourceList{Resources: matched}
	if query.MaxResults > 0 && len(matched) > query.MaxResults {
		list.Resources = matched[:query.MaxResults]
		list.NextCursor = matched[query.MaxResults].PublicID
	}
	return list, nil
}

// Destroy mirrors Cloudinary: removing an unknown id reports "not found" without failing.
func (s *MemoryStore) Destroy(ctx context.Context, publicID string) error {
	if publicID == "" {
		return errors.New("Missing required parameter - public_id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.resources, publicID)
	return nil
}

func parseDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing data: scheme", ErrInvalidDataURI)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload", ErrInvalidDataURI)
	}
	mimeType, encoding, ok := strings.Cut(meta, ";")
	if !ok || encoding != "base64" {
		return "", nil, fmt.Errorf("%w: only base64 payloads are supported", ErrInvalidDataURI)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return mimeType, data, nil
}

func formatFromMIME(mimeType string) string {
	_, sub, ok := strings.Cut(mimeType, "/")
	if !ok {
		return ""
	}
	sub, _, _ = strings.Cut(sub, "+")
	if sub == "jpeg" {
		return "jpg"
	}
	return sub
}
