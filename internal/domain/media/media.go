package media

import (
	"time"

	"github.com/google/uuid"
)

type ResultKind string

const (
	KindSuccess ResultKind = "success"
	KindError   ResultKind = "error"
)

// OperationResult is the uniform outcome of create, update and delete.
type OperationResult struct {
	Kind    ResultKind `json:"type"`
	Message string     `json:"message"`
}

func Success(msg string) OperationResult {
	return OperationResult{Kind: KindSuccess, Message: msg}
}

func Failure(msg string) OperationResult {
	return OperationResult{Kind: KindError, Message: msg}
}

func (r OperationResult) OK() bool {
	return r.Kind == KindSuccess
}

type UploadOptions struct {
	Invalidate  bool   `json:"invalidate"`
	Folder      string `json:"folder,omitempty"`
	PublicID    string `json:"public_id,omitempty"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
	Width       int    `json:"width,omitempty"`
	Crop        string `json:"crop,omitempty"`
	Gravity     string `json:"gravity,omitempty"`
}

type UploadedImage struct {
	PublicID    string `json:"public_id"`
	SecureURL   string `json:"secure_url"`
	Version     int    `json:"version"`
	Overwritten bool   `json:"overwritten"`
}

// ImageResource is passed through from the remote listing untouched.
type ImageResource struct {
	AssetID      string    `json:"asset_id"`
	PublicID     string    `json:"public_id"`
	Format       string    `json:"format"`
	Version      int       `json:"version"`
	ResourceType string    `json:"resource_type"`
	Type         string    `json:"type"`
	CreatedAt    time.Time `json:"created_at"`
	Bytes        int       `json:"bytes"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	URL          string    `json:"url"`
	SecureURL    string    `json:"secure_url"`
}

type ResourceQuery struct {
	Type       string
	Prefix     string
	MaxResults int
	NextCursor string
}

type ResourceList struct {
	Resources  []ImageResource `json:"resources"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

type EventType string

const (
	EventUploaded EventType = "media.uploaded"
	EventUpdated  EventType = "media.updated"
	EventDeleted  EventType = "media.deleted"
)

type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       EventType `json:"event_type"`
	PublicID   string    `json:"public_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewEvent(t EventType, publicID string) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		PublicID:   publicID,
		OccurredAt: time.Now().UTC(),
	}
}
