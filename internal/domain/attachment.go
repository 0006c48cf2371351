package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ParentKind identifies the family of entity a media attachment belongs to.
// It is a closed set; ParseParentKind is the only way to obtain one from
// client input.
type ParentKind string

const (
	ParentKindTraining       ParentKind = "TRAINING"
	ParentKindPersonalRecord ParentKind = "PERSONAL_RECORD"
)

// ParseParentKind converts a client-supplied entity type string into a
// ParentKind. Accepts the wire spellings "training" and "personal-record".
func ParseParentKind(s string) (ParentKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "training":
		return ParentKindTraining, nil
	case "personal-record", "personal_record":
		return ParentKindPersonalRecord, nil
	default:
		return "", fmt.Errorf("unknown entity type: %q", s)
	}
}

// PathSegment returns the lowercase segment used in storage keys.
func (k ParentKind) PathSegment() string {
	switch k {
	case ParentKindTraining:
		return "trainings"
	case ParentKindPersonalRecord:
		return "records"
	default:
		return "unknown"
	}
}

// MediaCategory is the verified media class of an attachment. It is always
// derived from the file signature, never from the client-declared type.
type MediaCategory string

const (
	MediaCategoryImage MediaCategory = "IMAGE"
	MediaCategoryVideo MediaCategory = "VIDEO"
)

// MediaAttachment is a ledger row describing one uploaded blob.
// The parent relation is polymorphic: ParentKind names the entity family and
// ParentID references a row in that family's table. A nil ParentID means the
// attachment was uploaded ahead of its parent and is not linked yet.
// No foreign key constraint on ParentID since it references multiple tables.
type MediaAttachment struct {
	BaseModel
	OwnerID    uuid.UUID     `gorm:"type:uuid;not null;index:idx_media_owner" json:"ownerId"`
	ParentKind ParentKind    `gorm:"type:varchar(30);not null;index:idx_media_parent,priority:1" json:"parentKind"`
	ParentID   *uuid.UUID    `gorm:"type:uuid;index:idx_media_parent,priority:2" json:"parentId"`
	FileName   string        `gorm:"type:varchar(255);not null" json:"fileName"`
	StorageKey string        `gorm:"type:varchar(512);not null;uniqueIndex" json:"-"`
	Category   MediaCategory `gorm:"type:varchar(10);not null" json:"category"`
	MimeType   string        `gorm:"type:varchar(100);not null" json:"mimeType"`
	SizeBytes  int64         `gorm:"not null" json:"sizeBytes"`
	ExpiresAt  *time.Time    `gorm:"type:timestamp;index:idx_media_expires_at" json:"expiresAt,omitempty"`
}

// TableName specifies the table name for MediaAttachment
func (MediaAttachment) TableName() string {
	return "media_attachments"
}

// Linked reports whether the attachment has been bound to its parent entity.
func (a *MediaAttachment) Linked() bool {
	return a.ParentID != nil
}
