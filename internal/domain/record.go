package domain

import (
	"time"

	"github.com/google/uuid"
)

// PersonalRecord represents a personal best for an exercise
type PersonalRecord struct {
	BaseModel
	OwnerID    uuid.UUID `gorm:"type:uuid;not null;index:idx_records_owner" json:"ownerId"`
	Exercise   string    `gorm:"type:varchar(255);not null" json:"exercise"`
	Value      float64   `gorm:"not null" json:"value"`
	Unit       string    `gorm:"type:varchar(30);not null" json:"unit"`
	AchievedAt time.Time `gorm:"type:timestamp;not null" json:"achievedAt"`

	Attachments []MediaAttachment `gorm:"-" json:"attachments,omitempty"`
}

// TableName specifies the table name for PersonalRecord
func (PersonalRecord) TableName() string {
	return "personal_records"
}
