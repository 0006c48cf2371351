package domain

import (
	"time"

	"github.com/google/uuid"
)

// Training represents a single training session logged by a user
type Training struct {
	BaseModel
	OwnerID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_trainings_owner" json:"ownerId"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Notes       string     `gorm:"type:text" json:"notes"`
	PerformedAt time.Time  `gorm:"type:timestamp;not null;index:idx_trainings_performed_at" json:"performedAt"`
	DurationMin int        `gorm:"not null;default:0" json:"durationMin"`

	// Polymorphic relation, loaded by the repository rather than gorm
	Attachments []MediaAttachment `gorm:"-" json:"attachments,omitempty"`
}

// TableName specifies the table name for Training
func (Training) TableName() string {
	return "trainings"
}
