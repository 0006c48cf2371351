package service

import (
	"context"

	"github.com/google/uuid"

	"fittrack-api/internal/repository"
)

// QuotaAccountant computes a user's aggregate stored bytes and enforces the
// hard per-user cap. Usage is always summed from live ledger rows.
type QuotaAccountant struct {
	attachmentRepo repository.AttachmentRepository
	userStorageCap int64
}

// NewQuotaAccountant creates a QuotaAccountant with the given cap in bytes.
func NewQuotaAccountant(attachmentRepo repository.AttachmentRepository, userStorageCap int64) *QuotaAccountant {
	return &QuotaAccountant{
		attachmentRepo: attachmentRepo,
		userStorageCap: userStorageCap,
	}
}

// CurrentUsage returns the owner's total stored bytes.
func (q *QuotaAccountant) CurrentUsage(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	return q.attachmentRepo.SumSizeByOwner(ctx, ownerID)
}

// WouldExceed reports whether storing additionalBytes more would push the
// owner past the cap.
func (q *QuotaAccountant) WouldExceed(ctx context.Context, ownerID uuid.UUID, additionalBytes int64) (bool, error) {
	used, err := q.CurrentUsage(ctx, ownerID)
	if err != nil {
		return false, err
	}
	return used+additionalBytes > q.userStorageCap, nil
}

// Cap returns the configured per-user storage cap in bytes.
func (q *QuotaAccountant) Cap() int64 {
	return q.userStorageCap
}
