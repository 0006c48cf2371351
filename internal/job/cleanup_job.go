package job

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fittrack-api/internal/metrics"
	"fittrack-api/internal/repository"
	"fittrack-api/internal/storage"
)

// CleanupJob reclaims attachments that were uploaded but never linked to a
// parent entity before their grace period expired. Blobs are deleted before
// rows so a failed blob delete keeps its row and gets retried on the next run.
type CleanupJob struct {
	attachmentRepo repository.AttachmentRepository
	store          storage.Storage
	metrics        *metrics.Metrics
	logger         *zap.Logger
}

// NewCleanupJob creates a new CleanupJob instance
func NewCleanupJob(
	attachmentRepo repository.AttachmentRepository,
	store storage.Storage,
	m *metrics.Metrics,
	logger *zap.Logger,
) *CleanupJob {
	return &CleanupJob{
		attachmentRepo: attachmentRepo,
		store:          store,
		metrics:        m,
		logger:         logger,
	}
}

// Run executes one cleanup pass. A failure on one attachment never stops
// the others.
func (j *CleanupJob) Run() {
	ctx := context.Background()

	j.logger.Info("Starting cleanup job for expired unlinked attachments")

	expired, err := j.attachmentRepo.FindExpiredUnlinked(ctx)
	if err != nil {
		j.logger.Error("Failed to find expired unlinked attachments",
			zap.Error(err),
		)
		return
	}

	if len(expired) == 0 {
		j.logger.Info("No expired unlinked attachments found")
		return
	}

	j.logger.Info("Found expired unlinked attachments",
		zap.Int("count", len(expired)),
	)

	var reclaimedIDs []uuid.UUID
	failCount := 0

	for _, attachment := range expired {
		if err := j.store.Delete(ctx, attachment.StorageKey); err != nil {
			j.logger.Error("Failed to delete expired blob",
				zap.String("attachment_id", attachment.ID.String()),
				zap.String("storage_key", attachment.StorageKey),
				zap.Error(err),
			)
			j.metrics.IncrementStorageOpError("delete")
			failCount++
			continue
		}

		reclaimedIDs = append(reclaimedIDs, attachment.ID)

		j.logger.Debug("Deleted expired blob",
			zap.String("attachment_id", attachment.ID.String()),
			zap.String("storage_key", attachment.StorageKey),
		)
	}

	if len(reclaimedIDs) > 0 {
		if err := j.attachmentRepo.DeleteBatch(ctx, reclaimedIDs); err != nil {
			j.logger.Error("Failed to delete attachment rows",
				zap.Int("count", len(reclaimedIDs)),
				zap.Error(err),
			)
			return
		}
		j.metrics.AddCleanupReclaimed(len(reclaimedIDs))
	}

	j.logger.Info("Cleanup job completed",
		zap.Int("reclaimed", len(reclaimedIDs)),
		zap.Int("failed", failCount),
	)
}
