package metrics

import "fittrack-api/internal/domain"

// IncrementUploadAccepted increments the accepted upload counter
func (m *Metrics) IncrementUploadAccepted(category domain.MediaCategory, sizeBytes int64) {
	m.safeExecute("IncrementUploadAccepted", func() {
		m.UploadsAcceptedTotal.WithLabelValues(string(category)).Inc()
		m.UploadBytesTotal.Add(float64(sizeBytes))
	})
}

// IncrementUploadRejected increments the rejected upload counter by kind
func (m *Metrics) IncrementUploadRejected(kind string) {
	m.safeExecute("IncrementUploadRejected", func() {
		m.UploadsRejectedTotal.WithLabelValues(kind).Inc()
	})
}

// IncrementStorageOpError increments the storage failure counter for op
func (m *Metrics) IncrementStorageOpError(op string) {
	m.safeExecute("IncrementStorageOpError", func() {
		m.StorageOpErrors.WithLabelValues(op).Inc()
	})
}

// AddCleanupReclaimed adds to the cleanup reclaim counter
func (m *Metrics) AddCleanupReclaimed(n int) {
	m.safeExecute("AddCleanupReclaimed", func() {
		m.CleanupReclaimedTotal.Add(float64(n))
	})
}
