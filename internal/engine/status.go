package engine

// Status is the outcome code of an operation.
type Status string

const (
	StatusSuccess          Status = "SUCCESS"
	StatusSectionNotFound  Status = "SECTION_NOT_FOUND"
	StatusAmbiguous        Status = "ANNOTATION_AMBIGUOUS"
	StatusOrphanedWarning  Status = "ANNOTATION_ORPHANED_WARNING"
	StatusBatchFailure     Status = "BATCH_FAILURE"
	StatusNotFound         Status = "ANNOTATION_NOT_FOUND"
	StatusDecisionRequired Status = "DECISION_REQUIRED"

	// StatusRelocated and StatusOverlap only appear as warning codes
	StatusRelocated Status = "INSERTION_RELOCATED"
	StatusOverlap   Status = "ANNOTATION_OVERLAP"

	// statusError labels operations that failed before producing a result
	statusError Status = "ERROR"
)

// Applied reports whether a status can come with a submitted batch.
func (s Status) Applied() bool {
	switch s {
	case StatusSuccess, StatusSectionNotFound, StatusOrphanedWarning:
		return true
	}
	return false
}

// Warning is a non-fatal condition met during an operation.
type Warning struct {
	Code         Status `json:"code"`
	AnnotationID string `json:"annotation_id,omitempty"`
	Message      string `json:"message"`
}
