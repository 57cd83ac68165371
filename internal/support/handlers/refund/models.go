// internal/support/handlers/refund/models.go
package refund

// State names the step of the refund flow a turn landed in. Persisted in
// result metadata so multi-turn progress is visible in the audit trail.
type State string

const (
	StateNeedIdentifiers  State = "NEED_IDENTIFIERS"
	StateNeedVerification State = "NEED_VERIFICATION"
	StateNeedReason       State = "NEED_REASON"
	StateComplete         State = "COMPLETE"
	StateNotFound         State = "NOT_FOUND"
)

// Context keys the handler reads and writes on the session.
const (
	ctxKeyExtractedInfo = "extracted_info"
	ctxKeyRefundReason  = "refund_reason"
)

// Reason length bounds.
const (
	minReasonLength = 10
	maxReasonLength = 500
)
