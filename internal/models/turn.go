// internal/models/turn.go
package models

// ExtractedEntities holds the structured tokens pulled out of a message.
// Empty string means absent; extraction never fails.
type ExtractedEntities struct {
	InvoiceNo  string `json:"invoice_no,omitempty"`
	CustomerID string `json:"customer_id,omitempty"`
}

// Complete reports whether both identifiers are present.
func (e ExtractedEntities) Complete() bool {
	return e.InvoiceNo != "" && e.CustomerID != ""
}

// Turn is the input handed to a specialist handler after classification and
// routing.
type Turn struct {
	SessionID  string
	Text       string
	Entities   ExtractedEntities
	Category   Category
	Confidence float64
	Context    *SessionContext
}

// HandlerResult is the structured outcome of one handled turn.
type HandlerResult struct {
	Response      string                 `json:"response"`
	Resolved      bool                   `json:"resolved"`
	Category      Category               `json:"category"`
	Confidence    float64                `json:"confidence"`
	NeedsFollowup bool                   `json:"needs_followup"`
	NeedsMoreInfo bool                   `json:"needs_more_info"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`

	// RefundData is set only when a refund request reached completion; the
	// engine hands it to the conversation log sink.
	RefundData *RefundData `json:"refund_data,omitempty"`

	// Context is the state to carry into the next turn. Nil means the
	// handler made no replacement and the turn's context (including any
	// in-place mutations) is persisted as-is.
	Context *SessionContext `json:"-"`
}
