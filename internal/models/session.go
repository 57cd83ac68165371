// internal/models/session.go
package models

// SessionContext is the small state blob carried between turns of one
// conversation. It is read at the start of a turn and overwritten at the end;
// writes are last-write-wins with no merging.
type SessionContext struct {
	CustomerInfo   map[string]string      `json:"customer_info"`
	CurrentContext map[string]interface{} `json:"current_context"`
	AwaitingInfo   bool                   `json:"awaiting_info"`
	RequiredFields []string               `json:"required_fields"`
}

// NewSessionContext returns an empty context, as created on the first turn of
// a session.
func NewSessionContext() *SessionContext {
	return &SessionContext{
		CustomerInfo:   map[string]string{},
		CurrentContext: map[string]interface{}{},
		RequiredFields: []string{},
	}
}

// ContextString reads a string value out of CurrentContext, returning ""
// when the key is absent or not a string.
func (s *SessionContext) ContextString(key string) string {
	if s == nil || s.CurrentContext == nil {
		return ""
	}
	if v, ok := s.CurrentContext[key].(string); ok {
		return v
	}
	return ""
}
