// internal/models/faq.go
package models

// FAQRecord is one entry of the knowledge base searched by the FAQ handler.
// Record order in the source file is significant: search ties are broken by
// original position.
type FAQRecord struct {
	ID       int      `json:"id"`
	Category string   `json:"category"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Keywords []string `json:"keywords"`
}
