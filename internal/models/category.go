// internal/models/category.go
package models

// Category is the intent bucket assigned to a customer message.
type Category string

const (
	CategoryRefund      Category = "refund"
	CategoryFAQ         Category = "faq"
	CategoryPartnership Category = "partnership"
	CategoryOther       Category = "other"
)

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryRefund, CategoryFAQ, CategoryPartnership, CategoryOther:
		return true
	}
	return false
}

// ParseCategory maps a raw string to a Category, or CategoryOther with
// ok=false when the value is not recognized.
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	if c.Valid() {
		return c, true
	}
	return CategoryOther, false
}

// RouteTarget is the specialist handler selected to own a turn. Partnership
// and other never appear here; both resolve to TargetTriage.
type RouteTarget string

const (
	TargetRefund RouteTarget = "refund"
	TargetFAQ    RouteTarget = "faq"
	TargetTriage RouteTarget = "triage_fallback"
)
