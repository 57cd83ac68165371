// internal/support/entities/extract.go

// Package entities extracts structured identifiers from free-form text.
package entities

import (
	"regexp"
	"strings"

	"support-chat/internal/models"
)

const (
	invoiceDigits  = 4
	customerDigits = 3
)

// Candidate runs are matched greedily so that INV12345 is seen as one
// token and rejected, not truncated to INV1234.
var (
	invoicePattern  = regexp.MustCompile(`INV\d+`)
	customerPattern = regexp.MustCompile(`CUST\d+`)
)

// Extract scans text for invoice and customer identifiers. Matching is
// case-insensitive and purely syntactic: the first well-formed occurrence
// of each pattern wins, and near-misses like INV100 or CUST12345 are not
// recognized.
func Extract(text string) models.ExtractedEntities {
	upper := strings.ToUpper(text)

	return models.ExtractedEntities{
		InvoiceNo:  firstExact(invoicePattern, upper, len("INV")+invoiceDigits),
		CustomerID: firstExact(customerPattern, upper, len("CUST")+customerDigits),
	}
}

func firstExact(pattern *regexp.Regexp, text string, wantLen int) string {
	for _, match := range pattern.FindAllString(text, -1) {
		if len(match) == wantLen {
			return match
		}
	}
	return ""
}

// Merge fills absent fields from a previous turn's entities so a customer
// does not have to repeat identifiers they already gave.
func Merge(current, previous models.ExtractedEntities) models.ExtractedEntities {
	if current.InvoiceNo == "" {
		current.InvoiceNo = previous.InvoiceNo
	}
	if current.CustomerID == "" {
		current.CustomerID = previous.CustomerID
	}
	return current
}
