// internal/models/transaction.go
package models

// TransactionRecord is a read-only purchase record, looked up by the exact
// (invoice_no, customer_id) pair during refund verification.
type TransactionRecord struct {
	InvoiceNo   string  `json:"invoiceNo"`
	StockCode   string  `json:"stockCode"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	InvoiceDate string  `json:"invoiceDate"`
	UnitPrice   float64 `json:"unitPrice"`
	CustomerID  string  `json:"customerId"`
}

// RefundData is the record emitted when a refund request completes. It is
// persisted by the conversation log sink, not by the handler itself.
type RefundData struct {
	CustomerID         string  `json:"customer_id"`
	InvoiceNo          string  `json:"invoice_no"`
	StockCode          string  `json:"stock_code"`
	ProductDescription string  `json:"product_description"`
	Quantity           int     `json:"quantity"`
	UnitPrice          float64 `json:"unit_price"`
	RefundReason       string  `json:"refund_reason"`
}
