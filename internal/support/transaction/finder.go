// internal/support/transaction/finder.go

// Package transaction looks up purchase records for refund verification.
package transaction

import (
	"context"
	"database/sql"
	"errors"

	apperrors "support-chat/internal/common/errors"
	"support-chat/internal/common/logger"
	"support-chat/internal/models"
)

// Finder answers "did this customer make this purchase" for the refund
// handler.
type Finder interface {
	Find(ctx context.Context, invoiceNo, customerID string) (*models.TransactionRecord, error)
}

// PostgresFinder implements Finder against the transactions table.
type PostgresFinder struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresFinder(db *sql.DB, log logger.Logger) *PostgresFinder {
	return &PostgresFinder{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "transaction-finder"}),
	}
}

// Find returns the record matching the exact invoice/customer pair, or
// (nil, nil) when no such transaction exists. A miss is a business
// outcome, not an error.
func (f *PostgresFinder) Find(ctx context.Context, invoiceNo, customerID string) (*models.TransactionRecord, error) {
	row := f.db.QueryRowContext(ctx, `
		SELECT invoice_no, stock_code, description, quantity, invoice_date, unit_price, customer_id
		FROM transactions
		WHERE invoice_no = $1 AND customer_id = $2`, invoiceNo, customerID)

	var rec models.TransactionRecord
	err := row.Scan(
		&rec.InvoiceNo,
		&rec.StockCode,
		&rec.Description,
		&rec.Quantity,
		&rec.InvoiceDate,
		&rec.UnitPrice,
		&rec.CustomerID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		f.logger.Error("transaction lookup failed", map[string]interface{}{
			"invoiceNo":  invoiceNo,
			"customerId": customerID,
			"error":      err.Error(),
		})
		return nil, apperrors.NewQueryExecutionFailedError("find_transaction", err)
	}

	return &rec, nil
}
