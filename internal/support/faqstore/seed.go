// internal/support/faqstore/seed.go
package faqstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"support-chat/internal/models"
)

// seedProducts is the demo catalogue used when generating transactions.
var seedProducts = []struct {
	StockCode   string
	Description string
	UnitPrice   float64
}{
	{"PRD001", "Wireless Bluetooth Headphones", 79.99},
	{"PRD002", "Smartphone Case", 24.99},
	{"PRD003", "USB-C Cable", 12.99},
	{"PRD004", "Laptop Stand", 45.99},
	{"PRD005", "Wireless Mouse", 29.99},
	{"PRD006", "Power Bank", 39.99},
	{"PRD007", "Screen Protector", 9.99},
	{"PRD008", "Gaming Keyboard", 89.99},
	{"PRD009", "Webcam HD", 59.99},
	{"PRD010", "Bluetooth Speaker", 49.99},
}

// DefaultRecords returns the seed knowledge base content.
func DefaultRecords() []models.FAQRecord {
	return []models.FAQRecord{
		{
			ID: 1, Category: "return_policy",
			Question: "What is the return policy?",
			Answer:   "Items can be returned within 30 days of purchase with original receipt. Refunds will be processed to the original payment method within 5-7 business days.",
			Keywords: []string{"return", "policy", "refund", "30 days"},
		},
		{
			ID: 2, Category: "shipping",
			Question: "Do you ship internationally?",
			Answer:   "Yes, we ship to over 50 countries worldwide. International shipping typically takes 7-14 business days and costs vary by destination. Please note that customs fees may apply.",
			Keywords: []string{"international", "shipping", "worldwide", "customs"},
		},
		{
			ID: 3, Category: "payment",
			Question: "What payment methods do you accept?",
			Answer:   "We accept Visa, Mastercard, American Express, PayPal, and Apple Pay. All payments are processed securely through our encrypted payment system.",
			Keywords: []string{"payment", "visa", "mastercard", "paypal", "apple pay"},
		},
		{
			ID: 4, Category: "warranty",
			Question: "What warranty do you provide?",
			Answer:   "All products come with a 1-year manufacturer warranty. Extended warranty options are available for purchase. Warranty covers manufacturing defects but not physical damage.",
			Keywords: []string{"warranty", "1 year", "manufacturer", "defects"},
		},
		{
			ID: 5, Category: "product_specs",
			Question: "What are the dimensions of the Wireless Bluetooth Headphones?",
			Answer:   "The Wireless Bluetooth Headphones (PRD001) measure 7.5 x 6.5 x 3 inches and weigh 0.8 lbs. They feature 40mm drivers and 20-hour battery life.",
			Keywords: []string{"bluetooth", "headphones", "dimensions", "PRD001", "specs"},
		},
		{
			ID: 6, Category: "product_specs",
			Question: "Is the Smartphone Case compatible with all phone models?",
			Answer:   "The Smartphone Case (PRD002) is available in multiple sizes for iPhone and Samsung models. Please check the compatibility chart before ordering.",
			Keywords: []string{"smartphone", "case", "PRD002", "compatibility", "iphone", "samsung"},
		},
		{
			ID: 7, Category: "technical",
			Question: "How do I connect the Wireless Mouse?",
			Answer:   "The Wireless Mouse (PRD005) connects via USB receiver. Insert the receiver into your computer's USB port, turn on the mouse, and it will connect automatically.",
			Keywords: []string{"wireless", "mouse", "PRD005", "connect", "USB"},
		},
		{
			ID: 8, Category: "technical",
			Question: "How long does the Power Bank take to charge?",
			Answer:   "The Power Bank (PRD006) takes 4-6 hours to fully charge using the included USB-C cable. LED indicators show charging progress.",
			Keywords: []string{"power", "bank", "PRD006", "charge", "USB-C", "LED"},
		},
		{
			ID: 9, Category: "account",
			Question: "How do I track my order?",
			Answer:   "You can track your order using the tracking number sent to your email. Visit our website and enter your order number and email address in the tracking section.",
			Keywords: []string{"track", "order", "tracking number", "email"},
		},
		{
			ID: 10, Category: "account",
			Question: "Can I change my shipping address after ordering?",
			Answer:   "Shipping address can only be changed within 2 hours of placing the order. Contact customer support immediately if you need to make changes.",
			Keywords: []string{"shipping", "address", "change", "2 hours", "contact support"},
		},
	}
}

// WriteKnowledgeBase writes records to path as a knowledge base document,
// creating parent directories as needed.
func WriteKnowledgeBase(path string, records []models.FAQRecord) error {
	payload, err := json.MarshalIndent(knowledgeBase{Records: records}, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, payload, 0o644)
}

// SeedTransactions creates the transactions table and fills it with count
// demo purchases. Existing rows are left alone so seeding is idempotent for
// a fixed invoice range. The generator is deterministic for a given seed.
func SeedTransactions(ctx context.Context, db *sql.DB, count int, seed int64) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS transactions (
			invoice_no TEXT NOT NULL,
			stock_code TEXT NOT NULL,
			description TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			invoice_date TEXT NOT NULL,
			unit_price DOUBLE PRECISION NOT NULL,
			customer_id TEXT NOT NULL,
			PRIMARY KEY (invoice_no, customer_id)
		)`); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(seed))
	baseDate := time.Now().AddDate(0, 0, -90)

	for i := 0; i < count; i++ {
		invoiceNo := fmt.Sprintf("INV%d", 1000+i)
		customerID := fmt.Sprintf("CUST%d", 100+rng.Intn(900))
		product := seedProducts[rng.Intn(len(seedProducts))]
		quantity := 1 + rng.Intn(3)
		invoiceDate := baseDate.AddDate(0, 0, rng.Intn(91)).Format("2006-01-02")

		if _, err := db.ExecContext(ctx, `
			INSERT INTO transactions
				(invoice_no, stock_code, description, quantity, invoice_date, unit_price, customer_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (invoice_no, customer_id) DO NOTHING`,
			invoiceNo, product.StockCode, product.Description, quantity,
			invoiceDate, product.UnitPrice, customerID); err != nil {
			return err
		}
	}
	return nil
}
