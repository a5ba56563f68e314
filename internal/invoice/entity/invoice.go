package entity

import "time"

// Invoice statuses. These are the only two values the invoices table accepts.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

// Invoice is a row in the invoices table. Amount is stored in integer cents.
type Invoice struct {
	ID         string    `db:"id"`
	CustomerID string    `db:"customer_id"`
	Amount     int64     `db:"amount"`
	Status     string    `db:"status"`
	Date       time.Time `db:"date"`
}

// Row is an invoice joined with its customer, as listed on the invoices page.
type Row struct {
	ID           string    `db:"id"`
	CustomerID   string    `db:"customer_id"`
	Amount       int64     `db:"amount"`
	Status       string    `db:"status"`
	Date         time.Time `db:"date"`
	CustomerName string    `db:"name"`
	Email        string    `db:"email"`
	ImageURL     string    `db:"image_url"`
}
