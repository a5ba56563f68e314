package entity

// Customer is a row in the customers table. Customers are seeded out of
// band and read-only from this service's perspective.
type Customer struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Email    string `db:"email"`
	ImageURL string `db:"image_url"`
}

// TableRow is a customer with invoice aggregates, as listed on the
// customers page.
type TableRow struct {
	ID            string `db:"id"`
	Name          string `db:"name"`
	Email         string `db:"email"`
	ImageURL      string `db:"image_url"`
	TotalInvoices int    `db:"total_invoices"`
	TotalPending  int64  `db:"total_pending"`
	TotalPaid     int64  `db:"total_paid"`
}
