package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/acmefin/dashboard-core/internal/invoice/entity"
)

// InvoiceRepo provides data access for the invoices table using sqlx.
// Every method issues exactly one parameterized statement.
type InvoiceRepo struct {
	db *sqlx.DB
}

func NewInvoiceRepo(db *sqlx.DB) *InvoiceRepo { return &InvoiceRepo{db: db} }

// Create inserts a new invoice row.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	const q = `INSERT INTO invoices (id, customer_id, amount, status, date)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, q, inv.ID, inv.CustomerID, inv.Amount, inv.Status, inv.Date)
	return err
}

// Update rewrites the mutable fields of an invoice by id. A nonexistent id
// is a zero-row update, not an error.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	const q = `UPDATE invoices SET customer_id=$2, amount=$3, status=$4 WHERE id=$1`
	_, err := r.db.ExecContext(ctx, q, inv.ID, inv.CustomerID, inv.Amount, inv.Status)
	return err
}

// Delete removes an invoice by id. Deleting an absent id is a no-op.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM invoices WHERE id=$1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// GetByID fetches a single invoice or sql.ErrNoRows.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	const q = `SELECT id, customer_id, amount, status, date FROM invoices WHERE id=$1`
	var inv entity.Invoice
	if err := r.db.GetContext(ctx, &inv, q, id); err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListFiltered returns a page of invoices joined with their customers,
// matching the search term against customer name, email, amount, date,
// and status. Newest first.
func (r *InvoiceRepo) ListFiltered(ctx context.Context, query string, limit, offset int) ([]entity.Row, error) {
	const q = `SELECT invoices.id, invoices.customer_id, invoices.amount, invoices.status, invoices.date,
			customers.name, customers.email, customers.image_url
		FROM invoices
		JOIN customers ON customers.id = invoices.customer_id
		WHERE customers.name ILIKE $1
			OR customers.email ILIKE $1
			OR invoices.amount::text ILIKE $1
			OR invoices.date::text ILIKE $1
			OR invoices.status ILIKE $1
		ORDER BY invoices.date DESC, invoices.id DESC
		LIMIT $2 OFFSET $3`
	rows := []entity.Row{}
	if err := r.db.SelectContext(ctx, &rows, q, "%"+query+"%", limit, offset); err != nil {
		return nil, err
	}
	return rows, nil
}

// CountFiltered returns how many invoices match the search term.
func (r *InvoiceRepo) CountFiltered(ctx context.Context, query string) (int, error) {
	const q = `SELECT COUNT(*)
		FROM invoices
		JOIN customers ON customers.id = invoices.customer_id
		WHERE customers.name ILIKE $1
			OR customers.email ILIKE $1
			OR invoices.amount::text ILIKE $1
			OR invoices.date::text ILIKE $1
			OR invoices.status ILIKE $1`
	var n int
	if err := r.db.GetContext(ctx, &n, q, "%"+query+"%"); err != nil {
		return 0, err
	}
	return n, nil
}

// Latest returns the most recent invoices with customer details.
func (r *InvoiceRepo) Latest(ctx context.Context, limit int) ([]entity.Row, error) {
	const q = `SELECT invoices.id, invoices.customer_id, invoices.amount, invoices.status, invoices.date,
			customers.name, customers.email, customers.image_url
		FROM invoices
		JOIN customers ON customers.id = invoices.customer_id
		ORDER BY invoices.date DESC, invoices.id DESC
		LIMIT $1`
	rows := []entity.Row{}
	if err := r.db.SelectContext(ctx, &rows, q, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the total number of invoices.
func (r *InvoiceRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM invoices`); err != nil {
		return 0, err
	}
	return n, nil
}

// TotalsByStatus returns the pending and paid amount sums in cents.
func (r *InvoiceRepo) TotalsByStatus(ctx context.Context) (pending, paid int64, err error) {
	const q = `SELECT
		COALESCE(SUM(CASE WHEN status='pending' THEN amount ELSE 0 END), 0) AS pending,
		COALESCE(SUM(CASE WHEN status='paid' THEN amount ELSE 0 END), 0) AS paid
		FROM invoices`
	var totals struct {
		Pending int64 `db:"pending"`
		Paid    int64 `db:"paid"`
	}
	if err := r.db.GetContext(ctx, &totals, q); err != nil {
		return 0, 0, err
	}
	return totals.Pending, totals.Paid, nil
}
