package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/acmefin/dashboard-core/internal/customer/entity"
)

// CustomerRepo provides read access to the customers table. Customers are
// owned elsewhere; this service never mutates them.
type CustomerRepo struct {
	db *sqlx.DB
}

func NewCustomerRepo(db *sqlx.DB) *CustomerRepo { return &CustomerRepo{db: db} }

// List returns all customers ordered by name, for form selects.
func (r *CustomerRepo) List(ctx context.Context) ([]entity.Customer, error) {
	const q = `SELECT id, name, email, image_url FROM customers ORDER BY name ASC`
	customers := []entity.Customer{}
	if err := r.db.SelectContext(ctx, &customers, q); err != nil {
		return nil, err
	}
	return customers, nil
}

// ListFiltered returns customers matching the search term together with
// their invoice aggregates.
func (r *CustomerRepo) ListFiltered(ctx context.Context, query string) ([]entity.TableRow, error) {
	const q = `SELECT customers.id, customers.name, customers.email, customers.image_url,
			COUNT(invoices.id) AS total_invoices,
			COALESCE(SUM(CASE WHEN invoices.status='pending' THEN invoices.amount ELSE 0 END), 0) AS total_pending,
			COALESCE(SUM(CASE WHEN invoices.status='paid' THEN invoices.amount ELSE 0 END), 0) AS total_paid
		FROM customers
		LEFT JOIN invoices ON invoices.customer_id = customers.id
		WHERE customers.name ILIKE $1 OR customers.email ILIKE $1
		GROUP BY customers.id, customers.name, customers.email, customers.image_url
		ORDER BY customers.name ASC`
	rows := []entity.TableRow{}
	if err := r.db.SelectContext(ctx, &rows, q, "%"+query+"%"); err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the total number of customers.
func (r *CustomerRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM customers`); err != nil {
		return 0, err
	}
	return n, nil
}
