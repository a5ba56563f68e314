package dashboard

import (
	"context"

	"github.com/jmoiron/sqlx"

	customerrepo "github.com/acmefin/dashboard-core/internal/customer/repo"
	"github.com/acmefin/dashboard-core/internal/forms"
	invoicerepo "github.com/acmefin/dashboard-core/internal/invoice/repo"
	"github.com/acmefin/dashboard-core/pkg/database"
)

// Cards are the headline figures on the dashboard overview page.
type Cards struct {
	InvoiceCount  int
	CustomerCount int
	PendingCents  int64
	PaidCents     int64
}

// Service aggregates invoice and customer figures for the overview page.
type Service struct {
	invoices  *invoicerepo.InvoiceRepo
	customers *customerrepo.CustomerRepo
}

func NewService(db *sqlx.DB) *Service {
	return &Service{
		invoices:  invoicerepo.NewInvoiceRepo(db),
		customers: customerrepo.NewCustomerRepo(db),
	}
}

// Cards fetches the headline figures.
func (s *Service) Cards(ctx context.Context) (*Cards, error) {
	ctx, cancel := context.WithTimeout(ctx, database.QueryTimeout)
	defer cancel()
	invoiceCount, err := s.invoices.Count(ctx)
	if err != nil {
		return nil, &forms.PersistenceError{Op: "count invoices", Err: err}
	}
	customerCount, err := s.customers.Count(ctx)
	if err != nil {
		return nil, &forms.PersistenceError{Op: "count customers", Err: err}
	}
	pending, paid, err := s.invoices.TotalsByStatus(ctx)
	if err != nil {
		return nil, &forms.PersistenceError{Op: "sum invoices", Err: err}
	}
	return &Cards{
		InvoiceCount:  invoiceCount,
		CustomerCount: customerCount,
		PendingCents:  pending,
		PaidCents:     paid,
	}, nil
}
