package customer

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/acmefin/dashboard-core/internal/customer/entity"
	customerrepo "github.com/acmefin/dashboard-core/internal/customer/repo"
	"github.com/acmefin/dashboard-core/internal/forms"
	"github.com/acmefin/dashboard-core/pkg/database"
)

// Repository is the read surface the service needs.
type Repository interface {
	List(ctx context.Context) ([]entity.Customer, error)
	ListFiltered(ctx context.Context, query string) ([]entity.TableRow, error)
}

// Service exposes customer reads. Customers are created and owned outside
// this system; there are no customer mutations here.
type Service struct {
	repo Repository
}

func NewService(db *sqlx.DB, r Repository) *Service {
	if r == nil {
		r = customerrepo.NewCustomerRepo(db)
	}
	return &Service{repo: r}
}

// List returns all customers for invoice form selects.
func (s *Service) List(ctx context.Context) ([]entity.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, database.QueryTimeout)
	defer cancel()
	customers, err := s.repo.List(ctx)
	if err != nil {
		return nil, &forms.PersistenceError{Op: "list customers", Err: err}
	}
	return customers, nil
}

// Table returns customers matching the search term with invoice aggregates.
func (s *Service) Table(ctx context.Context, query string) ([]entity.TableRow, error) {
	ctx, cancel := context.WithTimeout(ctx, database.QueryTimeout)
	defer cancel()
	rows, err := s.repo.ListFiltered(ctx, query)
	if err != nil {
		return nil, &forms.PersistenceError{Op: "list customers", Err: err}
	}
	return rows, nil
}
