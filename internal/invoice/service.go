package invoice

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/acmefin/dashboard-core/internal/forms"
	"github.com/acmefin/dashboard-core/internal/invoice/entity"
	invoicerepo "github.com/acmefin/dashboard-core/internal/invoice/repo"
	"github.com/acmefin/dashboard-core/internal/viewcache"
	"github.com/acmefin/dashboard-core/pkg/database"
	"github.com/acmefin/dashboard-core/pkg/utilities"
)

// PageSize is how many invoices the list view shows per page.
const PageSize = 6

// maxAmount caps the dollar amount a form may carry. Anything above it is
// treated as malformed input; the cents conversion stays far inside int64.
const maxAmount = 1e15

// ErrNotFound is returned when an invoice id resolves to no row on a read.
var ErrNotFound = errors.New("invoice not found")

// Repository is the storage surface the service needs.
type Repository interface {
	Create(ctx context.Context, inv *entity.Invoice) error
	Update(ctx context.Context, inv *entity.Invoice) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	ListFiltered(ctx context.Context, query string, limit, offset int) ([]entity.Row, error)
	CountFiltered(ctx context.Context, query string) (int, error)
	Latest(ctx context.Context, limit int) ([]entity.Row, error)
}

// Service validates raw form input for invoice mutations and issues exactly
// one statement per accepted operation. Validation failures never touch
// storage; storage failures always propagate as *forms.PersistenceError.
type Service struct {
	repo  Repository
	views viewcache.Invalidator
	now   func() time.Time
}

func NewService(db *sqlx.DB, r Repository, views viewcache.Invalidator) *Service {
	if r == nil {
		r = invoicerepo.NewInvoiceRepo(db)
	}
	return &Service{repo: r, views: views, now: time.Now}
}

// FormInput is the raw string mapping a browser form submission produces.
type FormInput struct {
	CustomerID string
	Amount     string
	Status     string
}

// validate checks the shared create/edit fields and converts the decimal
// amount string to integer cents.
func validate(in FormInput) (int64, *forms.ValidationError) {
	errs := forms.FieldErrors{}
	if strings.TrimSpace(in.CustomerID) == "" {
		errs.Add("customerId", "Please select a customer.")
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(in.Amount), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount > maxAmount {
		errs.Add("amount", "Please enter a valid amount.")
	} else if amount <= 0 {
		errs.Add("amount", "Please enter an amount greater than $0.")
	}
	if in.Status != entity.StatusPending && in.Status != entity.StatusPaid {
		errs.Add("status", "Please select an invoice status.")
	}
	if len(errs) > 0 {
		return 0, &forms.ValidationError{Fields: errs}
	}
	return int64(math.Round(amount * 100)), nil
}

// Create validates the input and inserts a new invoice stamped with the
// current date. On success the cached invoice views are invalidated.
func (s *Service) Create(ctx context.Context, in FormInput) (*entity.Invoice, error) {
	cents, verr := validate(in)
	if verr != nil {
		return nil, verr
	}
	inv := &entity.Invoice{
		ID:         utilities.NewKSUID(),
		CustomerID: strings.TrimSpace(in.CustomerID),
		Amount:     cents,
		Status:     in.Status,
		Date:       s.now().UTC().Truncate(24 * time.Hour),
	}
	ctx, cancel := context.WithTimeout(ctx, database.QueryTimeout)
	defer cancel()
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, &forms.PersistenceError{Op: "create invoice", Err: err}
	}
	s.invalidateViews()
	return inv, nil
}

// Edit validates the input and updates the invoice by id. Editing a
// nonexistent id is a zero-row update, treated as success.
func (s *Service) Edit(ctx context.Context, id string, in FormInput) error {
	cents, verr := validate(in)
	if strings.TrimSpace(id) == "" {
		if verr == nil {
			verr = &forms.ValidationError{Fields: forms.FieldErrors{}}
		}
		verr.Fields.Add("id", "Missing invoice id.")
	}
	if verr != nil {
		return verr
	}
	inv := &entity.Invoice{
		ID:         strings.TrimSpace(id),
		CustomerID: strings.TrimSpace(in.CustomerID),
		Amount:     cents,
		Status:     in.Status,
	}
	ctx, cancel := context.WithTimeout(ctx, database.QueryTimeout)
	defer cancel()
	if err := s.repo.Update(ctx, inv); err != nil {
		return &forms.PersistenceError{Op: "update invoice", Err: err}
	}
	s.invalidateViews()
	return nil
}

// Delete removes the invoice by id. Idempotent: deleting an absent id
// succeeds the same way deleting a present one does.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return &forms.ValidationError{Fields: forms.FieldErrors{"id": {"Missing invoice id."}}}
	}
	ctx, cancel := context.WithTimeout(ctx, database.QueryTimeout)
	defer cancel()
	if err := s.repo.Delete(ctx, strings.TrimSpace(id)); err != nil {
		return &forms.PersistenceError{Op: "delete invoice", Err: err}
	}
	s.invalidateViews()
	return nil
}

func (s *Service) invalidateViews() {
	if s.views == nil {
		return
	}
	s.views.Invalidate("/dashboard/invoices")
	s.views.Invalidate("/dashboard")
}

// Page is one page of the filtered invoice listing.
type Page struct {
	Rows       []entity.Row
	Query      string
	Number     int
	TotalPages int
}

// List returns one page of invoices matching the search term.
func (s *Service) List(ctx context.Context, query string, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	ctx, cancel := context.WithTimeout(ctx, database.QueryTimeout)
	defer cancel()
	rows, err := s.repo.ListFiltered(ctx, query, PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, &forms.PersistenceError{Op: "list invoices", Err: err}
	}
	total, err := s.repo.CountFiltered(ctx, query)
	if err != nil {
		return nil, &forms.PersistenceError{Op: "count invoices", Err: err}
	}
	return &Page{
		Rows:       rows,
		Query:      query,
		Number:     page,
		TotalPages: (total + PageSize - 1) / PageSize,
	}, nil
}

// Get fetches a single invoice for the edit form.
func (s *Service) Get(ctx context.Context, id string) (*entity.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, database.QueryTimeout)
	defer cancel()
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &forms.PersistenceError{Op: "fetch invoice", Err: err}
	}
	return inv, nil
}

// Latest returns the five most recent invoices for the dashboard overview.
func (s *Service) Latest(ctx context.Context) ([]entity.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, database.QueryTimeout)
	defer cancel()
	rows, err := s.repo.Latest(ctx, 5)
	if err != nil {
		return nil, &forms.PersistenceError{Op: "fetch latest invoices", Err: err}
	}
	return rows, nil
}
