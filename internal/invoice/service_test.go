package invoice

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/acmefin/dashboard-core/internal/forms"
	"github.com/acmefin/dashboard-core/internal/invoice/entity"
	"github.com/acmefin/dashboard-core/internal/viewcache"
	"github.com/acmefin/dashboard-core/pkg/database"
)

type stubRepo struct {
	created   []*entity.Invoice
	updated   []*entity.Invoice
	deleted   []string
	createCtx context.Context

	createErr error
	updateErr error
	deleteErr error

	byID      map[string]*entity.Invoice
	rows      []entity.Row
	count     int
	listCalls int
}

func (s *stubRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	s.createCtx = ctx
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, inv)
	return nil
}

func (s *stubRepo) Update(_ context.Context, inv *entity.Invoice) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = append(s.updated, inv)
	return nil
}

func (s *stubRepo) Delete(_ context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	inv, ok := s.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return inv, nil
}

func (s *stubRepo) ListFiltered(_ context.Context, _ string, _, _ int) ([]entity.Row, error) {
	s.listCalls++
	return s.rows, nil
}

func (s *stubRepo) CountFiltered(_ context.Context, _ string) (int, error) {
	return s.count, nil
}

func (s *stubRepo) Latest(_ context.Context, _ int) ([]entity.Row, error) {
	return s.rows, nil
}

type spyInvalidator struct {
	paths []string
}

func (s *spyInvalidator) Invalidate(path string) { s.paths = append(s.paths, path) }

func newTestService(repo *stubRepo, views *spyInvalidator) *Service {
	var inv viewcache.Invalidator
	if views != nil {
		inv = views
	}
	svc := NewService(nil, repo, inv)
	svc.now = func() time.Time { return time.Date(2024, 6, 15, 13, 45, 0, 0, time.UTC) }
	return svc
}

func validInput() FormInput {
	return FormInput{CustomerID: "c-1", Amount: "50.00", Status: "pending"}
}

func requireFieldError(t *testing.T, err error, field string) *forms.ValidationError {
	t.Helper()
	var verr *forms.ValidationError
	require.ErrorAs(t, err, &verr)
	require.True(t, verr.Fields.Has(field), "expected error on field %q, got %v", field, verr.Fields)
	return verr
}

func TestCreateRejectsNonPositiveAmount(t *testing.T) {
	for _, amount := range []string{"0", "-5", "-0.01"} {
		repo := &stubRepo{}
		svc := newTestService(repo, nil)

		in := validInput()
		in.Amount = amount
		_, err := svc.Create(context.Background(), in)

		requireFieldError(t, err, "amount")
		require.Empty(t, repo.created, "no insert may happen for amount %q", amount)
	}
}

func TestCreateRejectsUnparsableAmount(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, nil)

	in := validInput()
	in.Amount = "fifty"
	_, err := svc.Create(context.Background(), in)

	requireFieldError(t, err, "amount")
	require.Empty(t, repo.created)
}

func TestCreateRejectsNonFiniteOrOversizedAmount(t *testing.T) {
	// NaN is not <= 0 and Inf/1e300 are > 0, so these must be caught
	// before the cents conversion can overflow
	for _, amount := range []string{"NaN", "nan", "Inf", "+Inf", "-Inf", "1e300", "9e18"} {
		repo := &stubRepo{}
		svc := newTestService(repo, nil)

		in := validInput()
		in.Amount = amount
		_, err := svc.Create(context.Background(), in)

		requireFieldError(t, err, "amount")
		require.Empty(t, repo.created, "no insert may happen for amount %q", amount)
	}
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, nil)

	in := validInput()
	in.Status = "overdue"
	_, err := svc.Create(context.Background(), in)

	requireFieldError(t, err, "status")
	require.Empty(t, repo.created)
}

func TestCreateRejectsMissingCustomer(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, nil)

	in := validInput()
	in.CustomerID = "  "
	_, err := svc.Create(context.Background(), in)

	requireFieldError(t, err, "customerId")
	require.Empty(t, repo.created)
}

func TestCreateConvertsAmountToCentsAndStampsDate(t *testing.T) {
	repo := &stubRepo{}
	views := &spyInvalidator{}
	svc := newTestService(repo, views)

	inv, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	require.Same(t, inv, repo.created[0])
	require.Equal(t, int64(5000), inv.Amount)
	require.Equal(t, "c-1", inv.CustomerID)
	require.Equal(t, entity.StatusPending, inv.Status)
	require.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), inv.Date)
	require.NotEmpty(t, inv.ID)

	require.Contains(t, views.paths, "/dashboard/invoices")
	require.Contains(t, views.paths, "/dashboard")
}

func TestCreateCentsRounding(t *testing.T) {
	cases := map[string]int64{
		"50.00":  5000,
		"0.01":   1,
		"19.99":  1999,
		"666.66": 66666,
	}
	for amount, want := range cases {
		repo := &stubRepo{}
		svc := newTestService(repo, nil)

		in := validInput()
		in.Amount = amount
		inv, err := svc.Create(context.Background(), in)
		require.NoError(t, err)
		require.Equal(t, want, inv.Amount, "amount %q", amount)
	}
}

func TestCreatePropagatesPersistenceFailure(t *testing.T) {
	cause := errors.New("connection reset")
	repo := &stubRepo{createErr: cause}
	views := &spyInvalidator{}
	svc := newTestService(repo, views)

	_, err := svc.Create(context.Background(), validInput())

	var perr *forms.PersistenceError
	require.ErrorAs(t, err, &perr)
	require.ErrorIs(t, err, cause)
	require.Empty(t, views.paths, "no invalidation on a failed mutation")
}

func TestCreateBoundsTheStorageDeadline(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, nil)

	_, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	deadline, ok := repo.createCtx.Deadline()
	require.True(t, ok, "repo call must carry a deadline")
	require.WithinDuration(t, time.Now().Add(database.QueryTimeout), deadline, time.Second)
}

func TestCreateMapsTimeoutToPersistenceError(t *testing.T) {
	repo := &stubRepo{createErr: context.DeadlineExceeded}
	svc := newTestService(repo, nil)

	_, err := svc.Create(context.Background(), validInput())

	var perr *forms.PersistenceError
	require.ErrorAs(t, err, &perr)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEditUpdatesByID(t *testing.T) {
	repo := &stubRepo{}
	views := &spyInvalidator{}
	svc := newTestService(repo, views)

	in := FormInput{CustomerID: "c-2", Amount: "12.34", Status: "paid"}
	require.NoError(t, svc.Edit(context.Background(), "inv-1", in))

	require.Len(t, repo.updated, 1)
	got := repo.updated[0]
	require.Equal(t, "inv-1", got.ID)
	require.Equal(t, "c-2", got.CustomerID)
	require.Equal(t, int64(1234), got.Amount)
	require.Equal(t, entity.StatusPaid, got.Status)
	require.Contains(t, views.paths, "/dashboard/invoices")
}

func TestEditNonexistentIDSucceeds(t *testing.T) {
	// a zero-row UPDATE is silently treated as success
	repo := &stubRepo{}
	svc := newTestService(repo, nil)

	err := svc.Edit(context.Background(), "no-such-id", validInput())
	require.NoError(t, err)
}

func TestEditRejectsEmptyID(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, nil)

	err := svc.Edit(context.Background(), " ", validInput())
	requireFieldError(t, err, "id")
	require.Empty(t, repo.updated)
}

func TestEditCombinesFieldAndIDErrors(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, nil)

	err := svc.Edit(context.Background(), "", FormInput{Amount: "-1", Status: "bogus"})
	verr := requireFieldError(t, err, "id")
	require.True(t, verr.Fields.Has("amount"))
	require.True(t, verr.Fields.Has("status"))
}

func TestEditPropagatesPersistenceFailure(t *testing.T) {
	repo := &stubRepo{updateErr: errors.New("timeout")}
	views := &spyInvalidator{}
	svc := newTestService(repo, views)

	err := svc.Edit(context.Background(), "inv-1", validInput())

	var perr *forms.PersistenceError
	require.ErrorAs(t, err, &perr)
	require.Empty(t, views.paths)
}

func TestDeleteIsIdempotent(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, nil)

	require.NoError(t, svc.Delete(context.Background(), "inv-1"))
	require.NoError(t, svc.Delete(context.Background(), "inv-1"))
	require.Equal(t, []string{"inv-1", "inv-1"}, repo.deleted)
}

func TestDeleteRejectsEmptyID(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, nil)

	err := svc.Delete(context.Background(), "")
	requireFieldError(t, err, "id")
	require.Empty(t, repo.deleted)
}

func TestGetMapsNoRowsToNotFound(t *testing.T) {
	repo := &stubRepo{byID: map[string]*entity.Invoice{}}
	svc := newTestService(repo, nil)

	_, err := svc.Get(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListComputesTotalPages(t *testing.T) {
	repo := &stubRepo{count: 13}
	svc := newTestService(repo, nil)

	page, err := svc.List(context.Background(), "", 1)
	require.NoError(t, err)
	require.Equal(t, 3, page.TotalPages)
	require.Equal(t, 1, page.Number)
}

func TestListClampsPageToOne(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, nil)

	page, err := svc.List(context.Background(), "", -4)
	require.NoError(t, err)
	require.Equal(t, 1, page.Number)
}
