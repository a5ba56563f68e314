package repo

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newRepoWithMock(t *testing.T) (*CustomerRepo, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewCustomerRepo(sqlx.NewDb(db, "postgres")), mock, db
}

func TestList_OrderedByName(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "name", "email", "image_url"}).
		AddRow("c-1", "Amy Burns", "amy@burns.com", "/customers/amy.png").
		AddRow("c-2", "Lee Robinson", "lee@robinson.com", "/customers/lee.png")
	mock.ExpectQuery(`^SELECT\s+id,\s*name,\s*email,\s*image_url\s+FROM\s+customers\s+ORDER\s+BY\s+name\s+ASC$`).
		WillReturnRows(rows)

	customers, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(customers) != 2 || customers[0].Name != "Amy Burns" {
		t.Fatalf("unexpected customers: %+v", customers)
	}
}

func TestListFiltered_AggregatesInvoiceTotals(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "name", "email", "image_url", "total_invoices", "total_pending", "total_paid"}).
		AddRow("c-1", "Amy Burns", "amy@burns.com", "/customers/amy.png", 3, int64(12500), int64(8000))
	mock.ExpectQuery(`(?s)^SELECT\s+customers\.id,.*COUNT\(invoices\.id\).*LEFT\s+JOIN\s+invoices.*GROUP\s+BY\s+customers\.id`).
		WithArgs("%amy%").
		WillReturnRows(rows)

	got, err := repo.ListFiltered(context.Background(), "amy")
	if err != nil {
		t.Fatalf("ListFiltered error: %v", err)
	}
	if len(got) != 1 || got[0].TotalInvoices != 3 || got[0].TotalPending != 12500 {
		t.Fatalf("unexpected rows: %+v", got)
	}
}
