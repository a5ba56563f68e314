// Command seed populates the database with placeholder customers, a demo
// user, and a spread of invoices so the dashboard has something to show.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/acmefin/dashboard-core/internal/migrations"
	"github.com/acmefin/dashboard-core/internal/user"
	"github.com/acmefin/dashboard-core/pkg/database"
	"github.com/acmefin/dashboard-core/pkg/utilities"
)

type seedCustomer struct {
	name  string
	email string
	image string
}

var customers = []seedCustomer{
	{"Evil Rabbit", "evil@rabbit.com", "/customers/evil-rabbit.png"},
	{"Delba de Oliveira", "delba@oliveira.com", "/customers/delba-de-oliveira.png"},
	{"Lee Robinson", "lee@robinson.com", "/customers/lee-robinson.png"},
	{"Michael Novotny", "michael@novotny.com", "/customers/michael-novotny.png"},
	{"Amy Burns", "amy@burns.com", "/customers/amy-burns.png"},
	{"Balazs Orban", "balazs@orban.com", "/customers/balazs-orban.png"},
}

type seedInvoice struct {
	customer int // index into customers
	amount   int64
	status   string
	daysAgo  int
}

var invoices = []seedInvoice{
	{0, 15795, "pending", 3},
	{1, 20348, "pending", 40},
	{2, 3040, "paid", 65},
	{3, 44800, "paid", 25},
	{4, 34577, "pending", 12},
	{5, 54246, "pending", 88},
	{0, 66666, "pending", 140},
	{2, 32545, "paid", 7},
	{3, 1250, "paid", 18},
	{4, 8546, "paid", 52},
	{1, 500, "paid", 120},
	{5, 8945, "paid", 30},
	{2, 98765, "pending", 1},
}

func main() {
	_ = godotenv.Load()

	lg, err := utilities.InitLogger(utilities.LogConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()
	sugar := lg.Sugar()

	sqlDB, err := database.Connect(database.ConfigFromEnv())
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := migrations.Up(ctx, sqlDB); err != nil {
		sugar.Fatalf("run migrations: %v", err)
	}

	db := sqlx.NewDb(sqlDB, "postgres")

	customerIDs := make([]string, len(customers))
	for i, c := range customers {
		id := uuid.NewString()
		customerIDs[i] = id
		const q = `INSERT INTO customers (id, name, email, image_url) VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING`
		if _, err := db.ExecContext(ctx, q, id, c.name, c.email, c.image); err != nil {
			sugar.Fatalf("seed customer %s: %v", c.name, err)
		}
	}
	sugar.Infow("seeded customers", "count", len(customers))

	hasher := user.BcryptHasher{}
	hash, err := hasher.Hash("123456")
	if err != nil {
		sugar.Fatalf("hash demo password: %v", err)
	}
	const userQ = `INSERT INTO users (id, name, email, password) VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO NOTHING`
	if _, err := db.ExecContext(ctx, userQ, utilities.NewKSUID(), "User", "user@nextmail.com", hash); err != nil {
		sugar.Fatalf("seed user: %v", err)
	}
	sugar.Info("seeded demo user user@nextmail.com")

	now := time.Now().UTC().Truncate(24 * time.Hour)
	for _, inv := range invoices {
		const q = `INSERT INTO invoices (id, customer_id, amount, status, date)
			VALUES ($1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING`
		date := now.AddDate(0, 0, -inv.daysAgo)
		if _, err := db.ExecContext(ctx, q, utilities.NewKSUID(), customerIDs[inv.customer], inv.amount, inv.status, date); err != nil {
			sugar.Fatalf("seed invoice: %v", err)
		}
	}
	sugar.Infow("seeded invoices", "count", len(invoices))
}
