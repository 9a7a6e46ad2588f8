package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/fernandokenjii/desafio-database-relations/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()

	var (
		direction = flag.String("direction", "up", "migration direction: up, down or status")
		steps     = flag.Int("steps", 0, "number of migrations to apply (0 = all for up, 1 for down)")
		dsn       = flag.String("dsn", "", "postgres dsn (defaults to ORDERS_POSTGRES_DSN)")
	)
	flag.Parse()

	connString := *dsn
	if connString == "" {
		connString = os.Getenv("ORDERS_POSTGRES_DSN")
	}
	if connString == "" {
		fail("postgres dsn is required: pass -dsn or set ORDERS_POSTGRES_DSN")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := postgres.Open(ctx, connString)
	if err != nil {
		fail("connect to postgres: %v", err)
	}
	defer store.Close()

	switch *direction {
	case "up":
		if err := store.MigrateUp(ctx, *steps); err != nil {
			fail("migrate up: %v", err)
		}
		fmt.Println("migrations applied")
	case "down":
		n := *steps
		if n <= 0 {
			n = 1
		}
		if err := store.MigrateDown(ctx, n); err != nil {
			fail("migrate down: %v", err)
		}
		fmt.Printf("rolled back %d migration(s)\n", n)
	case "status":
		current, pending, err := store.MigrationStatus(ctx)
		if err != nil {
			fail("migration status: %v", err)
		}
		fmt.Printf("current version: %d, pending: %d\n", current, pending)
	default:
		fail("unknown direction %q: expected up, down or status", *direction)
	}
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
