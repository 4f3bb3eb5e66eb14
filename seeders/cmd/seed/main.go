package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/abikoy/ddu-rims/pkg/config"
	"github.com/abikoy/ddu-rims/pkg/database/postgresql"
	"github.com/abikoy/ddu-rims/seeders"
)

func main() {
	email := flag.String("email", "admin@ddu.edu.et", "email for the seeded admin account")
	password := flag.String("password", "", "password for the seeded admin account (or SEED_ADMIN_PASSWORD)")
	flag.Parse()

	if *password == "" {
		*password = os.Getenv("SEED_ADMIN_PASSWORD")
	}
	if *password == "" {
		log.Fatal("no admin password given: pass -password or set SEED_ADMIN_PASSWORD")
	}

	cfg := config.New()
	dbPool, err := postgresql.Connect(context.Background(), cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer dbPool.Close()

	if err := postgresql.Migrate(dbPool); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	if err := seeders.SeedAdmin(dbPool, *email, *password); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
}
