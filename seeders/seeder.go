package seeders

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abikoy/ddu-rims/internal/authz"
	"github.com/abikoy/ddu-rims/pkg/utils"
)

// SeedAdmin creates the initial admin account when it does not exist
// yet. Without it nobody can approve the first registrations.
func SeedAdmin(db *pgxpool.Pool, email, password string) error {
	ctx := context.Background()
	log.Println("seeding admin account...")

	var existingID uint64
	err := db.QueryRow(ctx, "SELECT id FROM users WHERE LOWER(email) = LOWER($1)", email).Scan(&existingID)
	if err == nil {
		log.Println("admin account already exists, skipping")
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to check for existing admin: %w", err)
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO users (full_name, email, password, department, role, is_approved, approved_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, NOW())`
	if _, err := db.Exec(ctx, query,
		"System Administrator", email, hashedPassword,
		authz.DepartmentDDU, authz.RoleAdmin,
	); err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	log.Println("admin account created")
	return nil
}
