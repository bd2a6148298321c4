package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data.
// It creates a default admin user and a few starter categories if the
// database is empty. The admin is the default author identity used by
// the post read service.
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	// Hash the default admin password.
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, username, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4, $5)
	`, "admin@quillpress.local", "admin", string(hash), "Admin User", "admin")
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	// Starter categories so the public surface has something to filter by.
	for _, c := range []struct{ name, slug string }{
		{"Technology", "technology"},
		{"Travel", "travel"},
		{"Life", "life"},
	} {
		if _, err := db.Exec(`
			INSERT INTO categories (name, slug) VALUES ($1, $2)
			ON CONFLICT (slug) DO NOTHING
		`, c.name, c.slug); err != nil {
			return fmt.Errorf("seed insert category %s: %w", c.name, err)
		}
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@quillpress.local",
		"password", "admin",
	)

	return nil
}
