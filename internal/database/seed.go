package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// AdminAccount describes the administrator created on first start. The
// values come from configuration; nothing here has a literal default.
type AdminAccount struct {
	Email    string
	Name     string
	Password string
}

// defaultCategories are inserted when the categories table is empty.
var defaultCategories = []struct {
	name, slug, description, color string
}{
	{"Technology", "technology", "Latest tech trends and innovations", "bg-blue-500"},
	{"Lifestyle", "lifestyle", "Life tips and personal development", "bg-green-500"},
	{"Business", "business", "Business insights and entrepreneurship", "bg-purple-500"},
	{"Health", "health", "Health and wellness tips", "bg-red-500"},
}

// Seed creates the admin account if no user has its email, and the default
// categories if none exist. Safe to call on every start.
func Seed(db *sql.DB, admin AdminAccount) error {
	if err := seedAdmin(db, admin); err != nil {
		return err
	}
	return seedCategories(db)
}

func seedAdmin(db *sql.DB, admin AdminAccount) error {
	if admin.Email == "" || admin.Password == "" {
		slog.Warn("admin account not configured, skipping admin seed")
		return nil
	}

	var exists bool
	if err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)", admin.Email).Scan(&exists); err != nil {
		return fmt.Errorf("seed check admin: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	name := admin.Name
	if name == "" {
		name = "Admin"
	}

	_, err = db.Exec(`
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, 'admin')
	`, name, admin.Email, string(hash))
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with admin user", "email", admin.Email)
	return nil
}

func seedCategories(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, c := range defaultCategories {
		_, err := db.Exec(`
			INSERT INTO categories (name, slug, description, color)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (slug) DO NOTHING
		`, c.name, c.slug, c.description, c.color)
		if err != nil {
			return fmt.Errorf("seed insert category %s: %w", c.slug, err)
		}
	}

	slog.Info("database seeded with default categories", "count", len(defaultCategories))
	return nil
}
