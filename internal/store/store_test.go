// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"blogcms/internal/database"
	"blogcms/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "blogcms")
	pass := os.Getenv("POSTGRES_PASSWORD")
	name := envOr("POSTGRES_DB", "blogcms")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanUsers removes test users by email. Call in t.Cleanup().
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", email)
	}
}

// cleanPosts removes test posts by slug. Call in t.Cleanup().
func cleanPosts(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		db.Exec("DELETE FROM posts WHERE slug = $1", slug)
	}
}

// cleanCategories removes test categories by slug. Call in t.Cleanup().
func cleanCategories(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		db.Exec("DELETE FROM categories WHERE slug = $1", slug)
	}
}

// fixture creates a throwaway author and category and removes them (and
// any posts registered via t.Cleanup before it) when the test ends.
type fixture struct {
	db       *sql.DB
	author   *models.User
	category *models.Category
}

func newFixture(t *testing.T, db *sql.DB, name string) *fixture {
	t.Helper()
	ctx := context.Background()

	email := name + "@store-test.local"
	catSlug := "store-test-" + name
	t.Cleanup(func() {
		db.Exec("DELETE FROM posts WHERE category_id IN (SELECT id FROM categories WHERE slug = $1)", catSlug)
		cleanCategories(t, db, catSlug)
		cleanUsers(t, db, email)
	})

	author, err := NewUserStore(db).Create(ctx, "Test Author", email, "pass", models.RoleAdmin)
	if err != nil {
		t.Fatalf("create author: %v", err)
	}
	cat, err := NewCategoryStore(db).Create(ctx, &models.Category{Name: "Store Test " + name, Slug: catSlug})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return &fixture{db: db, author: author, category: cat}
}

func (f *fixture) post(t *testing.T, slug string, published bool) *models.Post {
	t.Helper()
	p, err := NewPostStore(f.db).Create(context.Background(), &models.Post{
		Title:      "Post " + slug,
		Slug:       slug,
		Content:    "# Hello\n\nBody.",
		Excerpt:    "Short.",
		CategoryID: f.category.ID,
		AuthorID:   f.author.ID,
		Published:  published,
	})
	if err != nil {
		t.Fatalf("create post %s: %v", slug, err)
	}
	if p.ID == uuid.Nil {
		t.Fatal("created post has nil ID")
	}
	return p
}
