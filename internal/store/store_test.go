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

	"lavanderia/internal/database"
	"lavanderia/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// DATABASE_URL wins; otherwise the docker-compose defaults apply.
func testDSN() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "lavanderia")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "lavanderia")
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

// uniqueName suffixes base so parallel runs against a shared database
// never trip the article name index.
func uniqueName(base string) string {
	return base + " " + uuid.NewString()[:8]
}

// newTestArticle creates an article through the store and removes it
// when the test finishes.
func newTestArticle(t *testing.T, db *sql.DB, name string, basePrice int64) *models.Article {
	t.Helper()
	s := NewArticleStore(db, NewCounterStore(db))
	a, err := s.Create(context.Background(), &models.Article{
		Name:         uniqueName(name),
		CategoryName: "Pruebas",
		BasePrice:    basePrice,
	})
	if err != nil {
		t.Fatalf("create article: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM articles WHERE id = $1", a.ID) })
	return a
}

// newTestClient creates a client and removes it together with its
// orders when the test finishes.
func newTestClient(t *testing.T, db *sql.DB, name string) *models.Client {
	t.Helper()
	s := NewClientStore(db)
	c, err := s.Create(context.Background(), &models.Client{
		Name:        uniqueName(name),
		ContactName: "Contacto",
		Phone:       "600000000",
		Category:    "Particular",
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	t.Cleanup(func() { cleanClient(db, c.ID) })
	return c
}

// cleanClient removes a client and every order that references it.
func cleanClient(db *sql.DB, id uuid.UUID) {
	db.Exec("DELETE FROM orders WHERE client_id = $1", id)
	db.Exec("DELETE FROM clients WHERE id = $1", id)
}
