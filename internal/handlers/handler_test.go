// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL is unavailable.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"lavanderia/internal/apperr"
	"lavanderia/internal/database"
	"lavanderia/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		host := envOr("POSTGRES_HOST", "localhost")
		port := envOr("POSTGRES_PORT", "5432")
		user := envOr("POSTGRES_USER", "lavanderia")
		pass := envOr("POSTGRES_PASSWORD", "changeme")
		name := envOr("POSTGRES_DB", "lavanderia")
		dsn = "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB       *sql.DB
	Articles *store.ArticleStore
	Clients  *store.ClientStore
	Orders   *store.OrderStore
	API      *API
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	counters := store.NewCounterStore(db)
	env := &testEnv{
		DB:       db,
		Articles: store.NewArticleStore(db, counters),
		Clients:  store.NewClientStore(db),
		Orders:   store.NewOrderStore(db, counters),
	}
	env.API = New(env.Articles, env.Clients, env.Orders)
	return env
}

// withChiURLParams adds chi URL parameters (key, value pairs) to a request.
func withChiURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// jsonRequest builds a request with body encoded as JSON.
func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// serve runs h and returns the recorder.
func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

// decodeBody unmarshals the response body into dst.
func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
}

// assertError checks status and error code of an envelope response.
func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) apperr.Envelope {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, status, rr.Body.String())
	}
	var env apperr.Envelope
	decodeBody(t, rr, &env)
	if env.Code != code {
		t.Errorf("code: got %q, want %q", env.Code, code)
	}
	if env.Message == "" {
		t.Error("envelope message should not be empty")
	}
	return env
}

// uniqueName suffixes base so runs against a shared database never collide.
func uniqueName(base string) string {
	return base + " " + uuid.NewString()[:8]
}

// cleanArticle removes an article by ID. Call in t.Cleanup().
func cleanArticle(db *sql.DB, id uuid.UUID) {
	db.Exec("DELETE FROM articles WHERE id = $1", id)
}

// cleanClient removes a client and its orders. Call in t.Cleanup().
func cleanClient(db *sql.DB, id uuid.UUID) {
	db.Exec("DELETE FROM orders WHERE client_id = $1", id)
	db.Exec("DELETE FROM clients WHERE id = $1", id)
}

// fixedNow returns a clock stuck at t.
func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
