// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"lavanderia/internal/apperr"
	"lavanderia/internal/code"
	"lavanderia/internal/models"
)

// ArticleStore manages the article catalog.
type ArticleStore struct {
	db       *sql.DB
	counters *CounterStore
}

// NewArticleStore returns a new ArticleStore.
func NewArticleStore(db *sql.DB, counters *CounterStore) *ArticleStore {
	return &ArticleStore{db: db, counters: counters}
}

const articleColumns = `id, code, name, category_name, base_price, created_at, updated_at`

// scanArticle scans a row into an Article struct.
func scanArticle(scanner rowScanner) (*models.Article, error) {
	var a models.Article
	err := scanner.Scan(
		&a.ID, &a.Code, &a.Name, &a.CategoryName,
		&a.BasePrice, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// duplicateName builds the conflict returned when an article name is taken.
func duplicateName(name string, err error) error {
	e := apperr.Conflict(
		fmt.Sprintf("Ya existe un artículo con el nombre %q", name),
		map[string]string{"name": name},
	)
	e.Err = err
	return e
}

// List returns all articles ordered by category, then name.
func (s *ArticleStore) List(ctx context.Context) ([]models.Article, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		ORDER BY category_name, lower(name)
	`)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	items := []models.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// ListForClient returns every article with the client's override price
// attached, nil where the client has none. The caller checks that the
// client exists.
func (s *ArticleStore) ListForClient(ctx context.Context, clientID uuid.UUID) ([]models.ClientArticle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.code, a.name, a.category_name, a.base_price,
		       a.created_at, a.updated_at, cp.price
		FROM articles a
		LEFT JOIN client_prices cp ON cp.article_id = a.id AND cp.client_id = $1
		ORDER BY a.category_name, lower(a.name)
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list client articles: %w", err)
	}
	defer rows.Close()

	items := []models.ClientArticle{}
	for rows.Next() {
		var ca models.ClientArticle
		var price sql.NullInt64
		if err := rows.Scan(
			&ca.ID, &ca.Code, &ca.Name, &ca.CategoryName, &ca.BasePrice,
			&ca.CreatedAt, &ca.UpdatedAt, &price,
		); err != nil {
			return nil, fmt.Errorf("scan client article: %w", err)
		}
		if price.Valid {
			p := price.Int64
			ca.ClientPrice = &p
		}
		items = append(items, ca)
	}
	return items, rows.Err()
}

// FindByID retrieves an article by ID. Returns nil if not found.
func (s *ArticleStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by id: %w", err)
	}
	return a, nil
}

// Create allocates an ART code and inserts the article in one transaction.
// The unique index on lower(name) rejects duplicates; that surfaces as a
// Conflict and the code allocation rolls back with it.
func (s *ArticleStore) Create(ctx context.Context, a *models.Article) (*models.Article, error) {
	var result *models.Article
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		artCode, err := s.counters.NextCode(ctx, tx, code.Article)
		if err != nil {
			return err
		}
		row := tx.QueryRowContext(ctx, `
			INSERT INTO articles (code, name, category_name, base_price)
			VALUES ($1, $2, $3, $4)
			RETURNING `+articleColumns,
			artCode, a.Name, a.CategoryName, a.BasePrice,
		)
		result, err = scanArticle(row)
		return err
	})
	if err != nil {
		if apperr.PgCode(err) == apperr.UniqueViolation {
			return nil, duplicateName(a.Name, err)
		}
		if _, ok := apperr.As(err); ok {
			return nil, err
		}
		return nil, apperr.FromPg(err, "create article")
	}
	return result, nil
}

// Update writes the mutable fields of an existing article and returns the
// stored row. Returns nil if the article no longer exists.
func (s *ArticleStore) Update(ctx context.Context, a *models.Article) (*models.Article, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE articles SET
			name = $1, category_name = $2, base_price = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING `+articleColumns,
		a.Name, a.CategoryName, a.BasePrice, a.ID,
	)
	result, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		if apperr.PgCode(err) == apperr.UniqueViolation {
			return nil, duplicateName(a.Name, err)
		}
		return nil, apperr.FromPg(err, "update article")
	}
	return result, nil
}

// Delete removes an article and returns it. Orders keep their snapshot;
// override prices cascade. Returns nil if not found.
func (s *ArticleStore) Delete(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	row := s.db.QueryRowContext(ctx, `DELETE FROM articles WHERE id = $1 RETURNING `+articleColumns, id)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete article: %w", err)
	}
	return a, nil
}

// findManyArticles resolves a set of article IDs on q, keyed by ID. Missing IDs
// are simply absent from the result.
func findManyArticles(ctx context.Context, q querier, ids []uuid.UUID) (map[uuid.UUID]models.Article, error) {
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}

	rows, err := q.QueryContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = ANY($1::uuid[])`, strIDs)
	if err != nil {
		return nil, fmt.Errorf("find articles: %w", err)
	}
	defer rows.Close()

	found := make(map[uuid.UUID]models.Article, len(ids))
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		found[a.ID] = *a
	}
	return found, rows.Err()
}
