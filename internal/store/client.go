package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"lavanderia/internal/apperr"
	"lavanderia/internal/models"
)

// ClientStore manages clients and their per-article override prices.
type ClientStore struct {
	db *sql.DB
}

// NewClientStore returns a new ClientStore.
func NewClientStore(db *sql.DB) *ClientStore {
	return &ClientStore{db: db}
}

const clientColumns = `id, name, contact_name, address, phone, email, category, created_at, updated_at`

func scanClient(scanner rowScanner) (*models.Client, error) {
	var c models.Client
	var address, email sql.NullString
	err := scanner.Scan(
		&c.ID, &c.Name, &c.ContactName, &address, &c.Phone,
		&email, &c.Category, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Address = stringPtr(address)
	c.Email = stringPtr(email)
	return &c, nil
}

// ClientFilter narrows List. Search matches name or contact name,
// case-insensitively.
type ClientFilter struct {
	Search   string
	Category string
}

// List returns clients matching the filter, ordered by name.
func (s *ClientStore) List(ctx context.Context, f ClientFilter) ([]models.Client, error) {
	var (
		where []string
		args  []any
	)
	if term := strings.TrimSpace(f.Search); term != "" {
		args = append(args, "%"+escapeLike(term)+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR contact_name ILIKE $%d)", len(args), len(args)))
	}
	if cat := strings.TrimSpace(f.Category); cat != "" {
		args = append(args, cat)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}

	query := `SELECT ` + clientColumns + ` FROM clients`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY lower(name)`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	items := []models.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a client by ID. Returns nil if not found.
func (s *ClientStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	return findClient(ctx, s.db, id)
}

func findClient(ctx context.Context, q querier, id uuid.UUID) (*models.Client, error) {
	return findClientRow(q.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
}

// lockClient reads a client on tx and holds a key-share lock on the row
// until tx ends. A concurrent delete of the client waits for tx.
func lockClient(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*models.Client, error) {
	return findClientRow(tx.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1 FOR KEY SHARE`, id))
}

func findClientRow(row *sql.Row) (*models.Client, error) {
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find client by id: %w", err)
	}
	return c, nil
}

// FindWithPrices retrieves a client with its override prices attached.
// Returns nil if not found.
func (s *ClientStore) FindWithPrices(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	c, err := s.FindByID(ctx, id)
	if err != nil || c == nil {
		return c, err
	}
	prices, err := s.Prices(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Prices = prices
	return c, nil
}

// Create inserts a new client and returns it.
func (s *ClientStore) Create(ctx context.Context, c *models.Client) (*models.Client, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO clients (name, contact_name, address, phone, email, category)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+clientColumns,
		c.Name, c.ContactName, nullString(c.Address), c.Phone, nullString(c.Email), c.Category,
	)
	result, err := scanClient(row)
	if err != nil {
		return nil, apperr.FromPg(err, "create client")
	}
	return result, nil
}

// Update writes the mutable fields of a client. Returns nil if not found.
func (s *ClientStore) Update(ctx context.Context, c *models.Client) (*models.Client, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE clients SET
			name = $1, contact_name = $2, address = $3, phone = $4,
			email = $5, category = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING `+clientColumns,
		c.Name, c.ContactName, nullString(c.Address), c.Phone,
		nullString(c.Email), c.Category, c.ID,
	)
	result, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.FromPg(err, "update client")
	}
	return result, nil
}

// Delete removes a client and returns it. A client with orders cannot be
// deleted; that is reported as a Conflict. Returns nil if not found.
func (s *ClientStore) Delete(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	row := s.db.QueryRowContext(ctx, `DELETE FROM clients WHERE id = $1 RETURNING `+clientColumns, id)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		if apperr.PgCode(err) == apperr.ForeignKeyViolation {
			e := apperr.Conflict("No se puede eliminar un cliente con pedidos", map[string]string{"clientId": id.String()})
			e.Err = err
			return nil, e
		}
		return nil, fmt.Errorf("delete client: %w", err)
	}
	return c, nil
}

// Prices returns a client's override prices with article names.
func (s *ClientStore) Prices(ctx context.Context, clientID uuid.UUID) ([]models.ClientPrice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cp.client_id, cp.article_id, a.name, cp.price
		FROM client_prices cp
		JOIN articles a ON a.id = cp.article_id
		WHERE cp.client_id = $1
		ORDER BY lower(a.name)
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list client prices: %w", err)
	}
	defer rows.Close()

	items := []models.ClientPrice{}
	for rows.Next() {
		var p models.ClientPrice
		if err := rows.Scan(&p.ClientID, &p.ArticleID, &p.ArticleName, &p.Price); err != nil {
			return nil, fmt.Errorf("scan client price: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// SetPrice creates or replaces the client's override for an article.
// An unknown client or article is a NotFound error.
func (s *ClientStore) SetPrice(ctx context.Context, p models.ClientPrice) (*models.ClientPrice, error) {
	var out models.ClientPrice
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO client_prices (client_id, article_id, price)
		VALUES ($1, $2, $3)
		ON CONFLICT (client_id, article_id)
		DO UPDATE SET price = EXCLUDED.price, updated_at = NOW()
		RETURNING client_id, article_id, price
	`, p.ClientID, p.ArticleID, p.Price).Scan(&out.ClientID, &out.ArticleID, &out.Price)
	if err != nil {
		if apperr.PgCode(err) == apperr.ForeignKeyViolation {
			e := apperr.NotFound("Cliente o artículo no encontrado", map[string]string{
				"clientId":  p.ClientID.String(),
				"articleId": p.ArticleID.String(),
			})
			e.Err = err
			return nil, e
		}
		return nil, apperr.FromPg(err, "set client price")
	}
	return &out, nil
}

// DeletePrice removes an override. Reports whether one existed.
func (s *ClientStore) DeletePrice(ctx context.Context, clientID, articleID uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM client_prices WHERE client_id = $1 AND article_id = $2`, clientID, articleID)
	if err != nil {
		return false, fmt.Errorf("delete client price: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete client price rows: %w", err)
	}
	return n > 0, nil
}

// overridePrices loads a client's overrides for the given articles on q.
func overridePrices(ctx context.Context, q querier, clientID uuid.UUID, articleIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	strIDs := make([]string, len(articleIDs))
	for i, id := range articleIDs {
		strIDs[i] = id.String()
	}

	rows, err := q.QueryContext(ctx, `
		SELECT article_id, price FROM client_prices
		WHERE client_id = $1 AND article_id = ANY($2::uuid[])
	`, clientID, strIDs)
	if err != nil {
		return nil, fmt.Errorf("load override prices: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]int64)
	for rows.Next() {
		var id uuid.UUID
		var price int64
		if err := rows.Scan(&id, &price); err != nil {
			return nil, fmt.Errorf("scan override price: %w", err)
		}
		out[id] = price
	}
	return out, rows.Err()
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
