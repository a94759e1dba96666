// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"lavanderia/internal/apperr"
	"lavanderia/internal/code"
	"lavanderia/internal/models"
)

// OrderStore handles order creation and queries.
type OrderStore struct {
	db       *sql.DB
	counters *CounterStore
}

// NewOrderStore returns a new OrderStore.
func NewOrderStore(db *sql.DB, counters *CounterStore) *OrderStore {
	return &OrderStore{db: db, counters: counters}
}

const orderColumns = `id, code, client_id, status, observation, articles,
	articles_count, total_price, created_at, updated_at`

func scanOrder(scanner rowScanner) (*models.Order, error) {
	var (
		o           models.Order
		observation sql.NullString
		articles    []byte
	)
	err := scanner.Scan(
		&o.ID, &o.Code, &o.ClientID, &o.Status, &observation, &articles,
		&o.ArticlesCount, &o.TotalPrice, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Observation = stringPtr(observation)
	if err := json.Unmarshal(articles, &o.Articles); err != nil {
		return nil, fmt.Errorf("decode order articles: %w", err)
	}
	return &o, nil
}

// CreateOrderInput is what the assembler needs to build an order.
type CreateOrderInput struct {
	ClientID    uuid.UUID
	Observation *string
	Status      models.OrderStatus
	Lines       []models.OrderLine
}

// Create assembles and persists an order in a single transaction:
// the client and every referenced article must exist, each line is priced
// from the client's override or the base price, then the next ORDER code
// is allocated and the row inserted. Any failure rolls back the whole
// transaction, including the code allocation.
func (s *OrderStore) Create(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	status := in.Status
	if status == "" {
		status = models.OrderStatusPending
	}
	if !status.Valid() {
		return nil, apperr.Validation("Estado de pedido inválido", map[string]string{"status": string(status)})
	}

	ids := make([]uuid.UUID, len(in.Lines))
	for i, l := range in.Lines {
		ids[i] = l.ArticleID
	}

	var order *models.Order
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		client, err := lockClient(ctx, tx, in.ClientID)
		if err != nil {
			return err
		}
		if client == nil {
			return clientNotFound(in.ClientID)
		}

		catalog, err := findManyArticles(ctx, tx, ids)
		if err != nil {
			return err
		}
		overrides, err := overridePrices(ctx, tx, in.ClientID, ids)
		if err != nil {
			return err
		}
		priced, err := models.PriceOrder(in.Lines, catalog, overrides)
		if err != nil {
			return err
		}

		orderCode, err := s.counters.NextCode(ctx, tx, code.Order)
		if err != nil {
			return err
		}

		snapshot, err := json.Marshal(priced.Articles)
		if err != nil {
			return fmt.Errorf("encode order articles: %w", err)
		}

		row := tx.QueryRowContext(ctx, `
			INSERT INTO orders (code, client_id, status, observation, articles,
			                    articles_count, total_price)
			VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7)
			RETURNING `+orderColumns,
			orderCode, in.ClientID, string(status), nullString(in.Observation),
			string(snapshot), priced.ArticlesCount, priced.TotalPrice,
		)
		order, err = scanOrder(row)
		return err
	})
	if err != nil {
		return nil, createOrderError(err, in.ClientID)
	}
	return order, nil
}

const ordersClientFK = "orders_client_id_fkey"

func clientNotFound(id uuid.UUID) *apperr.Error {
	return apperr.NotFound(
		fmt.Sprintf("Cliente %s no encontrado", id),
		map[string]string{"clientId": id.String()},
	)
}

// createOrderError classifies a failed order insert. A violation of the
// client foreign key means the client is gone.
func createOrderError(err error, clientID uuid.UUID) error {
	if _, ok := apperr.As(err); ok {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == apperr.ForeignKeyViolation && pgErr.ConstraintName == ordersClientFK {
		e := clientNotFound(clientID)
		e.Err = err
		return e
	}
	return apperr.FromPg(err, "create order")
}

// FindByID retrieves an order with its article snapshot. Returns nil if
// not found.
func (s *OrderStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find order by id: %w", err)
	}
	return o, nil
}

// OrderFilter narrows List. Zero values mean "no filter"; Limit and
// Offset only apply when positive.
type OrderFilter struct {
	ClientID *uuid.UUID
	Status   models.OrderStatus
	Code     string
	Limit    int
	Offset   int
}

// List returns order summaries, newest first.
func (s *OrderStore) List(ctx context.Context, f OrderFilter) ([]models.OrderSummary, error) {
	var (
		where []string
		args  []any
	)
	if f.ClientID != nil {
		args = append(args, *f.ClientID)
		where = append(where, fmt.Sprintf("o.client_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("o.status = $%d", len(args)))
	}
	if f.Code != "" {
		args = append(args, f.Code)
		where = append(where, fmt.Sprintf("o.code = $%d", len(args)))
	}

	query := `
		SELECT o.id, o.code, o.client_id, c.name, o.status,
		       o.articles_count, o.total_price
		FROM orders o
		JOIN clients c ON c.id = o.client_id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY o.created_at DESC, length(o.code) DESC, o.code DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	items := []models.OrderSummary{}
	for rows.Next() {
		var o models.OrderSummary
		if err := rows.Scan(
			&o.ID, &o.Code, &o.ClientID, &o.ClientName, &o.Status,
			&o.ArticlesCount, &o.TotalPrice,
		); err != nil {
			return nil, fmt.Errorf("scan order summary: %w", err)
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

// UpdateStatus overwrites an order's status. The article snapshot and
// totals are never touched. Returns nil if the order does not exist.
func (s *OrderStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperr.Validation("Estado de pedido inválido", map[string]string{"status": string(status)})
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+orderColumns,
		string(status), id,
	)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.FromPg(err, "update order status")
	}
	return o, nil
}

// Stats aggregates a client's orders. The month price sums COMPLETED
// orders created inside now's UTC calendar month.
func (s *OrderStore) Stats(ctx context.Context, clientID uuid.UUID, now time.Time) (*models.ClientStats, error) {
	start, end := models.MonthBounds(now)

	var st models.ClientStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'IN_PROGRESS'),
			COUNT(*) FILTER (WHERE status = 'COMPLETED'),
			COALESCE(SUM(total_price) FILTER (
				WHERE status = 'COMPLETED' AND created_at >= $2 AND created_at < $3
			), 0)
		FROM orders
		WHERE client_id = $1
	`, clientID, start, end).Scan(
		&st.TotalOrdersCount,
		&st.OrdersInProgressCount,
		&st.OrdersCompletedCount,
		&st.TotalOrdersMonthPrice,
	)
	if err != nil {
		return nil, fmt.Errorf("client order stats: %w", err)
	}
	return &st, nil
}
