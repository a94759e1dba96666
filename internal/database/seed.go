package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"lavanderia/internal/code"
)

type seedArticle struct {
	name     string
	category string
	price    int64
}

type seedClient struct {
	name     string
	contact  string
	phone    string
	email    string
	category string
}

var seedArticles = []seedArticle{
	{"Camisa", "Prendas", 350},
	{"Pantalón", "Prendas", 450},
	{"Traje completo", "Prendas", 1200},
	{"Edredón nórdico", "Ropa de cama", 1800},
	{"Sábana", "Ropa de cama", 300},
	{"Mantel", "Mantelería", 500},
}

var seedClients = []seedClient{
	{"Hotel Mirador", "Lucía Gómez", "911234567", "recepcion@hotelmirador.example", "Hostelería"},
	{"Restaurante La Ribera", "Andrés Pardo", "912345678", "", "Hostelería"},
	{"Ana Martín", "Ana Martín", "600111222", "ana.martin@example.com", "Particular"},
}

// Seed populates an empty catalog with sample articles, clients and one
// override price for development. Article codes are drawn from the
// ARTICLE counter like any other insert. It does nothing if any article
// already exists.
func Seed(db *sql.DB) error {
	ctx := context.Background()

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return fmt.Errorf("seed check articles: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	articleIDs := make([]string, 0, len(seedArticles))
	for _, a := range seedArticles {
		var n int64
		err := tx.QueryRowContext(ctx, `
			UPDATE counters SET next_value = next_value + 1
			WHERE name = $1
			RETURNING next_value - 1
		`, string(code.Article)).Scan(&n)
		if err != nil {
			return fmt.Errorf("seed allocate article code: %w", err)
		}
		artCode, err := code.Format(code.Article, n)
		if err != nil {
			return err
		}

		var id string
		err = tx.QueryRowContext(ctx, `
			INSERT INTO articles (code, name, category_name, base_price)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, artCode, a.name, a.category, a.price).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed insert article %q: %w", a.name, err)
		}
		articleIDs = append(articleIDs, id)
	}

	clientIDs := make([]string, 0, len(seedClients))
	for _, c := range seedClients {
		var email sql.NullString
		if c.email != "" {
			email = sql.NullString{String: c.email, Valid: true}
		}
		var id string
		err := tx.QueryRowContext(ctx, `
			INSERT INTO clients (name, contact_name, phone, email, category)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, c.name, c.contact, c.phone, email, c.category).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed insert client %q: %w", c.name, err)
		}
		clientIDs = append(clientIDs, id)
	}

	// The hotel gets a negotiated price for sheets.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO client_prices (client_id, article_id, price)
		VALUES ($1, $2, $3)
	`, clientIDs[0], articleIDs[4], 220)
	if err != nil {
		return fmt.Errorf("seed insert client price: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with sample data",
		"articles", len(seedArticles),
		"clients", len(seedClients),
	)
	return nil
}
