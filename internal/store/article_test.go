// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"lavanderia/internal/apperr"
	"lavanderia/internal/code"
	"lavanderia/internal/models"
)

func TestArticleStoreCreate(t *testing.T) {
	db := testDB(t)
	counters := NewCounterStore(db)
	ctx := context.Background()

	next, err := counters.Peek(ctx, code.Article)
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}

	a := newTestArticle(t, db, "Camisa", 350)

	if a.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	kind, n, err := code.Parse(a.Code)
	if err != nil {
		t.Fatalf("Parse(%q): %v", a.Code, err)
	}
	if kind != code.Article {
		t.Errorf("code kind: got %q, want %q", kind, code.Article)
	}
	if n < next {
		t.Errorf("code value: got %d, want >= %d", n, next)
	}
	if a.BasePrice != 350 {
		t.Errorf("base price: got %d, want 350", a.BasePrice)
	}
	if a.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestArticleStoreDuplicateNameIgnoresCase(t *testing.T) {
	db := testDB(t)
	s := NewArticleStore(db, NewCounterStore(db))
	ctx := context.Background()

	a := newTestArticle(t, db, "Pantalón", 500)

	_, err := s.Create(ctx, &models.Article{
		Name:         strings.ToUpper(a.Name),
		CategoryName: "Pruebas",
		BasePrice:    600,
	})
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("duplicate create: got %v, want Conflict", err)
	}
}

func TestArticleStoreFindUpdateDelete(t *testing.T) {
	db := testDB(t)
	s := NewArticleStore(db, NewCounterStore(db))
	ctx := context.Background()

	missing, err := s.FindByID(ctx, uuid.New())
	if err != nil {
		t.Fatalf("FindByID (not found): %v", err)
	}
	if missing != nil {
		t.Error("expected nil for non-existent article")
	}

	a := newTestArticle(t, db, "Chaqueta", 900)

	found, err := s.FindByID(ctx, a.ID)
	if err != nil || found == nil {
		t.Fatalf("FindByID: %v %v", found, err)
	}
	if found.Code != a.Code {
		t.Errorf("code: got %q, want %q", found.Code, a.Code)
	}

	changed, _ := found.Apply(models.ArticlePatch{BasePrice: ptr(int64(950))})
	updated, err := s.Update(ctx, &changed)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.BasePrice != 950 {
		t.Errorf("updated price: got %d, want 950", updated.BasePrice)
	}
	if updated.Code != a.Code {
		t.Errorf("code must not change on update: got %q, want %q", updated.Code, a.Code)
	}

	deleted, err := s.Delete(ctx, a.ID)
	if err != nil || deleted == nil {
		t.Fatalf("Delete: %v %v", deleted, err)
	}
	again, err := s.Delete(ctx, a.ID)
	if err != nil {
		t.Fatalf("Delete twice: %v", err)
	}
	if again != nil {
		t.Error("expected nil when deleting a missing article")
	}
}

func TestArticleStoreUpdateDuplicateName(t *testing.T) {
	db := testDB(t)
	s := NewArticleStore(db, NewCounterStore(db))

	a := newTestArticle(t, db, "Falda", 300)
	b := newTestArticle(t, db, "Abrigo", 1200)

	b.Name = strings.ToLower(a.Name)
	_, err := s.Update(context.Background(), b)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("rename to taken name: got %v, want Conflict", err)
	}
}

func TestArticleStoreListForClient(t *testing.T) {
	db := testDB(t)
	articles := NewArticleStore(db, NewCounterStore(db))
	clients := NewClientStore(db)
	ctx := context.Background()

	a := newTestArticle(t, db, "Cortina", 800)
	b := newTestArticle(t, db, "Edredón", 1500)
	c := newTestClient(t, db, "Hotel Sol")

	if _, err := clients.SetPrice(ctx, models.ClientPrice{ClientID: c.ID, ArticleID: a.ID, Price: 650}); err != nil {
		t.Fatalf("SetPrice: %v", err)
	}

	items, err := articles.ListForClient(ctx, c.ID)
	if err != nil {
		t.Fatalf("ListForClient: %v", err)
	}
	byID := make(map[uuid.UUID]models.ClientArticle, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	withOverride, ok := byID[a.ID]
	if !ok {
		t.Fatal("article with override missing from list")
	}
	if withOverride.ClientPrice == nil || *withOverride.ClientPrice != 650 {
		t.Errorf("client price: got %v, want 650", withOverride.ClientPrice)
	}
	if withOverride.EffectivePrice() != 650 {
		t.Errorf("effective price: got %d, want 650", withOverride.EffectivePrice())
	}

	plain, ok := byID[b.ID]
	if !ok {
		t.Fatal("article without override missing from list")
	}
	if plain.ClientPrice != nil {
		t.Errorf("client price: got %d, want nil", *plain.ClientPrice)
	}
	if plain.EffectivePrice() != 1500 {
		t.Errorf("effective price: got %d, want 1500", plain.EffectivePrice())
	}
}

func ptr[T any](v T) *T { return &v }
