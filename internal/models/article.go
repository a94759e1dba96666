// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Article is a catalog entry. Names are unique ignoring case.
type Article struct {
	ID           uuid.UUID `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	CategoryName string    `json:"categoryName"`
	BasePrice    int64     `json:"basePrice"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ClientArticle is an article as seen by one client. ClientPrice is nil
// when the client has no override for the article.
type ClientArticle struct {
	Article
	ClientPrice *int64 `json:"clientPrice"`
}

// EffectivePrice returns the override price if present, else the base price.
func (ca ClientArticle) EffectivePrice() int64 {
	if ca.ClientPrice != nil {
		return *ca.ClientPrice
	}
	return ca.BasePrice
}

// ArticlePatch holds the fields of a partial article update. Nil fields
// are left untouched.
type ArticlePatch struct {
	Name         *string
	CategoryName *string
	BasePrice    *int64
}

// Apply returns a copy of a with the patch applied and whether any field
// actually changed.
func (a Article) Apply(p ArticlePatch) (Article, bool) {
	changed := false
	if p.Name != nil && *p.Name != a.Name {
		a.Name = *p.Name
		changed = true
	}
	if p.CategoryName != nil && *p.CategoryName != a.CategoryName {
		a.CategoryName = *p.CategoryName
		changed = true
	}
	if p.BasePrice != nil && *p.BasePrice != a.BasePrice {
		a.BasePrice = *p.BasePrice
		changed = true
	}
	return a, changed
}
