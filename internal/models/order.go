// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the processing state of an order. Changes are plain
// overwrites; there is no enforced transition graph.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// OrderStatuses lists every valid status.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusInProgress,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// OrderArticle is the snapshot of an article embedded in an order at
// creation time. It is a value copy, not a reference: catalog edits and
// deletions never reach it.
type OrderArticle struct {
	ArticleID uuid.UUID `json:"articleId"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	UnitPrice int64     `json:"unitPrice"`
	Quantity  int       `json:"quantity"`
}

// Subtotal is the line total.
func (l OrderArticle) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Order is a persisted laundry order.
type Order struct {
	ID            uuid.UUID      `json:"id"`
	Code          string         `json:"code"`
	ClientID      uuid.UUID      `json:"clientId"`
	Status        OrderStatus    `json:"status"`
	Observation   *string        `json:"observation"`
	Articles      []OrderArticle `json:"articles"`
	ArticlesCount int            `json:"articlesCount"`
	TotalPrice    int64          `json:"totalPrice"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// OrderSummary is the list view of an order; it leaves out the article
// snapshot, observation, and timestamps.
type OrderSummary struct {
	ID            uuid.UUID   `json:"id"`
	Code          string      `json:"code"`
	ClientID      uuid.UUID   `json:"clientId"`
	ClientName    string      `json:"clientName"`
	Status        OrderStatus `json:"status"`
	ArticlesCount int         `json:"articlesCount"`
	TotalPrice    int64       `json:"totalPrice"`
}

// OrderLine is one requested (article, quantity) pair.
type OrderLine struct {
	ArticleID uuid.UUID
	Quantity  int
}

// ClientStats aggregates a client's orders.
type ClientStats struct {
	TotalOrdersCount      int   `json:"totalOrdersCount"`
	OrdersInProgressCount int   `json:"ordersInProgressCount"`
	OrdersCompletedCount  int   `json:"ordersCompletedCount"`
	TotalOrdersMonthPrice int64 `json:"totalOrdersMonthPrice"`
}

// MonthBounds returns the UTC calendar month containing now as a half-open
// interval [start, end).
func MonthBounds(now time.Time) (start, end time.Time) {
	now = now.UTC()
	start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, 0)
	return start, end
}
