package models

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }
func i64Ptr(n int64) *int64   { return &n }

func TestArticleApply(t *testing.T) {
	base := Article{Name: "Camisa", CategoryName: "Ropa", BasePrice: 100}

	tests := []struct {
		name        string
		patch       ArticlePatch
		wantChanged bool
		want        Article
	}{
		{
			name:        "empty patch",
			patch:       ArticlePatch{},
			wantChanged: false,
			want:        base,
		},
		{
			name:        "identical values",
			patch:       ArticlePatch{Name: strPtr("Camisa"), CategoryName: strPtr("Ropa"), BasePrice: i64Ptr(100)},
			wantChanged: false,
			want:        base,
		},
		{
			name:        "price change",
			patch:       ArticlePatch{BasePrice: i64Ptr(120)},
			wantChanged: true,
			want:        Article{Name: "Camisa", CategoryName: "Ropa", BasePrice: 120},
		},
		{
			name:        "case-only rename is a change",
			patch:       ArticlePatch{Name: strPtr("CAMISA")},
			wantChanged: true,
			want:        Article{Name: "CAMISA", CategoryName: "Ropa", BasePrice: 100},
		},
		{
			name:        "price to zero",
			patch:       ArticlePatch{BasePrice: i64Ptr(0)},
			wantChanged: true,
			want:        Article{Name: "Camisa", CategoryName: "Ropa", BasePrice: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := base.Apply(tt.patch)
			if changed != tt.wantChanged {
				t.Errorf("changed = %v, want %v", changed, tt.wantChanged)
			}
			if got != tt.want {
				t.Errorf("Apply() = %+v, want %+v", got, tt.want)
			}
		})
	}

	if base.BasePrice != 100 || base.Name != "Camisa" {
		t.Error("Apply must not mutate the receiver")
	}
}

func TestClientApply(t *testing.T) {
	base := Client{Name: "Hotel Sol", ContactName: "Ana", Phone: "600", Address: strPtr("Calle 1"), Category: "HOTEL"}

	t.Run("same values", func(t *testing.T) {
		_, changed := base.Apply(ClientPatch{Name: strPtr("Hotel Sol"), Address: strPtr("Calle 1")})
		if changed {
			t.Error("identical patch should report no change")
		}
	})

	t.Run("clear optional field", func(t *testing.T) {
		got, changed := base.Apply(ClientPatch{Address: strPtr("")})
		if !changed {
			t.Error("clearing address should be a change")
		}
		if got.Address != nil {
			t.Errorf("Address = %v, want nil", *got.Address)
		}
		if base.Address == nil {
			t.Error("receiver address must be untouched")
		}
	})

	t.Run("clear already empty field", func(t *testing.T) {
		_, changed := base.Apply(ClientPatch{Email: strPtr("")})
		if changed {
			t.Error("clearing a nil email is not a change")
		}
	})

	t.Run("set optional field", func(t *testing.T) {
		got, changed := base.Apply(ClientPatch{Email: strPtr("ana@sol.es")})
		if !changed || got.Email == nil || *got.Email != "ana@sol.es" {
			t.Errorf("email not applied: changed=%v email=%v", changed, got.Email)
		}
	})
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range OrderStatuses {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []OrderStatus{"", "pending", "DONE", "IN PROGRESS"} {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

// TestMonthBounds checks the half-open UTC month window used by client
// stats, including the edges on either side of a month change.
func TestMonthBounds(t *testing.T) {
	now := time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)
	start, end := MonthBounds(now)

	wantStart := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) || !end.Equal(wantEnd) {
		t.Fatalf("MonthBounds = [%s, %s), want [%s, %s)", start, end, wantStart, wantEnd)
	}

	inWindow := func(ts time.Time) bool { return !ts.Before(start) && ts.Before(end) }

	lastOfPrev := time.Date(2026, time.February, 28, 23, 59, 59, 0, time.UTC)
	firstOfCur := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	firstOfNext := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)

	if inWindow(lastOfPrev) {
		t.Error("last day of previous month must be excluded")
	}
	if !inWindow(firstOfCur) {
		t.Error("first day of current month must be included")
	}
	if inWindow(firstOfNext) {
		t.Error("first day of next month must be excluded")
	}

	t.Run("non-UTC input is normalised", func(t *testing.T) {
		loc := time.FixedZone("UTC-5", -5*3600)
		// 2026-03-31 22:00 at UTC-5 is already April in UTC.
		s, _ := MonthBounds(time.Date(2026, time.March, 31, 22, 0, 0, 0, loc))
		if s.Month() != time.April {
			t.Errorf("start month = %s, want April", s.Month())
		}
	})

	t.Run("december rolls the year", func(t *testing.T) {
		_, e := MonthBounds(time.Date(2026, time.December, 31, 23, 0, 0, 0, time.UTC))
		if e.Year() != 2027 || e.Month() != time.January {
			t.Errorf("end = %s, want 2027-01-01", e)
		}
	})
}
