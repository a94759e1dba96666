package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is a laundry customer. Address and Email are optional.
type Client struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	ContactName string        `json:"contactName"`
	Address     *string       `json:"address"`
	Phone       string        `json:"phone"`
	Email       *string       `json:"email"`
	Category    string        `json:"category"`
	Prices      []ClientPrice `json:"prices,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// ClientPrice is a per-client override of an article's base price.
type ClientPrice struct {
	ClientID    uuid.UUID `json:"clientId"`
	ArticleID   uuid.UUID `json:"articleId"`
	ArticleName string    `json:"articleName,omitempty"`
	Price       int64     `json:"price"`
}

// ClientPatch holds the fields of a partial client update.
type ClientPatch struct {
	Name        *string
	ContactName *string
	Address     *string
	Phone       *string
	Email       *string
	Category    *string
}

// Apply returns a copy of c with the patch applied and whether anything
// changed. An empty Address or Email clears the field.
func (c Client) Apply(p ClientPatch) (Client, bool) {
	changed := false
	setStr := func(dst *string, v *string) {
		if v != nil && *v != *dst {
			*dst = *v
			changed = true
		}
	}
	setOpt := func(dst **string, v *string) {
		if v == nil {
			return
		}
		if *v == "" {
			if *dst != nil {
				*dst = nil
				changed = true
			}
			return
		}
		if *dst == nil || **dst != *v {
			s := *v
			*dst = &s
			changed = true
		}
	}

	setStr(&c.Name, p.Name)
	setStr(&c.ContactName, p.ContactName)
	setStr(&c.Phone, p.Phone)
	setStr(&c.Category, p.Category)
	setOpt(&c.Address, p.Address)
	setOpt(&c.Email, p.Email)
	return c, changed
}
