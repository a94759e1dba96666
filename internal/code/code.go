// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package code formats and parses the human-readable codes assigned to
// articles and orders. Each kind of code is backed by a named counter row.
package code

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind names a counter sequence. The string value is also the counter's
// primary key in the counters table.
type Kind string

const (
	Article Kind = "ARTICLE"
	Order   Kind = "ORDER"
)

// Width is the number of digits the counter value is zero-padded to.
const Width = 6

var prefixes = map[Kind]string{
	Article: "ART",
	Order:   "PED",
}

var (
	// ErrUnknownKind is returned for a kind without a registered prefix.
	ErrUnknownKind = errors.New("unknown code kind")
	// ErrMalformed is returned by Parse for strings that are not codes.
	ErrMalformed = errors.New("malformed code")
)

// Kinds returns every kind that has a prefix, in a stable order.
func Kinds() []Kind {
	return []Kind{Article, Order}
}

// Prefix returns the code prefix for a kind.
func Prefix(k Kind) (string, error) {
	p, ok := prefixes[k]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}
	return p, nil
}

// Format builds the code for counter value n.
// Example: Format(Order, 42) → "PED-000042"
func Format(k Kind, n int64) (string, error) {
	p, err := Prefix(k)
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", fmt.Errorf("format %s code: negative value %d", k, n)
	}
	return fmt.Sprintf("%s-%0*d", p, Width, n), nil
}

// Parse splits a code back into its kind and counter value.
// Values wider than Width are accepted since Format never truncates.
func Parse(s string) (Kind, int64, error) {
	prefix, digits, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok || len(digits) < Width {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	var kind Kind
	for k, p := range prefixes {
		if p == prefix {
			kind = k
			break
		}
	}
	if kind == "" {
		return "", 0, fmt.Errorf("%w: %q", ErrUnknownKind, prefix)
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n < 0 || strings.HasPrefix(digits, "+") {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return kind, n, nil
}
