// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the JSON HTTP handlers of the laundry API.
// Handlers are grouped by resource (articles, clients, orders) and receive
// their dependencies through the API struct.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lavanderia/internal/apperr"
	"lavanderia/internal/store"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// API groups all HTTP handlers and their dependencies.
type API struct {
	articles *store.ArticleStore
	clients  *store.ClientStore
	orders   *store.OrderStore

	// now is the clock used for the monthly stats window.
	now func() time.Time
}

// New creates the API handler group.
func New(articles *store.ArticleStore, clients *store.ClientStore, orders *store.OrderStore) *API {
	return &API{
		articles: articles,
		clients:  clients,
		orders:   orders,
		now:      time.Now,
	}
}

// Health reports that the process is serving.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NotFound answers unknown routes with the error envelope.
func NotFound(w http.ResponseWriter, r *http.Request) {
	apperr.Write(w, r, apperr.NotFound("Ruta no encontrada", map[string]string{"path": r.URL.Path}))
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write json response", "error", err)
	}
}

// respond writes the {message, <key>: value} body every resource endpoint uses.
func respond(w http.ResponseWriter, status int, message, key string, value any) {
	writeJSON(w, status, map[string]any{"message": message, key: value})
}

// decodeJSON reads a single JSON object from the request body into dst.
// Malformed bodies are reported as validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return apperr.Validation("El cuerpo de la solicitud está vacío", nil)
		case errors.As(err, &maxErr):
			return apperr.Validation("El cuerpo de la solicitud es demasiado grande", map[string]int64{"maxBytes": maxErr.Limit})
		case errors.As(err, &typeErr):
			return apperr.Validation(
				fmt.Sprintf("Tipo inválido para el campo %q", typeErr.Field),
				map[string]string{"field": typeErr.Field, "expected": typeErr.Type.String()},
			)
		default:
			return apperr.Validation("JSON mal formado", map[string]string{"error": err.Error()})
		}
	}
	if dec.More() {
		return apperr.Validation("El cuerpo debe contener un único objeto JSON", nil)
	}
	return nil
}

// pathID parses the named URL parameter as a UUID.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation("Identificador inválido", map[string]string{name: raw})
	}
	return id, nil
}
