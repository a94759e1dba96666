// Package apperr defines the error taxonomy shared by the stores and the
// HTTP layer, and the JSON envelope errors are rendered into.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindRateLimited
)

// Machine-readable codes sent in the envelope's code field.
const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeNotFound    = "NOT_FOUND"
	CodeConflict    = "CONFLICT"
	CodeRateLimited = "TOO_MANY_REQUESTS"
	CodeInternal    = "INTERNAL_ERROR"
)

// PostgreSQL SQLSTATE codes the stores translate.
const (
	UniqueViolation     = "23505"
	ForeignKeyViolation = "23503"
	CheckViolation      = "23514"
	NotNullViolation    = "23502"
	InvalidTextRepr     = "22P02"
	NumericOutOfRange   = "22003"
)

// internalMessage is the only text an unclassified error ever exposes.
const internalMessage = "Error interno del servidor"

// Error is a classified application error. Message is human-readable and
// safe to show to users; Err carries the underlying cause for logs.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status maps the error kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Validation reports malformed or missing input.
func Validation(message string, details any) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Message: message, Details: details}
}

// NotFound reports that a referenced entity does not exist.
func NotFound(message string, details any) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: message, Details: details}
}

// Conflict reports a uniqueness or referential conflict.
func Conflict(message string, details any) *Error {
	return &Error{Kind: KindConflict, Code: CodeConflict, Message: message, Details: details}
}

// RateLimited reports a client over its request budget.
func RateLimited() *Error {
	return &Error{Kind: KindRateLimited, Code: CodeRateLimited, Message: "Demasiadas solicitudes, intente más tarde"}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, k Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == k
}

// PgCode returns the SQLSTATE of a PostgreSQL error in err's chain, or "".
func PgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// FromPg classifies constraint violations into domain errors so they never
// surface as 500s. Other errors are wrapped with op and stay internal.
func FromPg(err error, op string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	details := map[string]string{}
	if pgErr.ConstraintName != "" {
		details["constraint"] = pgErr.ConstraintName
	}
	switch pgErr.Code {
	case UniqueViolation:
		e := Conflict("Ya existe un registro con esos datos", details)
		e.Err = err
		return e
	case ForeignKeyViolation:
		e := Conflict("El registro está relacionado con otros datos", details)
		e.Err = err
		return e
	case CheckViolation, NotNullViolation, InvalidTextRepr, NumericOutOfRange:
		e := Validation("Datos inválidos", details)
		e.Err = err
		return e
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Envelope is the JSON body of every error response.
type Envelope struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// Write renders err as an error envelope. Unclassified errors are logged
// and replaced with a generic 500 so internals never leak.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := As(err)
	if !ok || e.Kind == KindInternal {
		slog.Error("unhandled error",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
		)
		WriteInternal(w)
		return
	}
	writeEnvelope(w, e.Status(), Envelope{Message: e.Message, Code: e.Code, Details: e.Details})
}

// WriteInternal sends the generic 500 envelope without logging. Callers
// that reach it have already logged the cause.
func WriteInternal(w http.ResponseWriter) {
	writeEnvelope(w, http.StatusInternalServerError, Envelope{Message: internalMessage, Code: CodeInternal})
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Warn("write error envelope", "error", err)
	}
}
