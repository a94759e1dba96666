package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"

	"lavanderia/internal/apperr"
	"lavanderia/internal/cache"
)

// IdempotencyHeader carries the client-chosen key of a retryable request.
const IdempotencyHeader = "Idempotency-Key"

// maxIdempotencyKeyLen bounds the key so it cannot bloat Valkey keys.
const maxIdempotencyKeyLen = 255

// maxHashedBody is how much of the request body is fingerprinted: the
// handlers' body limit plus one byte.
const maxHashedBody = 1<<20 + 1

// ResponseStore records and replays responses by idempotency key.
type ResponseStore interface {
	Get(ctx context.Context, key string) (*cache.Response, bool, error)
	Claim(ctx context.Context, key string) (bool, error)
	Save(ctx context.Context, key string, resp cache.Response) error
	Release(ctx context.Context, key string)
}

// recorder tees the response into a buffer while passing it through.
type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rec *recorder) WriteHeader(code int) {
	if rec.status == 0 {
		rec.status = code
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *recorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	rec.body.Write(b)
	return rec.ResponseWriter.Write(b)
}

// Idempotency replays the first response produced for an Idempotency-Key
// header. Requests without the header pass straight through, as does
// everything when store is nil. A key still in flight answers 409, as
// does a key reused with a different request body. Responses with a 5xx
// status are not recorded so the client may retry.
func Idempotency(store ResponseStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxIdempotencyKeyLen {
				apperr.Write(w, r, apperr.Validation(
					"Idempotency-Key demasiado larga",
					map[string]int{"maxLength": maxIdempotencyKeyLen},
				))
				return
			}
			hash, err := hashBody(r)
			if err != nil {
				apperr.Write(w, r, apperr.Validation("No se pudo leer el cuerpo de la solicitud", nil))
				return
			}
			// Keys are scoped to the route so one key cannot replay
			// another endpoint's response.
			scoped := r.Method + " " + r.URL.Path + " " + key
			ctx := r.Context()

			if resp, ok, err := store.Get(ctx, scoped); err != nil {
				slog.Warn("idempotency lookup failed", "error", err)
			} else if ok {
				replay(w, r, key, hash, resp)
				return
			}

			claimed, err := store.Claim(ctx, scoped)
			if err != nil {
				// Valkey trouble must not block order intake.
				slog.Warn("idempotency claim failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !claimed {
				apperr.Write(w, r, apperr.Conflict(
					"Ya hay una solicitud en curso con esa Idempotency-Key",
					map[string]string{"idempotencyKey": key},
				))
				return
			}
			defer store.Release(context.WithoutCancel(ctx), scoped)

			// The previous holder may have saved its response between the
			// lookup above and the claim.
			if resp, ok, err := store.Get(ctx, scoped); err != nil {
				slog.Warn("idempotency lookup failed", "error", err)
			} else if ok {
				replay(w, r, key, hash, resp)
				return
			}

			rec := &recorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			if rec.status == 0 || rec.status >= http.StatusInternalServerError {
				return
			}
			err = store.Save(context.WithoutCancel(ctx), scoped, cache.Response{
				Status:      rec.status,
				ContentType: rec.Header().Get("Content-Type"),
				Body:        rec.body.Bytes(),
				BodyHash:    hash,
			})
			if err != nil {
				slog.Warn("idempotency save failed", "error", err)
			}
		})
	}
}

// hashBody fingerprints the request body and puts the bytes back so the
// handler still reads the whole payload.
func hashBody(r *http.Request) (string, error) {
	if r.Body == nil || r.Body == http.NoBody {
		sum := sha256.Sum256(nil)
		return hex.EncodeToString(sum[:]), nil
	}
	buf, err := io.ReadAll(io.LimitReader(r.Body, maxHashedBody))
	if err != nil {
		return "", err
	}
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(buf), r.Body), r.Body}
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:]), nil
}

// replay writes a recorded response, or a conflict when the key was first
// used with a different body.
func replay(w http.ResponseWriter, r *http.Request, key, hash string, resp *cache.Response) {
	if resp.BodyHash != "" && resp.BodyHash != hash {
		apperr.Write(w, r, apperr.Conflict(
			"La Idempotency-Key ya se usó con otro contenido",
			map[string]string{"idempotencyKey": key},
		))
		return
	}
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(resp.Status)
	w.Write(resp.Body)
}
