package middleware

import (
	"bytes"
	"net/http"

	"go.uber.org/zap"

	"github.com/ejjays/assets-management/cache"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	ReplayedHeader       = "Idempotent-Replayed"
)

// Idempotency replays the stored 201 body for a repeated Idempotency-Key.
// Requests without the header pass straight through.
func Idempotency(store cache.ResponseStore, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyKeyHeader)
			if key == "" || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			body, ok, err := store.Get(r.Context(), key)
			if err != nil {
				log.Warn("idempotency lookup failed", zap.String("key", key), zap.Error(err))
			}
			if ok {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set(ReplayedHeader, "true")
				w.WriteHeader(http.StatusCreated)
				w.Write(body)
				return
			}

			rec := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status == http.StatusCreated {
				if err := store.Put(r.Context(), key, rec.body.Bytes()); err != nil {
					log.Warn("idempotency store failed", zap.String("key", key), zap.Error(err))
				}
			}
		})
	}
}

type recordingWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rw *recordingWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}
