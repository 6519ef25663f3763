package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"

	"github.com/ejjays/assets-management/utils"
)

// RateLimitMessage is returned to callers that have used up their quota.
const RateLimitMessage = "Too many requests. Please try again later."

// NewLimiter builds a per-IP limiter from a formatted rate such as "20-M".
// A nil client keeps the counters in process memory.
func NewLimiter(formatted string, client *redis.Client) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("parse rate %q: %w", formatted, err)
	}

	var store limiter.Store
	if client != nil {
		store, err = sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: "assets:ratelimit"})
		if err != nil {
			return nil, fmt.Errorf("create redis limiter store: %w", err)
		}
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: "assets:ratelimit"})
	}
	return limiter.New(store, rate), nil
}

// RateLimit answers 429 once the caller's IP has used up its quota.
func RateLimit(l *limiter.Limiter, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := l.GetIPKey(r)

			lctx, err := l.Get(r.Context(), ip)
			if err != nil {
				// a broken limiter store should not take chat down
				log.Error("failed to get rate limit context", zap.String("ip", ip), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

			if lctx.Reached {
				log.Warn("rate limit exceeded", zap.String("ip", ip), zap.Int64("limit", lctx.Limit))
				utils.RespondWithError(w, http.StatusTooManyRequests, RateLimitMessage)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

