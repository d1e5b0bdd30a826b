package main

import (
	"context"
	"net"
	"net/http"
	"sync"

	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

type Middleware func(http.Handler) http.Handler

func useMiddleware(s *http.ServeMux, mws ...Middleware) http.Handler {
	var h http.Handler = s
	for _, mw := range mws {
		h = mw(h)
	}
	return h
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *loggingResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func loggingMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Infof("--> %s %s", r.Method, r.URL.String())
		wrapped := &loggingResponseWriter{w, http.StatusOK}
		h.ServeHTTP(wrapped, r)
		code := wrapped.statusCode
		log.Infof("<-- %d %s", code, http.StatusText(code))
	})
}

func corsMiddleware(h http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(h)
}

type ctxKey int

const ctxPlayerClaims ctxKey = iota

func authMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("auth")
		if err != nil {
			h.ServeHTTP(w, r)
			return
		}
		claims, err := parsePlayerToken(cookie.Value)
		if err != nil {
			log.Debug("stale auth cookie: ", err)
			clearPlayerCookie(w)
			h.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), ctxPlayerClaims, claims)
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Per-IP token buckets. Stale entries are dropped wholesale once the
// map grows past a threshold rather than tracking last access.
type rateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newRateLimiter(rps float64, burst int) *rateLimiter {
	return &rateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if len(rl.limiters) > 10000 {
		rl.limiters = make(map[string]*rate.Limiter)
	}
	limiter, ok := rl.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rl.rps, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter.Allow()
}

func rateLimitMiddleware(h http.Handler) http.Handler {
	if config.RateLimit.Rps <= 0 {
		return h
	}
	rl := newRateLimiter(config.RateLimit.Rps, max(config.RateLimit.Burst, 1))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !rl.allow(ip) {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		h.ServeHTTP(w, r)
	})
}
