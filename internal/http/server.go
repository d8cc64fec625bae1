// Package http exposes the tracker over a JSON API plus the embedded
// page shell. Derived views (summary, history) are memoized in LRU
// caches that every mutation purges.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"sync"
	"time"

	"onefifth/internal/cache"
	"onefifth/internal/core"
	"onefifth/internal/middleware/security"
	"onefifth/internal/middleware/trace"
	"onefifth/internal/services"
	appweb "onefifth/web"
)

// Server wraps http.Server with the ledger service and view caches.
type Server struct {
	http.Server
	ledger    *services.LedgerService
	templates *template.Template

	rateLimiter *rateLimiter

	summaryCache *cache.LRUCache[core.Summary]
	historyCache *cache.LRUCache[[]core.DayGroup]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer builds the server with routes, middleware and caches.
func NewServer(addr string, ledger *services.LedgerService, cacheTTL time.Duration) *Server {
	s := &Server{
		ledger:           ledger,
		rateLimiter:      newRateLimiter(),
		summaryCache:     cache.NewLRUCache[core.Summary](4, cacheTTL),
		historyCache:     cache.NewLRUCache[[]core.DayGroup](8, cacheTTL),
		stopCacheCleanup: make(chan struct{}),
	}

	s.templates = template.Must(template.ParseFS(appweb.TemplatesFS, "templates/*.html"))

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/transactions", s.handleTransactions)
	mux.HandleFunc("/api/transactions/", s.handleTransactionByID)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/settings", s.handleSettings)
	mux.HandleFunc("/api/settings/display", s.handleDisplayMode)

	staticFS, err := fs.Sub(appweb.StaticFS, "static")
	if err == nil {
		mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	}

	traceMW := trace.NewMiddleware(extractClientIP)
	securityMW := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	handler := traceMW.Middleware(
		securityMW.Middleware(
			s.rateLimiter.middleware(mux)))

	s.Server = http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	go s.startCacheCleanup()

	return s
}

// invalidateViews purges memoized derived views after a mutation.
func (s *Server) invalidateViews() {
	s.summaryCache.Purge()
	s.historyCache.Purge()
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.summaryCache.CleanExpired()
			s.historyCache.CleanExpired()
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops background goroutines and drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.rateLimiter.stop()
	})
	return s.Server.Shutdown(ctx)
}

// extractClientIP prefers proxy headers and falls back to the peer.
func extractClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// rateLimiter is a simple per-IP request counter over a sliding minute.
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	limit        int
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	windowStart time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		limit:       240,
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(extractClientIP(r)) {
			errorJSON(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, ok := rl.clients[ip]
	if !ok || now.Sub(client.windowStart) > time.Minute {
		rl.clients[ip] = &clientInfo{windowStart: now, requests: 1}
		return true
	}
	client.requests++
	return client.requests <= rl.limit
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.windowStart.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}
