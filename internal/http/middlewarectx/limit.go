package middlewarectx

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/zenpress/internal/http/response"
)

const (
	defaultIdleTTL    = 10 * time.Minute
	defaultMaxClients = 10000
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPLimiter хранит token bucket на каждый адрес клиента. Число адресов
// ограничено maxClients: при заполнении сначала удаляются клиенты, молчавшие
// дольше idleTTL, затем самый давний.
type IPLimiter struct {
	mu         sync.Mutex
	clients    map[string]*client
	rps        rate.Limit
	burst      int
	idleTTL    time.Duration
	maxClients int
	now        func() time.Time
}

// LimiterOption настраивает IPLimiter.
type LimiterOption func(*IPLimiter)

// WithIdleTTL задаёт, через сколько тишины клиент может быть забыт.
func WithIdleTTL(d time.Duration) LimiterOption {
	return func(l *IPLimiter) {
		l.idleTTL = d
	}
}

// WithMaxClients ограничивает число одновременно отслеживаемых адресов.
func WithMaxClients(n int) LimiterOption {
	return func(l *IPLimiter) {
		l.maxClients = n
	}
}

// WithLimiterClock подменяет источник времени.
func WithLimiterClock(now func() time.Time) LimiterOption {
	return func(l *IPLimiter) {
		l.now = now
	}
}

// NewIPLimiter создаёт лимитер с rps запросов в секунду и запасом burst.
func NewIPLimiter(rps float64, burst int, opts ...LimiterOption) *IPLimiter {
	l := &IPLimiter{
		clients:    make(map[string]*client),
		rps:        rate.Limit(rps),
		burst:      burst,
		idleTTL:    defaultIdleTTL,
		maxClients: defaultMaxClients,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.maxClients < 1 {
		l.maxClients = 1
	}
	return l
}

// Allow расходует токен клиента key.
func (l *IPLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, ok := l.clients[key]
	if !ok {
		if len(l.clients) >= l.maxClients {
			l.evict(now)
		}
		c = &client{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// evict освобождает место под нового клиента. Вызывается под l.mu.
func (l *IPLimiter) evict(now time.Time) {
	var (
		oldestKey  string
		oldestSeen time.Time
	)
	for key, c := range l.clients {
		if now.Sub(c.lastSeen) > l.idleTTL {
			delete(l.clients, key)
			continue
		}
		if oldestKey == "" || c.lastSeen.Before(oldestSeen) {
			oldestKey, oldestSeen = key, c.lastSeen
		}
	}
	if len(l.clients) >= l.maxClients && oldestKey != "" {
		delete(l.clients, oldestKey)
	}
}

// Len число отслеживаемых адресов.
func (l *IPLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// clientIP адрес TCP-соединения. Forwarded-заголовки клиент может подделать,
// поэтому они не учитываются.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware отвечает 429, когда клиент исчерпал свой лимит.
func RateLimitMiddleware(limiter *IPLimiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !limiter.Allow(ip) {
				log.Warn("too many requests", slog.String("ip", ip), slog.String("path", r.URL.Path))
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
