package server

import (
	"expvar"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/felixge/httpsnoop"
	"golang.org/x/time/rate"
)

// Published once per process; expvar panics on duplicate names.
var (
	totalRequestsReceived     = expvar.NewInt("epacompare_requests_received")
	totalResponsesSent        = expvar.NewInt("epacompare_responses_sent")
	totalProcessingTimeMicros = expvar.NewInt("epacompare_processing_time_us")
	totalResponsesByStatus    = expvar.NewMap("epacompare_responses_by_status")
	totalRateLimited          = expvar.NewInt("epacompare_rate_limited")
)

// metrics records request counts, latency and response codes in expvar.
func metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		totalRequestsReceived.Add(1)
		m := httpsnoop.CaptureMetrics(next, w, r)
		totalResponsesSent.Add(1)
		totalProcessingTimeMicros.Add(m.Duration.Microseconds())
		totalResponsesByStatus.Add(strconv.Itoa(m.Code), 1)
	})
}

// clientLimiter hands out one token bucket per client IP. Clients idle for
// longer than idleTimeout are forgotten.
type clientLimiter struct {
	rps   rate.Limit
	burst int

	mu        sync.Mutex
	clients   map[string]*limitedClient
	lastPrune time.Time
	now       func() time.Time
}

type limitedClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const idleTimeout = 3 * time.Minute

func newClientLimiter(rps float64, burst int) *clientLimiter {
	if burst < 1 {
		burst = 1
	}
	return &clientLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		clients: make(map[string]*limitedClient),
		now:     time.Now,
	}
}

func (l *clientLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastPrune) > time.Minute {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > idleTimeout {
				delete(l.clients, k)
			}
		}
		l.lastPrune = now
	}

	c, ok := l.clients[ip]
	if !ok {
		c = &limitedClient{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// rateLimit rejects clients that exceed their token bucket with 429.
func (l *clientLimiter) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !l.allow(ip) {
			totalRateLimited.Add(1)
			w.Header().Set("Retry-After", "1")
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
