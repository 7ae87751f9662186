package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an IP's limiter survives without requests
const limiterIdleTTL = 10 * time.Minute

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter implements token bucket rate limiting per IP
type RateLimiter struct {
	limiters  map[string]*ipLimiter
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
	mu        sync.Mutex
}

// NewRateLimiter creates a limiter allowing perSecond requests per IP with the given burst
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters:  make(map[string]*ipLimiter),
		limit:     rate.Limit(perSecond),
		burst:     burst,
		idleTTL:   limiterIdleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// GetLimiter gets or creates a limiter for an IP address.
// Limiters idle for longer than the TTL are dropped on the next sweep.
func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.idleTTL {
		rl.sweep(now)
	}

	if entry, exists := rl.limiters[ip]; exists {
		entry.lastSeen = now
		return entry.limiter
	}

	limiter := rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters[ip] = &ipLimiter{limiter: limiter, lastSeen: now}
	return limiter
}

// Len returns the number of tracked IPs
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// sweep must be called with rl.mu held
func (rl *RateLimiter) sweep(now time.Time) {
	for ip, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) >= rl.idleTTL {
			delete(rl.limiters, ip)
		}
	}
	rl.lastSweep = now
}

// RateLimitMiddleware enforces rate limiting per IP
func RateLimitMiddleware(limiter *RateLimiter, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.GetLimiter(ip).Allow() {
			log.WithField("ip", ip).Warn("rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": 60,
			})
			return
		}
		c.Next()
	}
}

// SecurityHeadersMiddleware adds security headers to all responses
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}

// IPAllowList restricts access to configured IPs
type IPAllowList struct {
	ips map[string]bool
}

// NewIPAllowList creates an allow-list; an empty list allows everyone
func NewIPAllowList(ips []string) *IPAllowList {
	al := &IPAllowList{ips: make(map[string]bool)}
	for _, ip := range ips {
		al.ips[ip] = true
	}
	return al
}

// IsAllowed checks if an IP may use the API
func (al *IPAllowList) IsAllowed(ip string) bool {
	// Allow localhost always
	if ip == "127.0.0.1" || ip == "::1" || ip == "localhost" {
		return true
	}

	if len(al.ips) == 0 {
		return true
	}

	ipOnly, _, err := net.SplitHostPort(ip)
	if err != nil {
		ipOnly = ip
	}

	return al.ips[ipOnly]
}

// IPAllowListMiddleware rejects requests from IPs not on the list
func IPAllowListMiddleware(allowList *IPAllowList, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !allowList.IsAllowed(ip) {
			log.WithField("ip", ip).Warn("access denied for IP not on allow-list")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.Next()
	}
}

// RequestLogger logs each request through logrus instead of gin's default writer
func RequestLogger(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"ip":      c.ClientIP(),
			"latency": time.Since(start),
		}).Debug("request")
	}
}

// LogFailedAuth records a rejected authentication attempt
func LogFailedAuth(log *logrus.Entry, ip, reason string) {
	log.WithFields(logrus.Fields{"ip": ip, "reason": reason}).Warn("failed authentication")
}
