package middleware

import (
	contextPkg "ExpenseChat/pkg/context"
	"ExpenseChat/pkg/response"
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL       = 10 * time.Minute
	limiterSweepInterval = time.Minute
)

var (
	ErrTooManyRequests = response.NewError(http.StatusTooManyRequests, "too many requests")
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter hands out one token bucket per client key. Buckets untouched
// for limiterIdleTTL are dropped on the next sweep.
type rateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	rate      rate.Limit
	burstSize int
	lastSweep time.Time
	now       func() time.Time
}

func newRateLimiter(reqRate rate.Limit, burstSize int) *rateLimiter {
	return &rateLimiter{
		clients:   make(map[string]*clientLimiter),
		rate:      reqRate,
		burstSize: burstSize,
		now:       time.Now,
	}
}

func (r *rateLimiter) allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Sub(r.lastSweep) >= limiterSweepInterval {
		for k, c := range r.clients {
			if now.Sub(c.lastSeen) > limiterIdleTTL {
				delete(r.clients, k)
			}
		}
		r.lastSweep = now
	}

	client, ok := r.clients[key]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(r.rate, r.burstSize)}
		r.clients[key] = client
	}
	client.lastSeen = now

	return client.limiter.AllowN(now, 1)
}

func (r *rateLimiter) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// limiterKey scopes a bucket to the ledger owner and the client IP. Malformed
// user ids fall back to the default owner so they cannot mint new buckets.
func limiterKey(ctx *fiber.Ctx) string {
	userID := ctx.Get(UserIDHeader)
	if userID == "" || !userIDPattern.MatchString(userID) {
		userID = contextPkg.DefaultUserID
	}
	return userID + "|" + ctx.IP()
}

// NewRateLimiter throttles each user and IP pair separately. Chat turns and
// dashboard reads share the same limit.
func (m *middleware) NewRateLimiter(ctx *fiber.Ctx) error {
	key := limiterKey(ctx)

	if !m.rateLimitter.allow(key) {
		m.log.WithFields(logrus.Fields{
			"request_id": m.GetRequestID(ctx),
			"client":     key,
			"path":       ctx.Path(),
		}).Warn("Too many requests")
		ctx.Set(fiber.HeaderRetryAfter, "1")
		return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": ErrTooManyRequests.Error(),
		})
	}

	return ctx.Next()
}
