// Package guardrails provides the per-sender admission lock
//
// The lock is held from the rate-limit check until the conversation claim commits, so
// two triggers from one sender cannot both pass admission. Redis backs it when several
// replicas share a gateway; a process-local lock is used otherwise.
package guardrails

import (
	"context"
	"sync"
	"time"

	perr "triggerbot/internal/platform/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrHeld signals another admission for the sender is in flight
var ErrHeld = perr.New(perr.ErrorCodeConflict, "admission lock held")

// Lock takes and releases per-sender admission locks
type Lock interface {
	// Acquire returns a release func, or ErrHeld when the sender is locked
	Acquire(ctx context.Context, sender string) (func(), error)
}

// Local is an in-process keyed lock
type Local struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocal constructs an empty local lock
func NewLocal() *Local { return &Local{held: map[string]struct{}{}} }

// Acquire implements Lock
func (l *Local) Acquire(_ context.Context, sender string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[sender]; ok {
		return nil, ErrHeld
	}
	l.held[sender] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, sender)
			l.mu.Unlock()
		})
	}, nil
}

// releaseScript deletes the key only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Redis is a SET NX PX lock with token-checked release
type Redis struct {
	RDS    redis.UniversalClient
	Prefix string
	TTL    time.Duration
	token  func() string
}

// NewRedis constructs a redis lock; ttl bounds how long a crashed holder blocks a sender
func NewRedis(rds redis.UniversalClient, prefix string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if prefix == "" {
		prefix = "triggerbot:admit:"
	}
	return &Redis{RDS: rds, Prefix: prefix, TTL: ttl, token: uuid.NewString}
}

// Acquire implements Lock
func (r *Redis) Acquire(ctx context.Context, sender string) (func(), error) {
	key, tok := r.Prefix+sender, r.token()
	ok, err := r.RDS.SetNX(ctx, key, tok, r.TTL).Result()
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "admission lock")
	}
	if !ok {
		return nil, ErrHeld
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = releaseScript.Run(ctx, r.RDS, []string{key}, tok).Err()
		})
	}, nil
}
