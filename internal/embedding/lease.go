package embedding

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yungbote/stoplight-backend/internal/platform/logger"
)

// Lease extends the execution slot beyond one process. Acquire blocks until
// the slot is held; the returned func gives it back.
type Lease interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// LocalLease is the in-process default: the executor's worker is already the
// only holder.
type LocalLease struct{}

func (LocalLease) Acquire(context.Context) (func(), error) { return func() {}, nil }

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript extends the key's expiry only if it still holds our token.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisLease serializes computations across every process sharing one Redis.
// The key expires after TTL so a crashed holder cannot wedge the slot; a live
// holder renews it every TTL/3 until release.
type RedisLease struct {
	rdb  redis.UniversalClient
	key  string
	ttl  time.Duration
	poll time.Duration
	log  *logger.Logger
}

func NewRedisLease(rdb redis.UniversalClient, key string, ttl, poll time.Duration, log *logger.Logger) *RedisLease {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if poll <= 0 {
		poll = 250 * time.Millisecond
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RedisLease{rdb: rdb, key: key, ttl: ttl, poll: poll, log: log.With("component", "RedisLease", "key", key)}
}

func (l *RedisLease) Acquire(ctx context.Context) (func(), error) {
	if l.rdb == nil {
		return nil, errors.New("redis lease: nil client")
	}
	token := uuid.NewString()
	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()
	waited := time.Now()
	for {
		ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			l.log.Debug("slot lease acquired", "wait_ms", time.Since(waited).Milliseconds())
			stop := l.keepAlive(token)
			return func() {
				stop()
				l.release(token)
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// keepAlive renews the key until the returned func is called.
func (l *RedisLease) keepAlive(token string) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(renewInterval(l.ttl))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			n, err := renewScript.Run(ctx, l.rdb, []string{l.key}, token, l.ttl.Milliseconds()).Int()
			switch {
			case ctx.Err() != nil:
				return
			case err != nil:
				l.log.Warn("slot lease renewal failed", "error", err)
			case n == 0:
				l.log.Warn("slot lease lost while held")
				return
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

func renewInterval(ttl time.Duration) time.Duration {
	if d := ttl / 3; d > 0 {
		return d
	}
	return ttl
}

func (l *RedisLease) release(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, l.rdb, []string{l.key}, token).Err(); err != nil {
		l.log.Warn("slot lease release failed", "error", err)
	}
}
