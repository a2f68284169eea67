package embedding

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestLocalLease(t *testing.T) {
	release, err := LocalLease{}.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	release()
}

func TestRenewInterval(t *testing.T) {
	if got := renewInterval(9 * time.Second); got != 3*time.Second {
		t.Fatalf("renewInterval(9s)=%s", got)
	}
	if got := renewInterval(2 * time.Nanosecond); got != 2*time.Nanosecond {
		t.Fatalf("renewInterval(2ns)=%s", got)
	}
}

func TestRedisLeaseOutlivesTTLWhileHeld(t *testing.T) {
	addr := os.Getenv("STOPLIGHT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("STOPLIGHT_TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	key := "stoplight:test:" + t.Name()
	a := NewRedisLease(rdb, key, 300*time.Millisecond, 10*time.Millisecond, nil)
	b := NewRedisLease(rdb, key, 300*time.Millisecond, 10*time.Millisecond, nil)

	release, err := a.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire a: %v", err)
	}
	time.Sleep(time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := b.Acquire(ctx); err == nil {
		t.Fatal("lease expired while its holder was still running")
	}
	release()

	if n, err := rdb.Exists(context.Background(), key).Result(); err != nil || n != 0 {
		t.Fatalf("key left behind after release: n=%d err=%v", n, err)
	}
}

func TestRedisLeaseSerializes(t *testing.T) {
	addr := os.Getenv("STOPLIGHT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("STOPLIGHT_TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	key := "stoplight:test:" + t.Name()
	a := NewRedisLease(rdb, key, 5*time.Second, 10*time.Millisecond, nil)
	b := NewRedisLease(rdb, key, 5*time.Second, 10*time.Millisecond, nil)

	release, err := a.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire a: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := b.Acquire(ctx); err == nil {
		t.Fatal("second holder acquired a held lease")
	}
	release()

	releaseB, err := b.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire b after release: %v", err)
	}
	releaseB()
}
