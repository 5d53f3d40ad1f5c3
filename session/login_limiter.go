package session

import (
	"context"
	"fmt"
	"time"

	"cart_ledger/ledger"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter counts failed logins per handle and locks the handle once
// max failures happen inside the window. max <= 0 disables it.
type LoginLimiter struct {
	rdb    *redis.Client
	max    int
	window time.Duration
}

func NewLoginLimiter(rdb *redis.Client, max int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{rdb: rdb, max: max, window: window}
}

func failKey(handle string) string {
	return fmt.Sprintf("app:login_fail:%s", ledger.NormalizeHandle(handle))
}

func (l *LoginLimiter) Locked(ctx context.Context, handle string) (bool, error) {
	if l.max <= 0 {
		return false, nil
	}
	n, err := l.rdb.Get(ctx, failKey(handle)).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return n >= l.max, nil
}

// Fail records one failure and reports the running count.
func (l *LoginLimiter) Fail(ctx context.Context, handle string) (int64, error) {
	if l.max <= 0 {
		return 0, nil
	}
	k := failKey(handle)
	n, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		// 第一次失败开始计时
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (l *LoginLimiter) Reset(ctx context.Context, handle string) error {
	return l.rdb.Del(ctx, failKey(handle)).Err()
}
