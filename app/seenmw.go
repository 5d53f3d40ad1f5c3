// app/seenmw.go
package app

import (
	"log"
	"strconv"
	"time"

	"cart_ledger/ledger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// TouchLastSeen 每个账号在 throttle 窗口内最多写一次 last_seen_at
func TouchLastSeen(l *ledger.Ledger, rdb *redis.Client, throttle time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CurrentCaller(c)
		if !ok || caller.AccountID == 0 {
			c.Next()
			return
		}

		key := "account:lastseen:" + strconv.FormatUint(uint64(caller.AccountID), 10)
		if ok, _ := rdb.SetNX(c, key, "1", throttle).Result(); ok {
			if err := l.TouchSeen(c, caller.AccountID); err != nil {
				log.Printf("touch seen %d: %v", caller.AccountID, err) // 不阻塞请求
			}
		}
		c.Next()
	}
}
