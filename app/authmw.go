package app

import (
	"errors"
	"log"
	"net/http"

	"cart_ledger/ledger"
	"cart_ledger/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const AppSessionCookie = "cart_session"

const (
	callerKey    = "caller"
	sessionIDKey = "sessionID"
)

func AuthRequired(appSess *session.AppSessionStore, l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(AppSessionCookie)
		if err != nil || ck.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		as, err := appSess.Get(c.Request.Context(), ck.Value)
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				log.Printf("session lookup: %v", err)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
			return
		}

		// 确认账号仍存在，管理员标记以库里为准
		caller, err := l.Account(c.Request.Context(), as.AccountID)
		if err != nil {
			if errors.Is(err, ledger.ErrAuthenticationFailed) {
				_ = appSess.Delete(c.Request.Context(), ck.Value)
				c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, H{"error": "storage failure"})
			return
		}
		c.Set(callerKey, caller)
		c.Set(sessionIDKey, ck.Value)

		c.Next()
	}
}

// CurrentCaller 返回 AuthRequired 放进上下文的调用者
func CurrentCaller(c *gin.Context) (ledger.Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return ledger.Caller{}, false
	}
	caller, ok := v.(ledger.Caller)
	return caller, ok
}

func CurrentSessionID(c *gin.Context) string { return c.GetString(sessionIDKey) }

func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CurrentCaller(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		if !caller.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
