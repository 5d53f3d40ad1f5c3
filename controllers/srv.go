// controllers/srv.go
package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cart_ledger/app"
	"cart_ledger/config"
	"cart_ledger/ledger"
	"cart_ledger/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Srv struct {
	Ledger  *ledger.Ledger
	AppSess *session.AppSessionStore
	Limiter *session.LoginLimiter
	Cfg     config.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Ledger:  a.Ledger,
		AppSess: a.AppSessions(),
		Limiter: a.Limiter(),
		Cfg:     a.Config,
	}
}

// --- helpers ---

// 统一设置业务会话 Cookie；maxAge < 0 表示删除
func (s *Srv) setAppCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	ma := int(maxAge / time.Second)
	if maxAge < 0 {
		ma = -1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.Cfg.SecureCookies(),
		MaxAge:   ma,
	})
}

// 登录成功：创建会话并下发 Cookie
func (s *Srv) issueSession(ctx context.Context, w http.ResponseWriter, caller ledger.Caller) error {
	id := uuid.NewString()
	if err := s.AppSess.Create(ctx, id, caller.AccountID); err != nil {
		return err
	}
	s.setAppCookie(w, id, s.AppSess.TTL())
	return nil
}

func statusOf(kind ledger.Kind) int {
	switch kind {
	case ledger.KindInvalidInput:
		return http.StatusBadRequest
	case ledger.KindAuthenticationFailed:
		return http.StatusUnauthorized
	case ledger.KindAssetNotFound:
		return http.StatusNotFound
	case ledger.KindDuplicateAccount, ledger.KindDuplicateAsset,
		ledger.KindAlreadyLoaned, ledger.KindAlreadyAvailable, ledger.KindUnderMaintenance:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respond 输出 {"ok","kind","message"}；成功时使用 okStatus
func respond(c *gin.Context, okStatus int, res ledger.Result, err error) {
	if err != nil {
		c.JSON(statusOf(ledger.KindOf(err)), res)
		return
	}
	c.JSON(okStatus, res)
}

// fail 用于非 mutation 的查询错误
func fail(c *gin.Context, err error) {
	kind := ledger.KindOf(err)
	msg := ledger.ErrStorageFailure.Message
	var le *ledger.Error
	if errors.As(err, &le) && kind != ledger.KindStorageFailure {
		msg = le.Message
	}
	c.JSON(statusOf(kind), ledger.Result{OK: false, Kind: kind, Message: msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ledger.Result{OK: false, Kind: ledger.KindInvalidInput, Message: msg})
}

func mustCaller(c *gin.Context) (ledger.Caller, bool) {
	caller, ok := app.CurrentCaller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
	}
	return caller, ok
}
