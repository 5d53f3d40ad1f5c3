package controllers

import (
	"errors"
	"log"
	"net/http"

	"cart_ledger/app"
	"cart_ledger/ledger"

	"github.com/gin-gonic/gin"
)

type AuthController struct{ *Srv }

func NewAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var in struct {
		Handle   string `json:"handle"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "handle and password are required")
		return
	}
	ctx := c.Request.Context()

	// Redis 出错时不拦截登录
	locked, err := ac.Limiter.Locked(ctx, in.Handle)
	if err != nil {
		log.Printf("login limiter: %v", err)
	}
	if locked {
		c.JSON(http.StatusTooManyRequests, ledger.Result{
			OK:      false,
			Kind:    ledger.KindAuthenticationFailed,
			Message: "too many failed attempts, try again later",
		})
		return
	}

	caller, err := ac.Ledger.AuthenticateAccount(ctx, in.Handle, in.Password)
	if err != nil {
		if errors.Is(err, ledger.ErrAuthenticationFailed) {
			if _, ferr := ac.Limiter.Fail(ctx, in.Handle); ferr != nil {
				log.Printf("login limiter: %v", ferr)
			}
		}
		fail(c, err)
		return
	}
	_ = ac.Limiter.Reset(ctx, in.Handle)

	if err := ac.issueSession(ctx, c.Writer, caller); err != nil {
		log.Printf("issue session: %v", err)
		c.JSON(http.StatusInternalServerError, app.H{"error": "session store unavailable"})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "caller": caller})
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	if sid := app.CurrentSessionID(c); sid != "" {
		_ = ac.AppSess.Delete(c.Request.Context(), sid)
	}
	ac.setAppCookie(c.Writer, "", -1)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/auth/whoami
func (ac *AuthController) WhoAmI(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, app.H{
		"caller":       caller,
		"capabilities": ac.Ledger.Capabilities(),
	})
}

// POST /api/auth/password
// 成功后撤销该账号的其它会话，当前会话保留
func (ac *AuthController) ChangePassword(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	var in struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "oldPassword and newPassword are required")
		return
	}

	res, err := ac.Ledger.ChangePassword(c.Request.Context(), caller.Handle, in.OldPassword, in.NewPassword)
	if err == nil {
		if rerr := ac.AppSess.RevokeAllForAccount(c.Request.Context(), caller.AccountID, app.CurrentSessionID(c)); rerr != nil {
			log.Printf("revoke sessions for %d: %v", caller.AccountID, rerr)
		}
	}
	respond(c, http.StatusOK, res, err)
}
