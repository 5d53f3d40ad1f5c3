package routes

import (
	"net/http"

	"cart_ledger/app"
	"cart_ledger/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	authCtl := controllers.NewAuthController(s)
	assetCtl := controllers.NewAssetController(s)
	accountCtl := controllers.NewAccountController(s)

	// 复用的中间件
	authMW := app.AuthRequired(s.AppSess, s.Ledger)
	adminMW := app.AdminOnly()
	seenMW := app.TouchLastSeen(s.Ledger, a.RDB, a.Config.SeenThrottle)

	r.GET("/healthz", func(c *app.Ctx) { c.JSON(http.StatusOK, app.H{"ok": true}) })

	api := r.Group("/api")

	// ------------------------------
	// 登录态
	// ------------------------------
	api.POST("/auth/login", authCtl.Login)
	auth := api.Group("/auth", authMW, seenMW)
	{
		auth.POST("/logout", authCtl.Logout)
		auth.GET("/whoami", authCtl.WhoAmI)
		auth.POST("/password", authCtl.ChangePassword)
	}

	// ------------------------------
	// 设备与借还
	// ------------------------------
	// 公开：可借/已借列表
	api.GET("/assets/available", assetCtl.ListAvailable)
	api.GET("/assets/loaned", assetCtl.ListLoaned)

	staff := api.Group("", authMW, seenMW)
	{
		staff.GET("/assets", assetCtl.ListAssets)
		staff.GET("/assets/stats", assetCtl.Stats)
		staff.POST("/loans", assetCtl.Loan)
		staff.POST("/returns", assetCtl.Return)
		staff.GET("/history", assetCtl.History) // ?limit=
	}

	// ------------------------------
	// 管理（仅管理员）
	// ------------------------------
	admin := api.Group("/admin", authMW, adminMW, seenMW)
	{
		admin.POST("/assets", assetCtl.CreateAsset)
		admin.POST("/assets/maintenance", assetCtl.SetMaintenance)
		admin.POST("/accounts", accountCtl.CreateAccount)
		admin.GET("/accounts", accountCtl.ListAccounts) // ?q=&page=&size=
	}
}
