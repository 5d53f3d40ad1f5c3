package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"cart_ledger/config"
	"cart_ledger/db"
	"cart_ledger/ledger"
	"cart_ledger/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Ledger *ledger.Ledger
	Config config.Config

	appSess *session.AppSessionStore
	limiter *session.LoginLimiter
}

func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }
func (a *App) Limiter() *session.LoginLimiter        { return a.limiter }

func MustNew(cfg config.Config) *App {
	a, err := New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return a
}

// New 打开数据库和 Redis，然后组装 App
func New(ctx context.Context, cfg config.Config) (*App, error) {
	// --- DB: sqlite / postgres ---
	dbConn, err := db.Open(ctx, db.Options{Driver: cfg.DBDriver, Path: cfg.DBPath, DSN: cfg.DatabaseURL})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		db.Close(dbConn)
		return nil, fmt.Errorf("redis: %w", err)
	}

	return Assemble(cfg, dbConn, rdb), nil
}

// Assemble 用已打开的连接组装 App；extra 追加在配置推导出的 ledger 选项之后
func Assemble(cfg config.Config, dbConn *gorm.DB, rdb *redis.Client, extra ...ledger.Option) *App {
	opts := LedgerOptions(cfg)
	opts = append(opts, extra...)

	r := gin.Default()
	useCORS(r, cfg.WebOrigin)
	return &App{
		Router:  r,
		DB:      dbConn,
		RDB:     rdb,
		Ledger:  ledger.New(db.NewRepo(dbConn), opts...),
		Config:  cfg,
		appSess: session.NewAppSessionStore(rdb, cfg.SessionTTL),
		limiter: session.NewLoginLimiter(rdb, cfg.LoginMaxFails, cfg.LoginLockout),
	}
}

func LedgerOptions(cfg config.Config) []ledger.Option {
	var opts []ledger.Option
	if cfg.StrictInventory {
		opts = append(opts, ledger.WithStrictInventory())
	}
	return opts
}

func (a *App) Close() {
	_ = a.RDB.Close()
	db.Close(a.DB)
}
