package db

import (
	"cart_ledger/models"
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

type Options struct {
	Driver string // "sqlite" | "postgres"
	Path   string // sqlite 文件
	DSN    string // postgres
}

// Open 连接数据库并执行迁移（幂等）
func Open(ctx context.Context, opt Options) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: newLogger(log.Default())}

	var (
		conn *gorm.DB
		err  error
	)
	switch opt.Driver {
	case "postgres":
		conn, err = gorm.Open(postgres.Open(opt.DSN), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
	case "", "sqlite":
		sqlDB, err := openSQLite(ctx, opt.Path)
		if err != nil {
			return nil, err
		}
		conn, err = gorm.Open(&gormsqlite.Dialector{Conn: sqlDB}, gcfg)
		if err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown db driver %q", opt.Driver)
	}

	if err := Migrate(conn); err != nil {
		Close(conn)
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return conn, nil
}

// newLogger 只记 Warn 以上；查不到记录属于正常分支（未知账号、隐式创建），不打印
func newLogger(w logger.Writer) logger.Interface {
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		path = "./data/cart_ledger.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf(
		"file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)",
		path,
	)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	// 单连接：借还事务在连接池上串行执行
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return sqlDB, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Account{}, &models.Asset{}, &models.HistoryEntry{}); err != nil {
		return err
	}

	// 借出中的设备按 cart/number 查询
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_loaned_cart_number
	  ON %s (cart, number)
	  WHERE status = 'loaned';
	`, models.AssetTable, models.AssetTable)).Error; err != nil {
		return err
	}

	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_asset
	  ON %s (cart, asset_number);
	`, models.HistoryTable, models.HistoryTable)).Error; err != nil {
		return err
	}

	return nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("close db: %v", err)
	}
}
