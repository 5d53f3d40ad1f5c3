package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 从环境变量读取
type Config struct {
	Port string

	// DB
	DBDriver    string // "sqlite" | "postgres"
	DBPath      string // sqlite 文件路径
	DatabaseURL string // postgres DSN，为空时由 DB_* 拼出

	RedisAddr string
	RedisPwd  string

	WebOrigin     string
	SessionTTL    time.Duration
	SeenThrottle  time.Duration
	LoginMaxFails int
	LoginLockout  time.Duration

	BootstrapAdminPassword string

	// 只允许借出已登记的设备
	StrictInventory bool
}

// LoadEnv 读取 .env（不存在时忽略）
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}
}

func FromEnv() Config {
	driver := strings.ToLower(getenvDefault("DB_DRIVER", "sqlite"))
	if driver != "sqlite" && driver != "postgres" {
		log.Printf("[config] unknown DB_DRIVER %q, falling back to sqlite (valid: sqlite, postgres)", driver)
		driver = "sqlite"
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" && driver == "postgres" {
		dsn = "host=" + getenvDefault("DB_HOST", "127.0.0.1") +
			" user=" + getenvDefault("DB_USER", "postgres") +
			" password=" + os.Getenv("DB_PASSWORD") +
			" dbname=" + getenvDefault("DB_NAME", "cart_ledger") +
			" port=" + getenvDefault("DB_PORT", "5432") +
			" sslmode=disable"
	}

	return Config{
		Port:        getenvDefault("PORT", "3001"),
		DBDriver:    driver,
		DBPath:      getenvDefault("DB_PATH", "./data/cart_ledger.db"),
		DatabaseURL: dsn,

		RedisAddr: getenvDefault("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:  os.Getenv("REDIS_PASSWORD"),

		WebOrigin:     getenvDefault("WEB_ORIGIN", "http://localhost:5173"),
		SessionTTL:    time.Duration(getenvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		SeenThrottle:  time.Duration(getenvInt("SEEN_THROTTLE_MINUTES", 5)) * time.Minute,
		LoginMaxFails: getenvInt("LOGIN_MAX_FAILURES", 5),
		LoginLockout:  time.Duration(getenvInt("LOGIN_LOCKOUT_MINUTES", 15)) * time.Minute,

		BootstrapAdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
		StrictInventory:        getenvBool("STRICT_INVENTORY", false),
	}
}

// SecureCookies 仅在 https 源下开启 Secure
func (c Config) SecureCookies() bool { return strings.HasPrefix(c.WebOrigin, "https://") }

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func getenvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
