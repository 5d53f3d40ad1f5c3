package config

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DB_PATH", "DATABASE_URL", "SESSION_TTL_HOURS", "WEB_ORIGIN", "STRICT_INVENTORY"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	if cfg.Port != "3001" {
		t.Errorf("Port = %q, want 3001", cfg.Port)
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("DBDriver = %q, want sqlite", cfg.DBDriver)
	}
	if cfg.DBPath != "./data/cart_ledger.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want empty for sqlite", cfg.DatabaseURL)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v, want 24h", cfg.SessionTTL)
	}
	if cfg.SecureCookies() {
		t.Error("SecureCookies should be false for http origin")
	}
	if cfg.StrictInventory {
		t.Error("StrictInventory should default to false")
	}
}

func TestFromEnv_PostgresDSNFromParts(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "u")
	t.Setenv("DB_PASSWORD", "p")
	t.Setenv("DB_NAME", "n")
	t.Setenv("DB_PORT", "6543")

	cfg := FromEnv()
	if cfg.DBDriver != "postgres" {
		t.Fatalf("DBDriver = %q, want postgres", cfg.DBDriver)
	}
	want := "host=db user=u password=p dbname=n port=6543 sslmode=disable"
	if cfg.DatabaseURL != want {
		t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, want)
	}
}

func TestFromEnv_BadValuesFallBack(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	t.Setenv("LOGIN_MAX_FAILURES", "-3")
	t.Setenv("SEEN_THROTTLE_MINUTES", "soon")
	t.Setenv("WEB_ORIGIN", "https://carts.example.org")
	t.Setenv("STRICT_INVENTORY", "maybe")

	cfg := FromEnv()
	if cfg.DBDriver != "sqlite" {
		t.Errorf("DBDriver = %q, want sqlite", cfg.DBDriver)
	}
	if cfg.LoginMaxFails != 5 {
		t.Errorf("LoginMaxFails = %d, want 5", cfg.LoginMaxFails)
	}
	if cfg.SeenThrottle != 5*time.Minute {
		t.Errorf("SeenThrottle = %v, want 5m", cfg.SeenThrottle)
	}
	if !cfg.SecureCookies() {
		t.Error("SecureCookies should be true for https origin")
	}
	if cfg.StrictInventory {
		t.Error("unparseable STRICT_INVENTORY should fall back to false")
	}
}

func TestFromEnv_StrictInventory(t *testing.T) {
	t.Setenv("STRICT_INVENTORY", "true")
	if !FromEnv().StrictInventory {
		t.Error("StrictInventory should be true")
	}
}

func TestLoadEnv_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("CART_LEDGER_TEST_KEY=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CART_LEDGER_TEST_KEY", "")
	os.Unsetenv("CART_LEDGER_TEST_KEY")

	LoadEnv(path)
	if got := os.Getenv("CART_LEDGER_TEST_KEY"); got != "from-file" {
		t.Errorf("CART_LEDGER_TEST_KEY = %q, want from-file", got)
	}
}

func TestFromEnv_UnknownDriverIsLogged(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	t.Setenv("DB_DRIVER", "postgresql")
	if cfg := FromEnv(); cfg.DBDriver != "sqlite" {
		t.Errorf("DBDriver = %q, want sqlite", cfg.DBDriver)
	}
	if !strings.Contains(buf.String(), `unknown DB_DRIVER "postgresql"`) {
		t.Errorf("no warning logged: %q", buf.String())
	}

	buf.Reset()
	t.Setenv("DB_DRIVER", "postgres")
	FromEnv()
	if buf.Len() != 0 {
		t.Errorf("valid driver logged a warning: %q", buf.String())
	}
}
