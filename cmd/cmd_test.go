package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cart_ledger/db"
	"cart_ledger/ledger"
	"cart_ledger/models"

	"golang.org/x/crypto/bcrypt"
)

// TestCommandStructure verifies that all commands are properly registered
func TestCommandStructure(t *testing.T) {
	for _, path := range [][]string{
		{"serve"},
		{"migrate"},
		{"account", "create"},
		{"credentials", "rehash"},
		{"assets", "import"},
	} {
		t.Run(strings.Join(path, " "), func(t *testing.T) {
			cmd, _, err := rootCmd.Find(path)
			if err != nil {
				t.Fatalf("command %v not found: %v", path, err)
			}
			if cmd.Use == "" || cmd.Short == "" {
				t.Errorf("command %v lacks Use or Short", path)
			}
		})
	}
}

func TestParseInventory(t *testing.T) {
	inv, err := parseInventory([]byte(`
carts:
  - cart: A
    from: 1
    to: 3
  - cart: " B "
    numbers: [7, 2, 7]
  - cart: A
    numbers: [2, 4]
`))
	if err != nil {
		t.Fatalf("parseInventory: %v", err)
	}
	want := []deviceKey{{1, "A"}, {2, "A"}, {3, "A"}, {7, "B"}, {2, "B"}, {4, "A"}}
	if len(inv) != len(want) {
		t.Fatalf("got %v, want %v", inv, want)
	}
	for i := range want {
		if inv[i] != want[i] {
			t.Errorf("inv[%d] = %v, want %v", i, inv[i], want[i])
		}
	}
}

func TestParseInventory_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty":      `carts: []`,
		"no cart":    "carts:\n  - from: 1\n    to: 2\n",
		"bad range":  "carts:\n  - cart: A\n    from: 5\n    to: 2\n",
		"bad number": "carts:\n  - cart: A\n    numbers: [0]\n",
		"not yaml":   "carts: [",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := parseInventory([]byte(src)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestImportInventory_Idempotent(t *testing.T) {
	conn, err := db.Open(context.Background(), db.Options{Path: filepath.Join(t.TempDir(), "cli.db")})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close(conn) })
	l := ledger.New(db.NewRepo(conn), ledger.WithHashCost(bcrypt.MinCost))

	inv := []deviceKey{{1, "A"}, {2, "A"}, {1, "B"}}
	var out bytes.Buffer
	rep, err := importInventory(context.Background(), l, inv, &out)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Registered != 3 || rep.Existing != 0 {
		t.Errorf("first import = %+v", rep)
	}

	rep, err = importInventory(context.Background(), l, inv, &out)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Registered != 0 || rep.Existing != 3 {
		t.Errorf("second import = %+v", rep)
	}
}

func TestAccountCreateAndRehash(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "ops.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", dbPath)
	t.Setenv("STRICT_INVENTORY", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	envPath := filepath.Join(dir, "missing.env")
	rootCmd.SetArgs([]string{"--env", envPath, "account", "create", "--handle", "ana", "--password", "s3cret"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("account create: %v (%s)", err, out.String())
	}
	if !strings.Contains(out.String(), `"ana" created`) {
		t.Errorf("output = %q", out.String())
	}

	// plaintext row left over from an older installation
	conn, err := db.Open(context.Background(), db.Options{Path: dbPath})
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.Create(&models.Account{Handle: "old", PasswordHash: "1234", DisplayName: "Old"}).Error; err != nil {
		t.Fatal(err)
	}
	db.Close(conn)

	out.Reset()
	rootCmd.SetArgs([]string{"--env", envPath, "credentials", "rehash"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("credentials rehash: %v", err)
	}
	if got := out.String(); !strings.Contains(got, "rehashed 1, already hashed 1, skipped 0") {
		t.Errorf("output = %q", got)
	}
}

func TestAssetsImportCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(dir, "inv.db"))

	file := filepath.Join(dir, "carts.yaml")
	if err := os.WriteFile(file, []byte("carts:\n  - cart: A\n    from: 1\n    to: 30\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})
	rootCmd.SetArgs([]string{"--env", filepath.Join(dir, "none.env"), "assets", "import", file})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("assets import: %v", err)
	}
	if !strings.Contains(out.String(), "registered 30, already present 0") {
		t.Errorf("output = %q", out.String())
	}
}
