package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"cart_ledger/db"
)

// openTestRepo returns a Repo over a fresh sqlite file with the production
// schema. The connection is closed when the test finishes.
func openTestRepo(t *testing.T) *db.Repo {
	t.Helper()

	conn, err := db.Open(context.Background(), db.Options{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "ledger.db"),
	})
	if err != nil {
		t.Fatalf("openTestRepo: %v", err)
	}
	t.Cleanup(func() { db.Close(conn) })
	return db.NewRepo(conn)
}
