package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/evcraddock/suggestion-board/internal/config"
	"github.com/evcraddock/suggestion-board/internal/suggestion"
)

func testServeConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Addr:         "127.0.0.1:0",
		DBPath:       filepath.Join(t.TempDir(), "board.db"),
		StoreTimeout: time.Second,
		TokenTTL:     time.Hour,
	}
}

func TestOpenStoreSQLite(t *testing.T) {
	h, err := openStore(context.Background(), testServeConfig(t))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = h.close() }()

	if h.db == nil {
		t.Fatal("expected a database handle for the API key store")
	}
	created, err := h.store.CreateSuggestion(context.Background(), suggestion.Draft{Name: "Alice", Message: "More benches"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != 1 {
		t.Errorf("id = %d, want 1", created.ID)
	}
}

func TestRunServeRejectsInvalidConfig(t *testing.T) {
	cfg := testServeConfig(t)
	cfg.AdminLogin = "admin"

	err := runServe(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if !strings.Contains(err.Error(), "SB_ADMIN_PASSWORD_HASH") {
		t.Errorf("err = %v, want a password hash problem", err)
	}
}

func TestRunServeStopsOnCancel(t *testing.T) {
	cfg := testServeConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServe(ctx, cfg) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}

func TestStoreConfigDBFlagWins(t *testing.T) {
	old := flagDB
	t.Cleanup(func() { flagDB = old })

	cfg := config.Config{DBPath: "/default.db", DatabaseURL: "postgres://board@db/board"}

	flagDB = ""
	if got := storeConfig(cfg); got.DatabaseURL != cfg.DatabaseURL || got.DBPath != cfg.DBPath {
		t.Errorf("without --db: %+v", got)
	}

	flagDB = "/tmp/local.db"
	got := storeConfig(cfg)
	if got.DatabaseURL != "" || got.DBPath != "/tmp/local.db" {
		t.Errorf("with --db: DatabaseURL = %q, DBPath = %q", got.DatabaseURL, got.DBPath)
	}
}
