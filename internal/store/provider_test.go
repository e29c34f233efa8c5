package store_test

import (
	"context"
	"strings"
	"testing"

	"github.com/jensholdgaard/player-auction/internal/clock"
	"github.com/jensholdgaard/player-auction/internal/config"
	"github.com/jensholdgaard/player-auction/internal/store"

	// Import drivers so their init() functions register them.
	_ "github.com/jensholdgaard/player-auction/internal/store/memory"
	_ "github.com/jensholdgaard/player-auction/internal/store/postgres"
)

// fakeDriver is a store.Driver that always succeeds without connecting to a DB.
func fakeDriver(_ context.Context, _ config.DatabaseConfig, _ clock.Clock) (*store.Repositories, error) {
	return &store.Repositories{}, nil
}

func TestOpen(t *testing.T) {
	store.Register("test-driver", fakeDriver)

	tests := []struct {
		name    string
		driver  string
		wantErr bool
	}{
		{name: "registered driver succeeds", driver: "test-driver"},
		{name: "memory driver succeeds", driver: "memory"},
		{name: "unknown driver fails", driver: "nonexistent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DatabaseConfig{Driver: tt.driver}
			repos, err := store.Open(context.Background(), cfg, clock.Real())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open(driver=%q) error = %v, wantErr %v", tt.driver, err, tt.wantErr)
			}
			if repos != nil {
				if err := repos.Close(); err != nil {
					t.Errorf("Close() error = %v", err)
				}
			}
		})
	}
}

func TestOpen_UnknownDriverListsRegistered(t *testing.T) {
	_, err := store.Open(context.Background(), config.DatabaseConfig{Driver: "mongodb"}, clock.Real())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "memory") || !strings.Contains(err.Error(), "sqlx") {
		t.Errorf("error %q should list the registered drivers", err)
	}
}

func TestRegister_SQLX(t *testing.T) {
	if testing.Short() {
		t.Skip("dials a database")
	}
	// No database is listening on this port, so the driver must fail to
	// connect rather than be unknown.
	cfg := config.DatabaseConfig{Driver: "sqlx", Host: "127.0.0.1", Port: 1, SSLMode: "disable"}
	_, err := store.Open(context.Background(), cfg, clock.Real())
	if err == nil {
		t.Fatal("expected error (no DB running), got nil")
	}
	if strings.Contains(err.Error(), "unknown store driver") {
		t.Errorf("expected connection error, got unknown driver error: %v", err)
	}
}
