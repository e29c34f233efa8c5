package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jensholdgaard/player-auction/internal/config"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		check   func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "valid full config",
			yaml: `
discord:
  token: "test-token"
  guild_id: "123456"
  operator_role_id: "42"
database:
  host: "db.example.com"
  port: 5433
  user: "auction"
  password: "secret"
  dbname: "auction"
  sslmode: "require"
  driver: "sqlx"
server:
  port: 9090
telemetry:
  service_name: "my-auction"
  otlp_endpoint: "localhost:4318"
auction:
  session_id: "ipl-2025"
  timer_seconds: 15
  quick_increments: [5000, 25000]
  default_purse: 5000000
  purse_guard: true
`,
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				if cfg.Discord.Token != "test-token" {
					t.Errorf("got token %q, want %q", cfg.Discord.Token, "test-token")
				}
				if cfg.Discord.OperatorRoleID != "42" {
					t.Errorf("got operator role %q, want %q", cfg.Discord.OperatorRoleID, "42")
				}
				if cfg.Database.Port != 5433 {
					t.Errorf("got db port %d, want %d", cfg.Database.Port, 5433)
				}
				if cfg.Server.Port != 9090 {
					t.Errorf("got server port %d, want %d", cfg.Server.Port, 9090)
				}
				if cfg.Telemetry.ServiceName != "my-auction" {
					t.Errorf("got service name %q, want %q", cfg.Telemetry.ServiceName, "my-auction")
				}
				if cfg.Auction.TimerSeconds != 15 {
					t.Errorf("got timer seconds %d, want 15", cfg.Auction.TimerSeconds)
				}
				if diff := cmp.Diff([]int{5000, 25000}, cfg.Auction.QuickIncrements); diff != "" {
					t.Errorf("quick increments mismatch (-want +got):\n%s", diff)
				}
				if !cfg.Auction.PurseGuard {
					t.Error("expected purse guard to be enabled")
				}
			},
		},
		{
			name: "defaults applied",
			yaml: `
discord:
  token: "tok"
`,
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				if cfg.Database.Host != "localhost" {
					t.Errorf("got db host %q, want %q", cfg.Database.Host, "localhost")
				}
				if cfg.Database.Driver != "memory" {
					t.Errorf("got driver %q, want %q", cfg.Database.Driver, "memory")
				}
				if cfg.Server.Port != 8080 {
					t.Errorf("got server port %d, want %d", cfg.Server.Port, 8080)
				}
				if cfg.Telemetry.ServiceName != "auctiond" {
					t.Errorf("got service name %q, want %q", cfg.Telemetry.ServiceName, "auctiond")
				}
				if cfg.Auction.TimerSeconds != 10 {
					t.Errorf("got timer seconds %d, want 10", cfg.Auction.TimerSeconds)
				}
				if cfg.Auction.DefaultPurse != 10_000_000 {
					t.Errorf("got default purse %d, want 10000000", cfg.Auction.DefaultPurse)
				}
				want := []int{10_000, 20_000, 50_000, 100_000, 200_000, 500_000}
				if diff := cmp.Diff(want, cfg.Auction.QuickIncrements); diff != "" {
					t.Errorf("quick increments mismatch (-want +got):\n%s", diff)
				}
				if cfg.Auction.PurseGuard {
					t.Error("purse guard should default to off")
				}
			},
		},
		{
			name:    "invalid yaml",
			yaml:    `{{{invalid`,
			wantErr: true,
		},
		{
			name: "invalid driver rejected",
			yaml: `
database:
  driver: "mongodb"
`,
			wantErr: true,
		},
		{
			name: "non-positive timer rejected",
			yaml: `
auction:
  timer_seconds: 0
`,
			wantErr: true,
		},
		{
			name: "negative increment rejected",
			yaml: `
auction:
  quick_increments: [10000, -5]
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
				t.Fatal(err)
			}

			cfg, err := config.Load(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil && cfg != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := config.Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "user",
		Password: "pass",
		DBName:   "testdb",
		SSLMode:  "disable",
	}
	want := "host=localhost port=5432 user=user password=pass dbname=testdb sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestDiscordConfig_Enabled(t *testing.T) {
	if (config.DiscordConfig{}).Enabled() {
		t.Error("empty token should disable the console")
	}
	if !(config.DiscordConfig{Token: "x"}).Enabled() {
		t.Error("token should enable the console")
	}
}
