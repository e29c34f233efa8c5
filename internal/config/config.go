package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Discord        DiscordConfig        `yaml:"discord"`
	Database       DatabaseConfig       `yaml:"database"`
	Server         ServerConfig         `yaml:"server"`
	Telemetry      TelemetryConfig      `yaml:"telemetry"`
	LeaderElection LeaderElectionConfig `yaml:"leader_election"`
	Auction        AuctionConfig        `yaml:"auction"`
}

// DiscordConfig holds operator console settings. An empty token disables
// the Discord console.
type DiscordConfig struct {
	Token          string `yaml:"token"`
	GuildID        string `yaml:"guild_id"`
	OperatorRoleID string `yaml:"operator_role_id"`
}

// Enabled reports whether the console should connect.
func (d DiscordConfig) Enabled() bool { return d.Token != "" }

// DatabaseConfig holds journal storage settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	Driver   string `yaml:"driver"` // "memory" or "sqlx"
}

// DSN returns the Postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// RequestsPerSecond throttles the read API. Zero disables throttling.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name"`
	ServiceVersion string `yaml:"service_version"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	Insecure       bool   `yaml:"insecure"`
}

// LeaderElectionConfig holds Kubernetes leader election settings.
type LeaderElectionConfig struct {
	Enabled        bool          `yaml:"enabled"`
	LeaseName      string        `yaml:"lease_name"`
	LeaseNamespace string        `yaml:"lease_namespace"`
	LeaseDuration  time.Duration `yaml:"lease_duration"`
	RenewDeadline  time.Duration `yaml:"renew_deadline"`
	RetryPeriod    time.Duration `yaml:"retry_period"`
}

// AuctionConfig holds the rules of an auction session.
type AuctionConfig struct {
	// SessionID names the journal aggregate. Generated when empty. Startup
	// fails if the journal already holds entries for it.
	SessionID string `yaml:"session_id"`
	// RosterFile is an optional YAML file with the initial players and teams.
	RosterFile string `yaml:"roster_file"`
	// TimerSeconds is the countdown restored on reveal and reset.
	TimerSeconds int `yaml:"timer_seconds"`
	// QuickIncrements are the bid steps offered by the console.
	QuickIncrements []int `yaml:"quick_increments"`
	// DefaultPurse applies to teams registered without a budget.
	DefaultPurse       int    `yaml:"default_purse"`
	DefaultPlayerImage string `yaml:"default_player_image"`
	DefaultTeamLogo    string `yaml:"default_team_logo"`
	// PurseGuard rejects sold settlements above the team's remaining purse.
	// Off by default: the operator is trusted.
	PurseGuard bool `yaml:"purse_guard"`
}

// Load reads a YAML configuration file from the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Defaults returns the configuration used for keys absent from the file.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              8080,
			ShutdownTimeout:   15 * time.Second,
			RequestsPerSecond: 20,
			Burst:             40,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
			Driver:  "memory",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "auctiond",
			ServiceVersion: "0.1.0",
		},
		LeaderElection: LeaderElectionConfig{
			Enabled:        false,
			LeaseName:      "auctiond-leader",
			LeaseNamespace: "default",
			LeaseDuration:  15 * time.Second,
			RenewDeadline:  10 * time.Second,
			RetryPeriod:    2 * time.Second,
		},
		Auction: AuctionConfig{
			TimerSeconds:       10,
			QuickIncrements:    []int{10_000, 20_000, 50_000, 100_000, 200_000, 500_000},
			DefaultPurse:       10_000_000,
			DefaultPlayerImage: "https://www.w3schools.com/w3images/avatar2.png",
			DefaultTeamLogo:    "https://cdn-icons-png.flaticon.com/512/166/166258.png",
		},
	}
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	switch c.Database.Driver {
	case "memory", "sqlx":
		// valid
	default:
		return fmt.Errorf("unsupported database driver %q: must be \"memory\" or \"sqlx\"", c.Database.Driver)
	}
	if c.Auction.TimerSeconds <= 0 {
		return fmt.Errorf("auction.timer_seconds must be positive, got %d", c.Auction.TimerSeconds)
	}
	if c.Auction.DefaultPurse <= 0 {
		return fmt.Errorf("auction.default_purse must be positive, got %d", c.Auction.DefaultPurse)
	}
	for _, inc := range c.Auction.QuickIncrements {
		if inc <= 0 {
			return fmt.Errorf("auction.quick_increments must be positive, got %d", inc)
		}
	}
	if c.Server.RequestsPerSecond < 0 {
		return fmt.Errorf("server.requests_per_second must not be negative")
	}
	return nil
}
