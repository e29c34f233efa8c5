package leader

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jensholdgaard/player-auction/internal/config"
)

func TestIdentity_FromPodName(t *testing.T) {
	t.Setenv("POD_NAME", "auctiond-abc123")
	if got := identity(); got != "auctiond-abc123" {
		t.Errorf("identity() = %q, want %q", got, "auctiond-abc123")
	}
}

func TestIdentity_Hostname(t *testing.T) {
	t.Setenv("POD_NAME", "")
	host, err := os.Hostname()
	if err != nil {
		t.Skip("cannot get hostname")
	}
	if got := identity(); got != host {
		t.Errorf("identity() = %q, want %q", got, host)
	}
}

func TestNewElector_Timing(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LeaderElectionConfig
		wantErr bool
	}{
		{
			name: "defaults",
			cfg:  config.Defaults().LeaderElection,
		},
		{
			name: "renew deadline too long",
			cfg: config.LeaderElectionConfig{
				LeaseDuration: 10 * time.Second,
				RenewDeadline: 10 * time.Second,
				RetryPeriod:   2 * time.Second,
			},
			wantErr: true,
		},
		{
			name: "zero retry",
			cfg: config.LeaderElectionConfig{
				LeaseDuration: 15 * time.Second,
				RenewDeadline: 10 * time.Second,
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewElector(tt.cfg, slog.New(slog.DiscardHandler))
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewElector() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidTiming) {
				t.Errorf("error = %v, want ErrInvalidTiming", err)
			}
		})
	}
}

func TestElector_StartsAsFollower(t *testing.T) {
	t.Setenv("POD_NAME", "auctiond-0")
	e, err := NewElector(config.Defaults().LeaderElection, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatal(err)
	}
	if e.IsLeader() || e.Leader() != "" {
		t.Errorf("new elector = (leader=%v, holder=%q), want follower with no holder", e.IsLeader(), e.Leader())
	}
	if e.Identity() != "auctiond-0" {
		t.Errorf("Identity() = %q", e.Identity())
	}
}
