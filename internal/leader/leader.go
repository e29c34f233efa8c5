// Package leader runs Kubernetes Lease leader election so that only one
// replica drives the auction floor at a time.
package leader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/leaderelection"
	"k8s.io/client-go/tools/leaderelection/resourcelock"

	"github.com/jensholdgaard/player-auction/internal/config"
)

// ErrInvalidTiming is returned when the lease timings cannot work together.
var ErrInvalidTiming = errors.New("lease duration must exceed renew deadline, which must exceed retry period")

// identity returns a unique identity for this instance.
// It uses the POD_NAME env var if set, otherwise the hostname.
func identity() string {
	if name := os.Getenv("POD_NAME"); name != "" {
		return name
	}
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return host
}

// ClientFactory creates a Kubernetes clientset. Tests swap it out.
var ClientFactory = func() (kubernetes.Interface, error) {
	cfg, err := rest.InClusterConfig()
	if err != nil {
		return nil, fmt.Errorf("building in-cluster config: %w", err)
	}
	client, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating kubernetes client: %w", err)
	}
	return client, nil
}

// Elector tracks who holds the lease.
type Elector struct {
	cfg      config.LeaderElectionConfig
	logger   *slog.Logger
	identity string

	leading atomic.Bool
	mu      sync.RWMutex
	current string
}

// NewElector validates cfg and returns an Elector for this process.
func NewElector(cfg config.LeaderElectionConfig, logger *slog.Logger) (*Elector, error) {
	if cfg.LeaseDuration <= cfg.RenewDeadline || cfg.RenewDeadline <= cfg.RetryPeriod || cfg.RetryPeriod <= 0 {
		return nil, fmt.Errorf("%w: got %s, %s, %s", ErrInvalidTiming, cfg.LeaseDuration, cfg.RenewDeadline, cfg.RetryPeriod)
	}
	return &Elector{cfg: cfg, logger: logger, identity: identity()}, nil
}

// Identity is this replica's name on the lease.
func (e *Elector) Identity() string { return e.identity }

// IsLeader reports whether this replica currently holds the lease.
func (e *Elector) IsLeader() bool { return e.leading.Load() }

// Leader returns the last observed lease holder.
func (e *Elector) Leader() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current
}

// Run takes part in the election until ctx is done. onStartedLeading runs
// when this replica wins and should block until its ctx is done;
// onStoppedLeading runs when the lease is lost or released.
func (e *Elector) Run(ctx context.Context, onStartedLeading func(ctx context.Context), onStoppedLeading func()) error {
	e.logger.Info("starting leader election",
		slog.String("identity", e.identity),
		slog.String("lease", e.cfg.LeaseName),
		slog.String("namespace", e.cfg.LeaseNamespace),
	)

	client, err := ClientFactory()
	if err != nil {
		return fmt.Errorf("leader election client: %w", err)
	}

	lock := &resourcelock.LeaseLock{
		LeaseMeta: metav1.ObjectMeta{
			Name:      e.cfg.LeaseName,
			Namespace: e.cfg.LeaseNamespace,
		},
		Client: client.CoordinationV1(),
		LockConfig: resourcelock.ResourceLockConfig{
			Identity: e.identity,
		},
	}

	le, err := leaderelection.NewLeaderElector(leaderelection.LeaderElectionConfig{
		Lock:            lock,
		LeaseDuration:   e.cfg.LeaseDuration,
		RenewDeadline:   e.cfg.RenewDeadline,
		RetryPeriod:     e.cfg.RetryPeriod,
		ReleaseOnCancel: true,
		Name:            e.cfg.LeaseName,
		Callbacks: leaderelection.LeaderCallbacks{
			OnStartedLeading: func(ctx context.Context) {
				e.leading.Store(true)
				e.logger.Info("acquired leadership", slog.String("identity", e.identity))
				onStartedLeading(ctx)
			},
			OnStoppedLeading: func() {
				e.leading.Store(false)
				e.logger.Info("lost leadership", slog.String("identity", e.identity))
				onStoppedLeading()
			},
			OnNewLeader: func(newID string) {
				e.mu.Lock()
				e.current = newID
				e.mu.Unlock()
				if newID == e.identity {
					return
				}
				e.logger.Info("new leader elected", slog.String("leader", newID))
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating leader elector: %w", err)
	}

	le.Run(ctx)
	return nil
}
