package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/oneko/internal/geometry"
)

// TopologySource returns the current display topology.
type TopologySource func() (geometry.Topology, error)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically polls the display topology and pushes snapshots
// that differ from the last one it pushed. It backs up the window-system
// notifications, which some window managers never send.
type Reconciler struct {
	interval time.Duration
	fetch    TopologySource
	apply    func(geometry.Topology)
	logger   *slog.Logger

	last geometry.Topology
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, fetch TopologySource, apply func(geometry.Topology)) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		fetch:    fetch,
		apply:    apply,
		logger:   logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	topo, err := r.fetch()
	if err != nil {
		r.logger.Error("reconciler: failed to read topology", "error", err)
		return
	}
	if topo.Empty() {
		r.logger.Warn("reconciler: topology has no displays")
		return
	}
	if topo.Equal(r.last) {
		return
	}

	r.logger.Debug("reconciler: topology drift detected", "displays", len(topo.Displays))
	r.last = topo
	r.apply(topo)
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}
