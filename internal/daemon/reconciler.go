package daemon

import (
	"context"
	"log/slog"
	"time"
)

// DefaultValidateInterval is how often window validity is refreshed.
const DefaultValidateInterval = 10 * time.Second

// Validator refreshes the valid flag of every tracked window and returns
// how many are valid.
type Validator interface {
	ValidateWindows() int
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically re-checks which tracked windows still exist, so
// closed windows drop out of toggles and listings.
type Reconciler struct {
	interval  time.Duration
	validator Validator
	logger    *slog.Logger
	lastValid int
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, validator Validator) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultValidateInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval:  interval,
		validator: validator,
		logger:    logger,
		lastValid: -1,
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

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() int {
	return r.reconcile()
}

func (r *Reconciler) reconcile() int {
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	valid := r.validator.ValidateWindows()
	if valid != r.lastValid {
		r.logger.Info("reconciler: window validity changed", "valid", valid, "previous", r.lastValid)
		r.lastValid = valid
	}
	return valid
}
