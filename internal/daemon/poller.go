package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/multimanager/internal/hotkeys"
	"github.com/1broseidon/multimanager/internal/workspace"
)

// DefaultPollInterval is the hotkey sampling period.
const DefaultPollInterval = 100 * time.Millisecond

// KeySampler takes one snapshot of the keyboard.
type KeySampler interface {
	SampleKeys() (hotkeys.KeyState, error)
}

// Toggler is the workspace side of the poll loop.
type Toggler interface {
	PressedWorkspaces(state hotkeys.KeyState) []int
	Toggle(index int) (workspace.ToggleResult, error)
	RecordTrigger(index int, at time.Time)
}

// PollerConfig holds configuration for the poller.
type PollerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Poller samples the keyboard on a fixed period and toggles every workspace
// whose chord is held. A chord held across ticks fires on every tick.
type Poller struct {
	interval time.Duration
	keys     KeySampler
	target   Toggler
	logger   *slog.Logger
	now      func() time.Time
}

// NewPoller creates a poller with the given configuration.
func NewPoller(cfg PollerConfig, keys KeySampler, target Toggler) *Poller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Poller{
		interval: interval,
		keys:     keys,
		target:   target,
		logger:   logger,
		now:      now,
	}
}

// Run starts the poll loop. Blocks until context is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("hotkey poller started", "interval", p.interval)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("hotkey poller stopped")
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

// PollNow runs a single tick and returns the indices it toggled.
func (p *Poller) PollNow() []int {
	return p.tick()
}

func (p *Poller) tick() (fired []int) {
	defer func() {
		if err := recover(); err != nil {
			p.logger.Error("poller panic recovered", "error", err)
		}
	}()

	state, err := p.keys.SampleKeys()
	if err != nil {
		p.logger.Warn("poller: failed to sample keyboard", "error", err)
		return nil
	}

	// first pass holds the workspace lock; the second runs without it
	pressed := p.target.PressedWorkspaces(state)
	for _, index := range pressed {
		res, err := p.target.Toggle(index)
		if err != nil {
			p.logger.Warn("poller: toggle failed", "workspace", index, "error", err)
			continue
		}
		p.target.RecordTrigger(index, p.now())
		p.logger.Info("workspace triggered", "workspace", index, "direction", res.Direction.String(),
			"moved", res.Moved, "skipped", res.Skipped, "failed", res.Failed)
		fired = append(fired, index)
	}
	return fired
}
