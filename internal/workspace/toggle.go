package workspace

import (
	"errors"
	"log/slog"

	"github.com/1broseidon/multimanager/internal/platform"
)

// State is the placement of a workspace's valid windows, derived from their
// current geometry.
type State int

const (
	AtHome State = iota
	AtTarget
	Mixed
)

func (s State) String() string {
	switch s {
	case AtHome:
		return "home"
	case AtTarget:
		return "target"
	default:
		return "mixed"
	}
}

// Classify compares current rectangles against each valid window's home and
// target. Invalid windows are ignored; a valid window absent from current
// is at neither position. A workspace with no valid windows is AtHome.
func Classify(ws Workspace, current map[platform.WindowID]platform.Rect) State {
	allHome, allTarget := true, true
	for _, w := range ws.Windows {
		if !w.Valid {
			continue
		}
		r, ok := current[w.ID]
		if !ok {
			return Mixed
		}
		if r != w.Home {
			allHome = false
		}
		if r != w.Target {
			allTarget = false
		}
	}
	switch {
	case allHome:
		return AtHome
	case allTarget:
		return AtTarget
	default:
		return Mixed
	}
}

// Direction is what a toggle did.
type Direction int

const (
	ToHome Direction = iota
	ToTarget
	Rotated
)

func (d Direction) String() string {
	switch d {
	case ToHome:
		return "home"
	case ToTarget:
		return "target"
	default:
		return "rotate"
	}
}

// ToggleResult summarizes one toggle. Skipped counts invalid or stale
// windows; Failed counts windows whose native move failed.
type ToggleResult struct {
	Direction Direction
	Moved     int
	Skipped   int
	Failed    int
}

// Engine applies toggles through a Geometry port.
type Engine struct {
	geom   platform.Geometry
	logger *slog.Logger
}

// NewEngine creates a toggle engine.
func NewEngine(geom platform.Geometry, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{geom: geom, logger: logger}
}

// Toggle moves ws's windows to their next placement. For rotating
// workspaces it also advances ws.CurrentIndex.
func (e *Engine) Toggle(ws *Workspace) ToggleResult {
	if ws.Rotating() {
		return e.rotate(ws)
	}

	current := make(map[platform.WindowID]platform.Rect, len(ws.Windows))
	for _, w := range ws.Windows {
		if !w.Valid {
			continue
		}
		r, err := e.geom.Rect(w.ID)
		if err != nil {
			continue
		}
		current[w.ID] = r
	}

	res := ToggleResult{Direction: ToHome}
	if Classify(*ws, current) == AtHome {
		res.Direction = ToTarget
	}

	for _, w := range ws.Windows {
		dest := w.Home
		if res.Direction == ToTarget {
			dest = w.Target
		}
		e.place(ws.Name, w, dest, true, &res)
	}
	e.logger.Debug("workspace toggled", "workspace", ws.Name, "direction", res.Direction.String(),
		"moved", res.Moved, "skipped", res.Skipped, "failed", res.Failed)
	return res
}

func (e *Engine) rotate(ws *Workspace) ToggleResult {
	n := len(ws.Windows)
	cursor := ws.CurrentIndex % n
	if cursor < 0 {
		cursor += n
	}

	res := ToggleResult{Direction: Rotated}
	for i, w := range ws.Windows {
		if i == cursor {
			continue
		}
		e.place(ws.Name, w, w.Home, false, &res)
	}
	// the focused window goes last so it ends up raised
	focus := ws.Windows[cursor]
	e.place(ws.Name, focus, focus.Target, true, &res)

	ws.CurrentIndex = (cursor + 1) % n
	e.logger.Debug("workspace rotated", "workspace", ws.Name, "focus", cursor,
		"next", ws.CurrentIndex, "moved", res.Moved, "skipped", res.Skipped, "failed", res.Failed)
	return res
}

// SendHome moves every valid window of ws to its home rectangle and
// activates it.
func (e *Engine) SendHome(ws Workspace) ToggleResult {
	res := ToggleResult{Direction: ToHome}
	for _, w := range ws.Windows {
		e.place(ws.Name, w, w.Home, true, &res)
	}
	return res
}

// LiveCount returns how many of ws's valid windows are live right now.
func (e *Engine) LiveCount(ws Workspace) int {
	n := 0
	for _, w := range ws.Windows {
		if w.Valid && e.geom.IsLive(w.ID) {
			n++
		}
	}
	return n
}

func (e *Engine) place(workspace string, w WindowEntry, dest platform.Rect, activate bool, res *ToggleResult) {
	if !w.Valid {
		e.logger.Warn("skipping invalid window", "workspace", workspace, "title", w.Title)
		res.Skipped++
		return
	}

	if err := e.geom.SetRect(w.ID, dest); err != nil {
		if errors.Is(err, platform.ErrStaleWindow) {
			e.logger.Warn("skipping stale window", "workspace", workspace, "window", uint32(w.ID), "title", w.Title)
			res.Skipped++
			return
		}
		e.logger.Error("failed to move window", "workspace", workspace, "window", uint32(w.ID), "title", w.Title, "error", err)
		res.Failed++
		return
	}
	res.Moved++

	if !activate {
		return
	}
	if err := e.geom.Activate(w.ID); err != nil {
		e.logger.Warn("failed to activate window", "workspace", workspace, "window", uint32(w.ID), "error", err)
	}
}
