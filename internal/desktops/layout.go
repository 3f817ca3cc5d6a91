// Package desktops captures and restores the placement of every visible
// window across virtual desktops.
package desktops

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/1broseidon/multimanager/internal/fsutil"
	"github.com/1broseidon/multimanager/internal/platform"
	"github.com/1broseidon/multimanager/internal/prompt"
)

// WindowRecord is one window of a saved desktop layout. Rect holds
// x, y, width and height.
type WindowRecord struct {
	DesktopIndex int               `json:"desktop_index"`
	ID           platform.WindowID `json:"hwnd"`
	Title        string            `json:"title"`
	Rect         [4]int            `json:"rect"`
}

func (w WindowRecord) bounds() platform.Rect {
	return platform.Rect{X: w.Rect[0], Y: w.Rect[1], Width: w.Rect[2], Height: w.Rect[3]}
}

// RestoreStats counts the outcome of Restore.
type RestoreStats struct {
	Restored int
	Missing  int
	Failed   int
}

// Service reads and writes whole-desktop layouts.
type Service struct {
	backend  platform.Backend
	geom     platform.Geometry
	prompter prompt.Prompter
	logger   *slog.Logger
}

// NewService creates a layout service. All geometry writes go through geom.
func NewService(backend platform.Backend, geom platform.Geometry, prompter prompt.Prompter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if prompter == nil {
		prompter = prompt.Auto{Logger: logger}
	}
	return &Service{backend: backend, geom: geom, prompter: prompter, logger: logger}
}

// Capture records every visible normal window. Windows on all desktops are
// stored with desktop index -1.
func (s *Service) Capture() ([]WindowRecord, error) {
	windows, err := s.backend.ListWindows()
	if err != nil {
		return nil, fmt.Errorf("failed to list windows: %w", err)
	}
	records := make([]WindowRecord, 0, len(windows))
	for _, w := range windows {
		records = append(records, WindowRecord{
			DesktopIndex: w.Desktop,
			ID:           w.ID,
			Title:        w.Title,
			Rect:         [4]int{w.Bounds.X, w.Bounds.Y, w.Bounds.Width, w.Bounds.Height},
		})
	}
	return records, nil
}

// Save captures the layout and writes it to path.
func (s *Service) Save(path string) (int, error) {
	records, err := s.Capture()
	if err != nil {
		return 0, err
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to encode desktop layout: %w", err)
	}
	if err := fsutil.WriteFileAtomic(path, append(data, '\n'), 0644); err != nil {
		return 0, fmt.Errorf("failed to write desktop layout %s: %w", path, err)
	}
	s.logger.Info("desktop layout saved", "path", path, "windows", len(records))
	return len(records), nil
}

// Read loads a layout file.
func Read(path string) ([]WindowRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read desktop layout %s: %w", path, err)
	}
	var records []WindowRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse desktop layout %s: %w", path, err)
	}
	return records, nil
}

// Restore moves each recorded window that still exists back to its desktop
// and rectangle. Records for desktops beyond the current desktop count are
// placed without a desktop change.
func (s *Service) Restore(records []WindowRecord) RestoreStats {
	var stats RestoreStats
	desktops := s.backend.DesktopCount()
	for _, rec := range records {
		if !s.geom.IsLive(rec.ID) {
			stats.Missing++
			continue
		}
		if rec.DesktopIndex >= 0 && rec.DesktopIndex < desktops {
			if err := s.backend.SetWindowDesktop(rec.ID, rec.DesktopIndex); err != nil {
				s.logger.Warn("failed to move window to desktop", "window", uint32(rec.ID), "desktop", rec.DesktopIndex, "error", err)
			}
		}
		if err := s.geom.SetRect(rec.ID, rec.bounds()); err != nil {
			if errors.Is(err, platform.ErrStaleWindow) {
				stats.Missing++
				continue
			}
			s.logger.Warn("failed to restore window", "window", uint32(rec.ID), "title", rec.Title, "error", err)
			stats.Failed++
			continue
		}
		stats.Restored++
	}
	s.logger.Info("desktop layout restored", "restored", stats.Restored, "missing", stats.Missing, "failed", stats.Failed)
	return stats
}

// Load reads path and restores it.
func (s *Service) Load(path string) (RestoreStats, error) {
	records, err := Read(path)
	if err != nil {
		return RestoreStats{}, err
	}
	return s.Restore(records), nil
}

// CenterAll asks for confirmation and then centers every visible normal
// window on the primary display, keeping its size. It returns how many
// windows moved; declining is not an error.
func (s *Service) CenterAll() (int, error) {
	if !s.prompter.Confirm("Move all windows to the center of the primary monitor?", "Confirm") {
		return 0, nil
	}

	display, err := s.backend.PrimaryDisplay()
	if err != nil {
		return 0, fmt.Errorf("failed to get primary display: %w", err)
	}
	windows, err := s.backend.ListWindows()
	if err != nil {
		return 0, fmt.Errorf("failed to list windows: %w", err)
	}

	moved := 0
	for _, w := range windows {
		dest := Centered(display.Bounds, w.Bounds)
		if err := s.geom.SetRect(w.ID, dest); err != nil {
			s.logger.Warn("failed to center window", "window", uint32(w.ID), "error", err)
			continue
		}
		moved++
	}
	s.prompter.Notify("All windows have been centered", "Completed")
	return moved, nil
}

// Centered returns r moved so its center matches area's center.
func Centered(area, r platform.Rect) platform.Rect {
	return platform.Rect{
		X:      area.X + (area.Width-r.Width)/2,
		Y:      area.Y + (area.Height-r.Height)/2,
		Width:  r.Width,
		Height: r.Height,
	}
}
