package platform

import (
	"errors"
	"reflect"
	"testing"
)

func TestPort_RectOfMissingWindowIsStale(t *testing.T) {
	port := NewPort(NewMemoryDriver())

	if _, err := port.Rect(42); !errors.Is(err, ErrStaleWindow) {
		t.Fatalf("expected ErrStaleWindow, got %v", err)
	}
	if _, err := port.Rect(0); !errors.Is(err, ErrStaleWindow) {
		t.Fatalf("expected ErrStaleWindow for null id, got %v", err)
	}
}

func TestPort_SetRectRestoresBeforeMoving(t *testing.T) {
	drv := NewMemoryDriver()
	drv.Add(7, "editor", Rect{X: 0, Y: 0, Width: 400, Height: 300})
	drv.SetMinimized(7, true)
	port := NewPort(drv)

	target := Rect{X: 500, Y: 500, Width: 400, Height: 300}
	if err := port.SetRect(7, target); err != nil {
		t.Fatalf("SetRect: %v", err)
	}

	want := []string{"restore 7", "move 7 (500,500 400x300)"}
	if got := drv.Calls(); !reflect.DeepEqual(got, want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	w, _ := drv.Window(7)
	if w.Minimized {
		t.Fatalf("expected window to be restored")
	}
	if got, err := port.Rect(7); err != nil || got != target {
		t.Fatalf("Rect() = %v, %v; want %v", got, err, target)
	}
}

func TestPort_SetRectSkipsRestoreForVisibleWindow(t *testing.T) {
	drv := NewMemoryDriver()
	drv.Add(7, "editor", Rect{Width: 10, Height: 10})
	port := NewPort(drv)

	if err := port.SetRect(7, Rect{X: 1, Y: 2, Width: 3, Height: 4}); err != nil {
		t.Fatalf("SetRect: %v", err)
	}
	if got := drv.Calls(); len(got) != 1 || got[0] != "move 7 (1,2 3x4)" {
		t.Fatalf("unexpected calls %v", got)
	}
}

func TestPort_SetRectWrapsNativeFailure(t *testing.T) {
	drv := NewMemoryDriver()
	drv.Add(9, "term", Rect{Width: 10, Height: 10})
	cause := errors.New("BadMatch")
	drv.FailMoves(9, cause)
	port := NewPort(drv)

	err := port.SetRect(9, Rect{Width: 20, Height: 20})
	var geomErr *GeometryError
	if !errors.As(err, &geomErr) {
		t.Fatalf("expected *GeometryError, got %T (%v)", err, err)
	}
	if geomErr.Op != "move" || geomErr.Window != 9 {
		t.Fatalf("unexpected error fields: %+v", geomErr)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected error to wrap cause")
	}
}

func TestPort_StaleWindowNeverReachesDriver(t *testing.T) {
	drv := NewMemoryDriver()
	port := NewPort(drv)

	if err := port.SetRect(3, Rect{Width: 1, Height: 1}); !errors.Is(err, ErrStaleWindow) {
		t.Fatalf("SetRect: expected ErrStaleWindow, got %v", err)
	}
	if err := port.Activate(3); !errors.Is(err, ErrStaleWindow) {
		t.Fatalf("Activate: expected ErrStaleWindow, got %v", err)
	}
	if calls := drv.Calls(); len(calls) != 0 {
		t.Fatalf("expected no native calls, got %v", calls)
	}
}

func TestPort_IsLiveTracksDestruction(t *testing.T) {
	drv := NewMemoryDriver()
	drv.Add(5, "x", Rect{})
	port := NewPort(drv)

	if !port.IsLive(5) {
		t.Fatalf("expected window 5 to be live")
	}
	drv.Remove(5)
	if port.IsLive(5) {
		t.Fatalf("expected window 5 to be gone")
	}
}
