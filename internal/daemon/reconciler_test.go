package daemon

import (
	"context"
	"testing"
	"time"

	"github.com/1broseidon/multimanager/internal/platform"
)

func TestReconciler_InvalidatesClosedWindows(t *testing.T) {
	drv := platform.NewMemoryDriver()
	drv.Add(1, "a", home)
	drv.Add(2, "b", home)
	mgr := newTestManager(t, drv)
	idx, _ := mgr.Add("W", "")
	mgr.CaptureWindow(idx, 1)
	mgr.CaptureWindow(idx, 2)

	r := NewReconciler(ReconcilerConfig{Logger: quietLogger()}, mgr)
	if got := r.ReconcileNow(); got != 2 {
		t.Fatalf("valid = %d, want 2", got)
	}

	drv.Remove(2)
	if got := r.ReconcileNow(); got != 1 {
		t.Fatalf("valid = %d, want 1", got)
	}
	if ws := mgr.Workspaces()[idx]; ws.Windows[1].Valid {
		t.Fatalf("closed window still valid")
	}
}

func TestReconciler_RunStopsOnCancel(t *testing.T) {
	mgr := newTestManager(t, platform.NewMemoryDriver())
	r := NewReconciler(ReconcilerConfig{Interval: time.Millisecond, Logger: quietLogger()}, mgr)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
