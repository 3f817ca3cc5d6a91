package desktops

import (
	"io"
	"log/slog"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/1broseidon/multimanager/internal/platform"
)

type answer struct {
	yes     bool
	notices []string
}

func (a *answer) Confirm(message, title string) bool { return a.yes }
func (a *answer) Notify(message, title string)       { a.notices = append(a.notices, message) }

func newTestService(drv *platform.MemoryDriver, p *answer) *Service {
	return NewService(drv, platform.NewPort(drv), p, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSaveLoad_RestoresDesktopAndRect(t *testing.T) {
	drv := platform.NewMemoryDriver()
	drv.SetDesktopCount(3)
	drv.Add(1, "Editor", platform.Rect{X: 10, Y: 20, Width: 300, Height: 200})
	drv.Add(2, "Browser", platform.Rect{X: 50, Y: 60, Width: 800, Height: 600})
	drv.SetWindowDesktop(2, 2)
	svc := newTestService(drv, &answer{})

	path := filepath.Join(t.TempDir(), "desktop_layout.json")
	n, err := svc.Save(path)
	if err != nil || n != 2 {
		t.Fatalf("Save() = %d, %v", n, err)
	}

	// user rearranges, then closes one window
	drv.MoveResize(1, platform.Rect{X: 0, Y: 0, Width: 1, Height: 1})
	drv.SetWindowDesktop(2, 0)
	drv.Add(3, "New", platform.Rect{Width: 5, Height: 5})

	stats, err := svc.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if stats != (RestoreStats{Restored: 2}) {
		t.Fatalf("stats = %+v", stats)
	}
	w1, _ := drv.Window(1)
	if w1.Bounds != (platform.Rect{X: 10, Y: 20, Width: 300, Height: 200}) {
		t.Fatalf("window 1 at %v", w1.Bounds)
	}
	w2, _ := drv.Window(2)
	if w2.Desktop != 2 {
		t.Fatalf("window 2 on desktop %d, want 2", w2.Desktop)
	}
}

func TestRestore_MissingWindowsAndSingleDesktop(t *testing.T) {
	drv := platform.NewMemoryDriver()
	drv.Add(1, "a", platform.Rect{Width: 10, Height: 10})
	svc := newTestService(drv, &answer{})

	stats := svc.Restore([]WindowRecord{
		{DesktopIndex: 4, ID: 1, Title: "a", Rect: [4]int{1, 2, 3, 4}},
		{DesktopIndex: 0, ID: 99, Title: "gone", Rect: [4]int{1, 2, 3, 4}},
	})
	if stats != (RestoreStats{Restored: 1, Missing: 1}) {
		t.Fatalf("stats = %+v", stats)
	}
	for _, c := range drv.Calls() {
		if c == "desktop 1 4" {
			t.Fatalf("moved window to a desktop that does not exist")
		}
	}
}

func TestCapture_RecordFormat(t *testing.T) {
	drv := platform.NewMemoryDriver()
	drv.Add(42, "test", platform.Rect{X: 1, Y: 2, Width: 3, Height: 4})
	drv.Add(43, "hidden", platform.Rect{})
	drv.SetMinimized(43, true)
	svc := newTestService(drv, &answer{})

	got, err := svc.Capture()
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	want := []WindowRecord{{DesktopIndex: 0, ID: 42, Title: "test", Rect: [4]int{1, 2, 3, 4}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Capture() = %+v, want %+v", got, want)
	}
}

func TestCenterAll(t *testing.T) {
	drv := platform.NewMemoryDriver()
	drv.Add(1, "a", platform.Rect{X: 0, Y: 0, Width: 400, Height: 300})
	p := &answer{yes: true}
	svc := newTestService(drv, p)

	n, err := svc.CenterAll()
	if err != nil || n != 1 {
		t.Fatalf("CenterAll() = %d, %v", n, err)
	}
	w, _ := drv.Window(1)
	if w.Bounds != (platform.Rect{X: 760, Y: 390, Width: 400, Height: 300}) {
		t.Fatalf("window at %v", w.Bounds)
	}
	if len(p.notices) != 1 || p.notices[0] != "All windows have been centered" {
		t.Fatalf("notices = %v", p.notices)
	}
}

func TestCenterAll_Declined(t *testing.T) {
	drv := platform.NewMemoryDriver()
	drv.Add(1, "a", platform.Rect{Width: 400, Height: 300})
	p := &answer{}
	svc := newTestService(drv, p)

	if n, err := svc.CenterAll(); err != nil || n != 0 {
		t.Fatalf("CenterAll() = %d, %v", n, err)
	}
	if len(drv.Calls()) != 0 || len(p.notices) != 0 {
		t.Fatalf("declined prompt still acted: calls %v notices %v", drv.Calls(), p.notices)
	}
}
