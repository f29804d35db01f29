package autosave

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"anim-studio/internal/domain"
)

// newTestService builds a service over a temp store with mutable source.
func newTestService(t *testing.T) (*Service, *Store, *string) {
	t.Helper()
	store := NewStoreForTests(t.TempDir(), testClock())
	code := ""
	svc := NewService(store, 0, func() (string, string) {
		return code, "/work/scene.py"
	})
	return svc, store, &code
}

// TestServiceSaveNowWritesDirtyCode verifies a changed snapshot is saved.
func TestServiceSaveNowWritesDirtyCode(t *testing.T) {
	svc, store, code := newTestService(t)
	*code = "class A(Scene):\n    pass\n"

	saved, err := svc.SaveNow()
	if err != nil {
		t.Fatalf("SaveNow() error = %v", err)
	}
	if !saved {
		t.Fatal("expected snapshot to be written")
	}

	records, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if got := svc.State().Indicator; got != domain.AutosaveIndicatorSaved {
		t.Fatalf("indicator = %s, want saved", got)
	}
}

// TestServiceSkipsUnchangedCode verifies no duplicate snapshots.
func TestServiceSkipsUnchangedCode(t *testing.T) {
	svc, store, code := newTestService(t)
	*code = "same code"

	if saved, err := svc.SaveNow(); err != nil || !saved {
		t.Fatalf("first save = (%v, %v), want (true, nil)", saved, err)
	}
	if saved, err := svc.SaveNow(); err != nil || saved {
		t.Fatalf("second save = (%v, %v), want (false, nil)", saved, err)
	}

	records, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
}

// TestServiceSkipsEmptyCode verifies blank editors are never snapshotted.
func TestServiceSkipsEmptyCode(t *testing.T) {
	svc, store, code := newTestService(t)

	for _, blank := range []string{"", "   \n\t"} {
		*code = blank
		if saved, err := svc.SaveNow(); err != nil || saved {
			t.Fatalf("SaveNow(%q) = (%v, %v), want (false, nil)", blank, saved, err)
		}
	}

	records, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("records = %d, want 0", len(records))
	}
}

// TestServiceIndicatorLifecycle verifies the tri-state transitions.
func TestServiceIndicatorLifecycle(t *testing.T) {
	svc, _, code := newTestService(t)
	if got := svc.State().Indicator; got != domain.AutosaveIndicatorSaved {
		t.Fatalf("initial indicator = %s, want saved", got)
	}

	svc.MarkDirty()
	if got := svc.State().Indicator; got != domain.AutosaveIndicatorUnsaved {
		t.Fatalf("dirty indicator = %s, want unsaved", got)
	}

	*code = "v1"
	if _, err := svc.SaveNow(); err != nil {
		t.Fatalf("SaveNow() error = %v", err)
	}
	state := svc.State()
	if state.Indicator != domain.AutosaveIndicatorSaved {
		t.Fatalf("indicator = %s, want saved", state.Indicator)
	}
	if state.LastKey == "" {
		t.Fatal("expected last key after save")
	}
	if state.LastSavedAt.IsZero() {
		t.Fatal("expected last saved time after save")
	}
}

// TestServiceSaveFailureMarksUnsaved verifies the indicator never wedges
// in saving when persistence fails and the state carries the reason.
func TestServiceSaveFailureMarksUnsaved(t *testing.T) {
	blocked := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(blocked, []byte("file"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	code := "v1"
	svc := NewService(NewStore(blocked), 0, func() (string, string) {
		return code, ""
	})
	var notified []domain.AutosaveState
	svc.SetStateHandler(func(state domain.AutosaveState) {
		notified = append(notified, state)
	})

	if saved, err := svc.SaveNow(); err == nil || saved {
		t.Fatalf("SaveNow() = (%v, %v), want failure", saved, err)
	}
	state := svc.State()
	if state.Indicator != domain.AutosaveIndicatorUnsaved {
		t.Fatalf("indicator = %s, want unsaved", state.Indicator)
	}
	if state.Error == "" {
		t.Fatal("state error is empty, want the save failure reason")
	}
	if len(notified) == 0 || notified[len(notified)-1].Error != state.Error {
		t.Fatalf("notifications = %+v, want last one carrying %q", notified, state.Error)
	}

	if err := os.Remove(blocked); err != nil {
		t.Fatalf("remove blocker: %v", err)
	}
	if saved, err := svc.SaveNow(); err != nil || !saved {
		t.Fatalf("SaveNow() after unblock = (%v, %v), want (true, nil)", saved, err)
	}
	if state := svc.State(); state.Error != "" {
		t.Fatalf("state error = %q, want cleared after success", state.Error)
	}
}

// TestServiceSeedPreventsResave verifies baseline adoption after loading.
func TestServiceSeedPreventsResave(t *testing.T) {
	svc, store, code := newTestService(t)
	*code = "loaded from disk"
	svc.Seed(*code)

	if saved, err := svc.SaveNow(); err != nil || saved {
		t.Fatalf("SaveNow() = (%v, %v), want (false, nil)", saved, err)
	}
	records, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("records = %d, want 0", len(records))
	}
}

// TestServiceRecoveryFlow verifies latest-or-discard-all startup recovery.
func TestServiceRecoveryFlow(t *testing.T) {
	svc, store, code := newTestService(t)
	*code = "old version"
	if _, err := svc.SaveNow(); err != nil {
		t.Fatalf("save old: %v", err)
	}
	*code = "new version"
	if _, err := svc.SaveNow(); err != nil {
		t.Fatalf("save new: %v", err)
	}

	latest, err := svc.Latest()
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest.Code != "new version" {
		t.Fatalf("recovered code = %q, want new version", latest.Code)
	}

	deleted, err := svc.DiscardAll()
	if err != nil {
		t.Fatalf("DiscardAll() error = %v", err)
	}
	if deleted != 2 {
		t.Fatalf("deleted = %d, want 2", deleted)
	}
	if _, err := store.Latest(); err != ErrNoRecords {
		t.Fatalf("Latest() after discard error = %v, want %v", err, ErrNoRecords)
	}
}

// TestServiceIntervalLoop verifies the ticker saves dirty code.
func TestServiceIntervalLoop(t *testing.T) {
	store := NewStoreForTests(t.TempDir(), testClock())
	svc := NewService(store, 20*time.Millisecond, func() (string, string) {
		return "ticker content", ""
	})

	svc.Start()
	defer svc.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		records, err := store.List()
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(records) > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("timed out waiting for interval save")
}
