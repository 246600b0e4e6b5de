package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/meyendtris/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.StartSession("s1", "meyendtris", core.InputGaze, time.Now()); err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()
	if _, err := store.Session("s1"); err != nil {
		t.Errorf("session lost across reopen: %v", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	store := openTestStore(t)
	start := time.Unix(1700000000, 0)
	end := start.Add(90 * time.Second)

	if err := store.StartSession("abc", "meyendtris", core.InputMouse, start); err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}

	sess, err := store.Session("abc")
	if err != nil {
		t.Fatalf("Session() failed: %v", err)
	}
	if !sess.EndedAt.IsZero() || sess.Duration() != 0 {
		t.Error("running session has no end")
	}

	st := core.ModuleState{Pieces: 12, Lines: 3, Undos: 2, Restarts: 1}
	if err := store.EndSession("abc", st, end); err != nil {
		t.Fatalf("EndSession() failed: %v", err)
	}

	sess, err = store.Session("abc")
	if err != nil {
		t.Fatal(err)
	}
	if sess.Module != "meyendtris" || sess.Input != core.InputMouse {
		t.Errorf("session = %+v", sess)
	}
	if sess.Pieces != 12 || sess.Lines != 3 || sess.Undos != 2 || sess.Restarts != 1 {
		t.Errorf("counters = %+v", sess)
	}
	if !sess.StartedAt.Equal(start) || sess.Duration() != 90*time.Second {
		t.Errorf("times = %v .. %v", sess.StartedAt, sess.EndedAt)
	}
}

func TestSessionNotFound(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.Session("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Session() = %v, want ErrSessionNotFound", err)
	}
	if err := store.EndSession("missing", core.ModuleState{}, time.Now()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("EndSession() = %v, want ErrSessionNotFound", err)
	}
}

func TestDuplicateSessionRejected(t *testing.T) {
	store := openTestStore(t)
	now := time.Now()
	if err := store.StartSession("dup", "meyendtris", core.InputKeyboard, now); err != nil {
		t.Fatal(err)
	}
	if err := store.StartSession("dup", "meyendtris", core.InputKeyboard, now); err == nil {
		t.Error("duplicate session id should fail")
	}
}

func TestRecentSessions(t *testing.T) {
	store := openTestStore(t)
	base := time.Unix(1700000000, 0)

	for i, id := range []string{"first", "second", "third"} {
		if err := store.StartSession(id, "meyendtris", core.InputKeyboard, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"limited", 2, []string{"third", "second"}},
		{"all", 10, []string{"third", "second", "first"}},
		{"default", 0, []string{"third", "second", "first"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := store.RecentSessions(tc.limit)
			if err != nil {
				t.Fatalf("RecentSessions() failed: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %d sessions, want %d", len(got), len(tc.want))
			}
			for i := range tc.want {
				if got[i].ID != tc.want[i] {
					t.Errorf("session %d = %s, want %s", i, got[i].ID, tc.want[i])
				}
			}
		})
	}
}

func TestMarkers(t *testing.T) {
	store := openTestStore(t)
	at := time.Unix(1700000000, 500)

	records := []struct {
		session string
		name    string
		code    int
		tick    uint64
	}{
		{"s1", "spawn", 1, 1},
		{"s1", "drop", 4, 40},
		{"s2", "spawn", 1, 1},
		{"s1", "spawn", 1, 41},
	}
	for _, r := range records {
		if err := store.RecordMarker(r.session, r.name, r.code, r.tick, at); err != nil {
			t.Fatalf("RecordMarker() failed: %v", err)
		}
	}

	got, err := store.Markers("s1")
	if err != nil {
		t.Fatalf("Markers() failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d markers, want 3", len(got))
	}
	if got[1].Name != "drop" || got[1].Code != 4 || got[1].Tick != 40 || !got[1].At.Equal(at) {
		t.Errorf("marker = %+v", got[1])
	}

	counts, err := store.MarkerCounts("s1")
	if err != nil {
		t.Fatalf("MarkerCounts() failed: %v", err)
	}
	if counts["spawn"] != 2 || counts["drop"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestDeleteSession(t *testing.T) {
	store := openTestStore(t)
	if err := store.StartSession("gone", "meyendtris", core.InputKeyboard, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordMarker("gone", "spawn", 1, 1, time.Now()); err != nil {
		t.Fatal(err)
	}

	if err := store.DeleteSession("gone"); err != nil {
		t.Fatalf("DeleteSession() failed: %v", err)
	}
	if _, err := store.Session("gone"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("session should be deleted")
	}
	if m, _ := store.Markers("gone"); len(m) != 0 {
		t.Error("markers should be deleted")
	}
}
