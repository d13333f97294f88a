package effects

import (
	"os"
	"path/filepath"
	"testing"
)

func tempFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	return path
}

func TestArena_ReleaseDeletesExactlyOnce(t *testing.T) {
	dir := t.TempDir()
	path := tempFile(t, dir, "a.png")

	arena := NewArena()
	arena.Track(path)

	if err := arena.Release(path); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Released file still exists")
	}

	// Second release must fail, the handle is gone.
	if err := arena.Release(path); err == nil {
		t.Error("Expected error releasing an already-released path")
	}
}

func TestArena_ReleaseUntrackedFails(t *testing.T) {
	dir := t.TempDir()
	path := tempFile(t, dir, "stray.png")

	arena := NewArena()
	if err := arena.Release(path); err == nil {
		t.Error("Expected error releasing an untracked path")
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("Untracked file must not be deleted")
	}
}

func TestArena_ReplaceHandsOwnership(t *testing.T) {
	dir := t.TempDir()
	old := tempFile(t, dir, "old.png")
	new := tempFile(t, dir, "new.png")

	arena := NewArena()
	arena.Track(old)

	if err := arena.Replace(old, new); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("Replaced input still exists")
	}
	if !arena.Tracked(new) {
		t.Error("New intermediate is not tracked")
	}
	if arena.Len() != 1 {
		t.Errorf("Expected 1 live intermediate, got %d", arena.Len())
	}
}

func TestArena_CloseSweepsLeftovers(t *testing.T) {
	dir := t.TempDir()
	a := tempFile(t, dir, "a.png")
	b := tempFile(t, dir, "b.png")

	arena := NewArena()
	arena.Track(a)
	arena.Track(b)

	if err := arena.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	for _, path := range []string{a, b} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("Close left %s behind", path)
		}
	}
	if arena.Len() != 0 {
		t.Errorf("Expected empty arena after Close, got %d", arena.Len())
	}
}

func TestArena_ForgetKeepsFile(t *testing.T) {
	dir := t.TempDir()
	path := tempFile(t, dir, "promoted.png")

	arena := NewArena()
	arena.Track(path)
	arena.Forget(path)

	if err := arena.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("Forgotten file must survive Close")
	}
}
