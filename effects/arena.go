package effects

import (
	"fmt"
	"os"
)

// Arena tracks ownership of every intermediate file a document produces and
// guarantees each is removed exactly once, including on error paths. Outside
// the currently executing stage the temp dir holds at most one live file per
// document.
type Arena struct {
	live map[string]bool
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{live: make(map[string]bool)}
}

// Track registers a path the arena now owns.
func (a *Arena) Track(path string) {
	a.live[path] = true
}

// Tracked reports whether the arena currently owns path.
func (a *Arena) Tracked(path string) bool {
	return a.live[path]
}

// Release deletes a tracked path now. Releasing an untracked path is an
// error: it means an effect tried to delete a handle it never owned.
func (a *Arena) Release(path string) error {
	if !a.live[path] {
		return fmt.Errorf("arena: %s is not tracked", path)
	}
	delete(a.live, path)
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("arena: removing %s: %w", path, err)
	}
	return nil
}

// Replace atomically hands ownership from the consumed input to the new
// intermediate: new becomes tracked, old is released.
func (a *Arena) Replace(old, new string) error {
	a.Track(new)
	return a.Release(old)
}

// Forget drops a path from tracking without deleting it. Used when a finished
// output is promoted out of the temp dir.
func (a *Arena) Forget(path string) {
	delete(a.live, path)
}

// Close sweeps every path still tracked. Called when a document finishes or
// is abandoned mid-pipeline; a leftover here means a stage errored out.
func (a *Arena) Close() error {
	var firstErr error
	for path := range a.live {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
		delete(a.live, path)
	}
	return firstErr
}

// Len reports how many intermediates are live.
func (a *Arena) Len() int {
	return len(a.live)
}
