package schedule

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileLock_AcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.lock")

	l := NewFileLock(path)
	ok, err := l.TryLock()
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected to acquire the lock")
	}

	if err := l.Unlock(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("lock file should be removed after unlock")
	}

	// Reacquire after release.
	ok, err = l.TryLock()
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("expected to reacquire the lock")
	}
	l.Unlock()
}

func TestFileLock_UnlockWithoutLockIsNoop(t *testing.T) {
	l := NewFileLock(filepath.Join(t.TempDir(), "daemon.lock"))
	if err := l.Unlock(); err != nil {
		t.Errorf("unlock without lock should be a no-op, got %v", err)
	}
}
