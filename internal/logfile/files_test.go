package logfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestScanStates(t *testing.T) {
	dir := t.TempDir()

	write := func(name string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("line\n"), 0640); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}

	active := write("acme.log")
	sent := write("globex.log.sent")
	write("acme.log.lock") // ignored
	write("notes.txt")     // ignored

	files, err := Scan(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2: %+v", len(files), files)
	}

	states := map[string]State{}
	for _, f := range files {
		states[f.Path] = f.State
	}
	if states[active] != StateActive {
		t.Errorf("state of %s = %s, want active", active, states[active])
	}
	if states[sent] != StateSent {
		t.Errorf("state of %s = %s, want sent", sent, states[sent])
	}
}

func TestScanMissingDirectory(t *testing.T) {
	files, err := Scan(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("scan missing dir: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("got %d files, want 0", len(files))
	}
}

func TestMarkSent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "acme.log")
	if err := os.WriteFile(path, []byte("line\n"), 0640); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := MarkSent(path); err != nil {
		t.Fatalf("mark sent: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("active file should be gone after mark sent")
	}
	if _, err := os.Stat(filepath.Join(dir, "acme.log.sent")); err != nil {
		t.Errorf("sent file missing: %v", err)
	}

	// A sent file cannot be marked again
	if err := MarkSent(filepath.Join(dir, "acme.log.sent")); err == nil {
		t.Error("expected error marking a sent file")
	}
}

func TestLockExclusion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "acme.log")
	if err := os.WriteFile(path, []byte("line\n"), 0640); err != nil {
		t.Fatalf("write: %v", err)
	}

	release, err := Lock(path)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	if _, err := Lock(path); !errors.Is(err, ErrLocked) {
		t.Errorf("second lock error = %v, want ErrLocked", err)
	}

	release()

	release2, err := Lock(path)
	if err != nil {
		t.Fatalf("relock after release: %v", err)
	}
	release2()
}
