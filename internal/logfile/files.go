package logfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	activeSuffix = ".log"
	sentSuffix   = ".log.sent"
	lockSuffix   = ".lock"
)

// State is the lifecycle state of a log file.
type State string

const (
	// StateActive means the collector may still append to the file.
	StateActive State = "active"
	// StateSent means the shipper has transmitted every line.
	StateSent State = "sent"
)

// File identifies one per-tenant log file and its state.
type File struct {
	Path    string
	State   State
	ModTime time.Time
	Size    int64
}

// ErrLocked is returned when another shipper holds the file's lock.
var ErrLocked = errors.New("log file is locked by another shipper")

// Scan lists the log files under a directory with their states. Lock
// markers and unrelated files are ignored. A missing directory yields
// an empty listing.
func Scan(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read log directory %s: %w", dir, err)
	}

	var files []File
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()

		var state State
		switch {
		case strings.HasSuffix(name, sentSuffix):
			state = StateSent
		case strings.HasSuffix(name, activeSuffix):
			state = StateActive
		default:
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		files = append(files, File{
			Path:    filepath.Join(dir, name),
			State:   state,
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}
	return files, nil
}

// MarkSent transitions an active file to sent by atomic rename. The
// rename only happens after the shipper has transmitted every line.
func MarkSent(path string) error {
	if !strings.HasSuffix(path, activeSuffix) {
		return fmt.Errorf("not an active log file: %s", path)
	}
	sent := strings.TrimSuffix(path, activeSuffix) + sentSuffix
	if err := os.Rename(path, sent); err != nil {
		return fmt.Errorf("mark sent %s: %w", path, err)
	}
	return nil
}

// Lock takes an exclusive per-file lock via an O_EXCL marker file so
// two shipper runs never drain the same file. The returned release
// function removes the marker.
func Lock(path string) (release func(), err error) {
	lockPath := path + lockSuffix
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0640)
	if os.IsExist(err) {
		return nil, ErrLocked
	}
	if err != nil {
		return nil, fmt.Errorf("create lock %s: %w", lockPath, err)
	}
	f.Close()
	return func() { os.Remove(lockPath) }, nil
}
