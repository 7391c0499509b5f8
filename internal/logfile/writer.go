// Package logfile manages the per-tenant append-only CEF log files and
// their active/sent lifecycle.
package logfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Writer appends CEF lines to per-tenant log files under a resolved
// root directory. The primary directory is preferred; if it cannot be
// created or written, the writer falls back to the local directory
// exactly once, not per line.
type Writer struct {
	primary  string
	fallback string

	mu   sync.Mutex
	root string // resolved on first use
}

// NewWriter creates a writer with a primary and a fallback directory.
func NewWriter(primary, fallback string) *Writer {
	return &Writer{primary: primary, fallback: fallback}
}

// Root returns the resolved log directory, resolving it if needed.
func (w *Writer) Root() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rootLocked()
}

func (w *Writer) rootLocked() (string, error) {
	if w.root != "" {
		return w.root, nil
	}

	if err := ensureWritableDir(w.primary); err == nil {
		w.root = w.primary
		return w.root, nil
	}

	if err := ensureWritableDir(w.fallback); err != nil {
		return "", fmt.Errorf("no writable log directory (primary %q, fallback %q): %w",
			w.primary, w.fallback, err)
	}
	w.root = w.fallback
	return w.root, nil
}

// ensureWritableDir creates the directory if needed and probes that it
// accepts writes.
func ensureWritableDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("directory not configured")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return err
	}
	probe.Close()
	return os.Remove(probe.Name())
}

// Path returns the active log file path for a customer.
func (w *Writer) Path(customerName string) (string, error) {
	root, err := w.Root()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, SanitizeName(customerName)+activeSuffix), nil
}

// Append writes one CEF line to the customer's active log file,
// creating it if absent. It returns the file path the line landed in.
func (w *Writer) Append(customerName, line string) (string, error) {
	path, err := w.Path(customerName)
	if err != nil {
		return "", err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
	if err != nil {
		return "", fmt.Errorf("open log file %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return "", fmt.Errorf("append to log file %s: %w", path, err)
	}
	return path, nil
}

// Contains reports whether the customer's active log file already has a
// line referencing needle. A missing file means unseen.
func (w *Writer) Contains(customerName, needle string) (bool, error) {
	path, err := w.Path(customerName)
	if err != nil {
		return false, err
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("open log file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if strings.Contains(scanner.Text(), needle) {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("scan log file %s: %w", path, err)
	}
	return false, nil
}

// SanitizeName maps a customer name to a filesystem-safe file stem:
// lowercase, runs of non-alphanumerics collapsed to single dashes.
func SanitizeName(name string) string {
	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	s := strings.TrimRight(b.String(), "-")
	if s == "" {
		return "unnamed"
	}
	return s
}
