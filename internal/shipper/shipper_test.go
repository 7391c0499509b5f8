package shipper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type fakeSender struct {
	sent   []string
	failAt int // fail on the Nth send (1-based), 0 means never
	calls  int
	closed bool
}

func (f *fakeSender) Send(line []byte) error {
	f.calls++
	if f.failAt > 0 && f.calls >= f.failAt {
		return errors.New("network unreachable")
	}
	f.sent = append(f.sent, string(line))
	return nil
}

func (f *fakeSender) Close() error {
	f.closed = true
	return nil
}

func writeLog(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0640); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	// Back-date so the min-age guard does not skip it.
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	return path
}

func newTestShipper(dir string, sender Sender) *Shipper {
	s := New(Config{Dirs: []string{dir}, MinAge: time.Minute})
	s.newSender = func() (Sender, error) { return sender, nil }
	return s
}

func TestRunShipsAndMarksSent(t *testing.T) {
	dir := t.TempDir()
	path := writeLog(t, dir, "acme-corp.log",
		"CEF:0|V|P|1|a1|Malware|8|msg=one",
		"CEF:0|V|P|1|a2|Malware|8|msg=two",
	)

	sender := &fakeSender{}
	s := newTestShipper(dir, sender)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 datagrams, got %d", len(sender.sent))
	}
	if sender.sent[0] != "CEF:0|V|P|1|a1|Malware|8|msg=one" {
		t.Errorf("unexpected first line: %q", sender.sent[0])
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("active file should be renamed, stat err = %v", err)
	}
	if _, err := os.Stat(path + ".sent"); err != nil {
		t.Errorf("sent file missing: %v", err)
	}
	if !sender.closed {
		t.Error("sender not closed")
	}
}

func TestRunMidFileFailureLeavesFileActive(t *testing.T) {
	dir := t.TempDir()
	path := writeLog(t, dir, "acme-corp.log",
		"line one", "line two", "line three",
	)

	sender := &fakeSender{failAt: 2}
	s := newTestShipper(dir, sender)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file must stay active after partial send: %v", err)
	}
	if _, err := os.Stat(path + ".sent"); !os.IsNotExist(err) {
		t.Error("file must not be marked sent after partial send")
	}
	if _, err := os.Stat(path + ".lock"); !os.IsNotExist(err) {
		t.Error("lock must be released after failure")
	}

	// Next run retries the whole file, duplicating line one.
	sender2 := &fakeSender{}
	s2 := newTestShipper(dir, sender2)
	if err := s2.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(sender2.sent) != 3 {
		t.Fatalf("retry should resend all 3 lines, got %d", len(sender2.sent))
	}
}

func TestRunSkipsLockedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeLog(t, dir, "acme-corp.log", "line")
	if err := os.WriteFile(path+".lock", nil, 0640); err != nil {
		t.Fatalf("create lock: %v", err)
	}

	sender := &fakeSender{}
	s := newTestShipper(dir, sender)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("locked file must be skipped, sent %d lines", len(sender.sent))
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("locked file must stay in place: %v", err)
	}
}

func TestRunSkipsRecentlyModifiedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "acme-corp.log")
	if err := os.WriteFile(path, []byte("fresh line\n"), 0640); err != nil {
		t.Fatalf("write: %v", err)
	}

	sender := &fakeSender{}
	s := newTestShipper(dir, sender)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("file younger than min age must be skipped, sent %d lines", len(sender.sent))
	}
}

func TestRunIgnoresSentFiles(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "acme-corp.log.sent", "already shipped")

	sender := &fakeSender{}
	s := newTestShipper(dir, sender)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("sent files must be ignored, got %d lines", len(sender.sent))
	}
}

func TestRunMissingDirectory(t *testing.T) {
	sender := &fakeSender{}
	s := newTestShipper(filepath.Join(t.TempDir(), "nope"), sender)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("missing dir must not fail the pass: %v", err)
	}
}

func TestUDPSenderDelivers(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer pc.Close()

	sender, err := NewUDPSender(pc.LocalAddr().String())
	if err != nil {
		t.Fatalf("new sender: %v", err)
	}
	defer sender.Close()

	want := "CEF:0|V|P|1|a1|Malware|8|msg=hello"
	if err := sender.Send([]byte(want)); err != nil {
		t.Fatalf("send: %v", err)
	}

	pc.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 65536)
	n, _, err := pc.ReadFrom(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := string(buf[:n]); got != want {
		t.Errorf("datagram = %q, want %q", got, want)
	}
}

func TestWatchStopsOnContextCancel(t *testing.T) {
	dir := t.TempDir()
	sender := &fakeSender{}
	s := newTestShipper(dir, sender)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx, time.Hour) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop on cancel")
	}
}

func TestRunMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 3; i++ {
		writeLog(t, dir, fmt.Sprintf("tenant-%d.log", i), fmt.Sprintf("line %d", i))
	}

	sender := &fakeSender{}
	s := newTestShipper(dir, sender)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sender.sent) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(sender.sent))
	}
	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, f := range files {
		if !strings.HasSuffix(f.Name(), ".log.sent") {
			t.Errorf("unexpected leftover file %s", f.Name())
		}
	}
}
