// Package shipper drains unsent log files to the SIEM over UDP and
// marks them sent once every line has been transmitted.
package shipper

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"github.com/good-yellow-bee/alertcef/internal/logfile"
	"github.com/good-yellow-bee/alertcef/internal/metrics"
)

// Sender transmits one CEF line to the SIEM. Delivery is fire-and-forget;
// errors are transport-level only.
type Sender interface {
	Send(line []byte) error
	Close() error
}

// UDPSender sends each line as one UDP datagram to a fixed host:port.
type UDPSender struct {
	conn net.Conn
}

// NewUDPSender dials the SIEM collector.
func NewUDPSender(addr string) (*UDPSender, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial siem %s: %w", addr, err)
	}
	return &UDPSender{conn: conn}, nil
}

// Send writes one datagram. No response is read or expected.
func (s *UDPSender) Send(line []byte) error {
	if _, err := s.conn.Write(line); err != nil {
		return fmt.Errorf("send datagram: %w", err)
	}
	return nil
}

// Close closes the connection.
func (s *UDPSender) Close() error {
	return s.conn.Close()
}

// Config holds shipper settings.
type Config struct {
	// Dirs are the log directories to scan (primary and fallback).
	Dirs []string

	// SIEMAddr is the collector host:port.
	SIEMAddr string

	// MinAge skips files modified more recently than this, so a file
	// the collector is still appending to is never marked sent
	// (default: 2m).
	MinAge time.Duration
}

// Shipper scans for unsent log files and drains them.
type Shipper struct {
	cfg Config

	// newSender is swappable for tests.
	newSender func() (Sender, error)
}

// New creates a shipper.
func New(cfg Config) *Shipper {
	if cfg.MinAge <= 0 {
		cfg.MinAge = 2 * time.Minute
	}
	return &Shipper{
		cfg: cfg,
		newSender: func() (Sender, error) {
			return NewUDPSender(cfg.SIEMAddr)
		},
	}
}

// Run performs one scan-and-ship pass over all configured directories.
// A file-level failure leaves that file unmarked for the next run and
// never aborts the pass.
func (s *Shipper) Run(ctx context.Context) error {
	sender, err := s.newSender()
	if err != nil {
		return err
	}
	defer sender.Close()

	for _, dir := range s.cfg.Dirs {
		files, err := logfile.Scan(dir)
		if err != nil {
			log.Printf("scan %s: %v", dir, err)
			continue
		}
		for _, f := range files {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if f.State != logfile.StateActive {
				continue
			}
			if time.Since(f.ModTime) < s.cfg.MinAge {
				continue
			}
			if err := s.shipFile(sender, f); err != nil {
				if errors.Is(err, logfile.ErrLocked) {
					continue
				}
				metrics.ShipFailuresTotal.Inc()
				log.Printf("ship %s: %v (file left unmarked, will retry in full)", f.Path, err)
			}
		}
	}
	return nil
}

// shipFile transmits every line of one file, then marks it sent. The
// rename happens only after the last line went out without a transport
// error; a mid-file failure leaves the file active so the next run
// retries it wholesale. Downstream duplicates are accepted.
func (s *Shipper) shipFile(sender Sender, f logfile.File) error {
	release, err := logfile.Lock(f.Path)
	if err != nil {
		return err
	}
	defer release()

	file, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer file.Close()

	lines := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := sender.Send(line); err != nil {
			return fmt.Errorf("after %d lines: %w", lines, err)
		}
		lines++
		metrics.ShippedLinesTotal.Inc()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read: %w", err)
	}

	if err := logfile.MarkSent(f.Path); err != nil {
		return err
	}
	metrics.ShippedFilesTotal.Inc()
	log.Printf("shipped %s (%d lines)", f.Path, lines)
	return nil
}
