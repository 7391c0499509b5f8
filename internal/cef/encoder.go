// Package cef serializes alerts into Common Event Format lines.
//
// The output is a wire contract with the downstream SIEM's parser:
// field order, the escaping order, and the severity table must not
// change.
package cef

import (
	"strconv"
	"strings"
	"time"

	"github.com/good-yellow-bee/alertcef/internal/models"
)

// Event is a normalized alert ready for CEF encoding.
type Event struct {
	// EventID is the CEF signature id; the pipeline uses the source
	// alert id so every line carries it for the file-based dedup scan.
	// Alert ids are opaque vendor identifiers without backslash or
	// pipe, so header escaping leaves them verbatim.
	EventID string

	// Name is the human-readable event name (the alert category).
	Name string

	// Severity is the source severity label.
	Severity models.Severity

	// CustomerName labels the tenant (cs1).
	CustomerName string

	// RawJSON is the full raw event payload (cs2).
	RawJSON string

	// ResourceID is the affected resource (cs3).
	ResourceID string

	// DetectedAt is the detection timestamp (rt, epoch millis).
	DetectedAt time.Time
}

// Encoder builds CEF:0 lines with fixed vendor fields.
type Encoder struct {
	vendor  string
	product string
	version string
}

// NewEncoder creates an encoder with the given device vendor fields.
func NewEncoder(vendor, product, version string) *Encoder {
	return &Encoder{vendor: vendor, product: product, version: version}
}

// Severity maps a source severity to the CEF 0-10 scale. Unrecognized
// values map to 5.
func Severity(s models.Severity) int {
	switch s {
	case models.SeverityInfo:
		return 3
	case models.SeverityWarning:
		return 6
	case models.SeverityError:
		return 8
	case models.SeverityCritical:
		return 9
	default:
		return 5
	}
}

// Encode serializes an event as a single CEF line:
//
//	CEF:0|vendor|product|version|eventId|name|severity|extension
func (e *Encoder) Encode(ev Event) string {
	var b strings.Builder

	b.WriteString("CEF:0|")
	b.WriteString(escapeHeader(e.vendor))
	b.WriteByte('|')
	b.WriteString(escapeHeader(e.product))
	b.WriteByte('|')
	b.WriteString(escapeHeader(e.version))
	b.WriteByte('|')
	b.WriteString(escapeHeader(ev.EventID))
	b.WriteByte('|')
	b.WriteString(escapeHeader(ev.Name))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(Severity(ev.Severity)))
	b.WriteByte('|')

	ext := []struct{ key, value string }{
		{"cs1Label", "CustomerName"},
		{"cs1", ev.CustomerName},
		{"cs2Label", "RawEvent"},
		{"cs2", ev.RawJSON},
		{"cs3Label", "ResourceId"},
		{"cs3", ev.ResourceID},
		{"rt", strconv.FormatInt(ev.DetectedAt.UnixMilli(), 10)},
	}
	for i, kv := range ext {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(kv.key)
		b.WriteByte('=')
		b.WriteString(escapeExtension(kv.value))
	}

	return b.String()
}

// escapeExtension escapes an extension value: backslash, then pipe,
// then equals, then line breaks. The order avoids double-escaping.
// Newlines in raw payloads must become the two-character sequence \n
// so every alert stays one physical line.
func escapeExtension(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `|`, `\|`)
	s = strings.ReplaceAll(s, `=`, `\=`)
	s = strings.ReplaceAll(s, "\r", `\r`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

// escapeHeader escapes a header field: backslash, then pipe.
func escapeHeader(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `|`, `\|`)
	return s
}
