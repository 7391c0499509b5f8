package models

import (
	"fmt"
	"strings"
	"time"
)

// Settings is the singleton configuration row shared by all tenants.
// ExtraIDCounter is the only piece of process-wide mutable state; it is
// advanced under a serialized database update (see storage.SettingsRepository).
type Settings struct {
	PollIntervalMinutes int   `json:"poll_interval_minutes"`
	ExtraIDCounter      int64 `json:"extra_id_counter"`
}

// PollInterval returns the polling interval as a duration.
func (s Settings) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalMinutes) * time.Minute
}

const (
	extraIDPrefix     = "ALT"
	extraIDNameLen    = 4
	extraIDNamePad    = 'X'
	extraIDCounterFmt = "%08d"
)

// FormatExtraID builds the human-readable correlation id for an alert:
// "ALT" + 4-character uppercase customer-name prefix (space-stripped,
// padded with X) + 8-digit zero-padded counter, e.g. ALTACME00000042.
// The format is a contract with downstream consumers; do not change it.
func FormatExtraID(customerName string, counter int64) string {
	name := strings.ToUpper(strings.ReplaceAll(customerName, " ", ""))
	runes := []rune(name)
	if len(runes) > extraIDNameLen {
		runes = runes[:extraIDNameLen]
	}
	for len(runes) < extraIDNameLen {
		runes = append(runes, extraIDNamePad)
	}
	return extraIDPrefix + string(runes) + fmt.Sprintf(extraIDCounterFmt, counter)
}
