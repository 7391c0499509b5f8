// Package models defines the data types shared across the collector.
package models

import (
	"encoding/json"
	"time"
)

// Severity is the severity label reported by the detection API.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// AlertDetails is the free-form details object attached to an alert.
// Only the fields the pipeline needs are decoded; the full payload is
// preserved verbatim in Alert.Raw.
type AlertDetails struct {
	ResourceName string    `json:"resource_name"`
	ResourceID   string    `json:"resource_id"`
	DetectedAt   time.Time `json:"detected_at"`
}

// Alert is a raw alert as returned by the detection API for one tenant.
// Alerts are immutable once fetched and are sourced fresh every poll.
type Alert struct {
	ID           string          `json:"id"`
	Severity     Severity        `json:"severity"`
	Category     string          `json:"category"`
	CustomerName string          `json:"customer_name"`
	Details      AlertDetails    `json:"details"`
	Raw          json.RawMessage `json:"-"` // payload verbatim as fetched
}

// AlertRecord is the persisted form of an alert: one row per distinct
// external alert id per tenant. Records are created once by the log
// writer and never updated or deleted.
type AlertRecord struct {
	ID               string    `json:"id"`
	AlertID          string    `json:"alert_id"`
	ExtraID          string    `json:"extra_id"`
	CustomerName     string    `json:"customer_name"`
	PartnerTenantID  string    `json:"partner_tenant_id"`
	CustomerTenantID string    `json:"customer_tenant_id"`
	ReceivedAt       time.Time `json:"received_at"`
	RawJSON          string    `json:"raw_json"`
}
