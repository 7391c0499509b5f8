package models

import "time"

// Device is an entry in the managed-device inventory. The collector
// consults it read-only, by hostname, to decide whether an alert refers
// to a host the system actually tracks.
type Device struct {
	ID              string    `json:"id"`
	PartnerTenantID string    `json:"partner_tenant_id"`
	Hostname        string    `json:"hostname"`
	CreatedAt       time.Time `json:"created_at"`
}
