package models

import "time"

// Credential is one tenant's API credential for the detection service.
// Credentials are created by the onboarding flow and are read-only from
// the collector's perspective; they may disappear or flip inactive
// between polling cycles.
type Credential struct {
	ID               string    `json:"id"`
	PartnerTenantID  string    `json:"partner_tenant_id"`
	CustomerTenantID string    `json:"customer_tenant_id"`
	CustomerName     string    `json:"customer_name"`
	ClientID         string    `json:"client_id"`
	ClientSecret     string    `json:"-"` // decrypted in memory, never serialized
	DatacenterURL    string    `json:"datacenter_url"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
