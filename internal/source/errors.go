package source

import "fmt"

// AuthError indicates the OAuth2 token exchange failed for one tenant.
// It is tenant-scoped: the scheduler logs it and moves to the next tenant.
type AuthError struct {
	TenantID string
	Status   int
	Err      error
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("auth failed for tenant %s: status %d", e.TenantID, e.Status)
	}
	return fmt.Sprintf("auth failed for tenant %s: %v", e.TenantID, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// FetchError indicates the alert list call failed for one tenant.
// Like AuthError it never aborts processing of other tenants.
type FetchError struct {
	TenantID string
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch failed for tenant %s: status %d", e.TenantID, e.Status)
	}
	return fmt.Sprintf("fetch failed for tenant %s: %v", e.TenantID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
