package model

import "fmt"

// AuthError represents a failed session open for a tenant. The tenant is
// skipped for the rest of the run.
type AuthError struct {
	Tenant string
	Cause  error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("login failed for %s: %v", e.Tenant, e.Cause)
	}
	return fmt.Sprintf("login failed for %s", e.Tenant)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// NewAuthError creates a new auth error
func NewAuthError(tenant string, cause error) *AuthError {
	return &AuthError{Tenant: tenant, Cause: cause}
}

// FetchError represents a failed delivery-note page retrieval. The tenant
// stops paging; the rest of the run continues.
type FetchError struct {
	Tenant string
	Page   int
	Cause  error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch page %d failed for %s: %v", e.Page, e.Tenant, e.Cause)
	}
	return fmt.Sprintf("fetch page %d failed for %s", e.Page, e.Tenant)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// NewFetchError creates a new fetch error
func NewFetchError(tenant string, page int, cause error) *FetchError {
	return &FetchError{Tenant: tenant, Page: page, Cause: cause}
}
