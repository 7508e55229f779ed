// Package config holds the plain configuration values consumed by the engine:
// Service Layer endpoint and credentials, the ordered tenant list, and the
// per-tenant business tables (card-code scopes, public-general customers,
// series remaps).
package config

import (
	"os"
	"strings"
	"time"
)

// DefaultWarehouse is stamped on invoice lines whose source line carries no
// warehouse code.
const DefaultWarehouse = "01"

// Tenant describes one company database and its business tables. Immutable
// for the duration of a run.
type Tenant struct {
	// CompanyDB is the Service Layer company database name, e.g. "SBO_Alianza".
	CompanyDB string

	// AllowedCardCodes scopes fetching to a customer subset. Empty means no
	// scoping filter.
	AllowedCardCodes []string

	// PublicGeneral lists the walk-in customer codes subject to the 72-hour
	// cooling-off rule.
	PublicGeneral []string

	// RateSensitive enables the single-exchange-rate filter rule.
	RateSensitive bool
}

// DisplayName returns the tenant name without the SBO_ prefix, matching how
// operators refer to companies in logs and reports.
func (t Tenant) DisplayName() string {
	return strings.TrimPrefix(t.CompanyDB, "SBO_")
}

// IsPublicGeneral reports whether cardCode is in the tenant's public-general
// customer set.
func (t Tenant) IsPublicGeneral(cardCode string) bool {
	for _, c := range t.PublicGeneral {
		if c == cardCode {
			return true
		}
	}
	return false
}

// Config is everything the engine consumes. Parsing and validation of the
// sources (env, flags) happens in cmd; the engine only reads values.
type Config struct {
	Host     string
	Username string
	Password string
	Tenants  []Tenant

	// CallTimeout bounds each remote call.
	CallTimeout time.Duration

	// MaxConcurrentTenants bounds the per-tenant worker pool. 1 means strictly
	// sequential processing.
	MaxConcurrentTenants int

	// InsecureSkipVerify disables TLS certificate verification. Service Layer
	// installations commonly run with self-signed certificates.
	InsecureSkipVerify bool

	GenerateReports bool
	ReportsDir      string
}

// Tenant returns the tenant with the given company database name, or false.
func (c Config) Tenant(companyDB string) (Tenant, bool) {
	for _, t := range c.Tenants {
		if t.CompanyDB == companyDB {
			return t, true
		}
	}
	return Tenant{}, false
}

// defaultTenants are the production company tables. Overridable via
// SAP_STATIC_COMPANIES, which restricts the run to the named databases.
func defaultTenants() []Tenant {
	return []Tenant{
		{
			CompanyDB: "SBO_Alianza",
			AllowedCardCodes: []string{
				"Alianza Público en General",
				"04166", "06379", "06456", "06519", "06520", "06521", "06522",
			},
			PublicGeneral: []string{"Alianza Público en General"},
			RateSensitive: true,
		},
		{
			CompanyDB:        "SBO_FGE",
			AllowedCardCodes: []string{"MOSTR2"},
			PublicGeneral:    []string{"MOSTR2"},
		},
		{
			CompanyDB:        "SBO_MANUFACTURING",
			AllowedCardCodes: []string{"C-0182"},
			PublicGeneral:    []string{"C-0182"},
		},
	}
}

// FromEnv assembles a Config from the environment, falling back to the
// built-in tenant tables. godotenv loading (if any) is the caller's job.
func FromEnv() Config {
	cfg := Config{
		Host:                 os.Getenv("SAP_HOST"),
		Username:             os.Getenv("SAP_USER"),
		Password:             os.Getenv("SAP_PASSWORD"),
		Tenants:              defaultTenants(),
		CallTimeout:          30 * time.Second,
		MaxConcurrentTenants: 1,
		InsecureSkipVerify:   true,
		GenerateReports:      envBool("GENERATE_REPORTS"),
		ReportsDir:           os.Getenv("REPORTS_DIR"),
	}

	if raw := os.Getenv("SAP_STATIC_COMPANIES"); strings.TrimSpace(raw) != "" {
		var selected []Tenant
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if t, ok := cfg.Tenant(name); ok {
				selected = append(selected, t)
			} else {
				// Unknown companies still get processed, with no business
				// tables attached.
				selected = append(selected, Tenant{CompanyDB: name})
			}
		}
		cfg.Tenants = selected
	}

	if cfg.ReportsDir == "" {
		cfg.ReportsDir = "reports"
	}
	return cfg
}

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
