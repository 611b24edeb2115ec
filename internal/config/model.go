// internal/config/model.go
//
// Typed configuration model for storekit.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                            – dotenv values,
//   • `conf/global.yaml`                         – primary static file,
//   • `STOREKIT_`-prefixed environment overrides – highest precedence.
//
// The database password is not kept in YAML; it is resolved from Vault at
// boot (falling back to the environment for development) and substituted
// into the DSN template.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Database section
//

// Database holds the DSN template and its secret.
//
// The *template* (`DSN`) is kept in YAML so operators can tweak host,
// port, or flags without touching Vault; a single `%s` verb marks where
// the password goes.  The secret itself lives in Vault under
// `VaultPath`/`VaultKey`, keeping credentials out of flat files and git
// history.
type Database struct {
	DSN       string `koanf:"dsn" validate:"required"`
	VaultPath string `koanf:"vault_path"`
	VaultKey  string `koanf:"vault_key"`
}

//
// Tenant section
//

// Tenant tunes the resolution strategy chain.  Empty fields fall back to
// the defaults in internal/tenant.
type Tenant struct {
	RegistrationPath string   `koanf:"registration_path"`
	TaskPath         string   `koanf:"task_path"`
	MobileMarkers    []string `koanf:"mobile_markers"`
}

//
// Geo section
//

// Geo points at an optional GeoLite2-City database for request
// enrichment.  Lookups are skipped when the path is empty.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or STOREKIT_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // STOREKIT_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Tenant   Tenant   `koanf:"tenant"`
	Geo      Geo      `koanf:"geo"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}
