// Package config provides configuration loading and validation for sptzx.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (SPTZX_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with SPTZX_ prefix:
//   - server.addr → SPTZX_SERVER_ADDR
//   - relay.lifetime → SPTZX_RELAY_LIFETIME
//   - storage.medium → SPTZX_STORAGE_MEDIUM
//
// The flat names SPTZX_SECRET_KEY, SPTZX_UPLOAD_DIR, SPTZX_MAX_FILE_SIZE,
// SPTZX_FILE_LIFETIME, SPTZX_BIND_ADDR and SPTZX_BASE_URL are accepted as
// aliases.
//
// # Configuration Structure
//
// The Config struct contains:
//   - Server: listen address, public base URL, timeouts and compression
//   - Relay: signing secret, link lifetime, payload and resident byte limits, sweeper cadence
//   - Storage: medium (memory, filesystem, sqlite, postgres, redis) and its settings
//   - RateLimit: per-IP upload rate limit
//   - CORS: cross-origin resource sharing settings
//   - Log: logging level
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Lifetime, sweep interval and max payload size must be positive
//   - The sweep interval must be shorter than the lifetime
//   - Postgres needs a DSN and the filesystem medium needs a path
//   - Log level must be debug, info, warn, or error
package config
