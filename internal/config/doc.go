// Package config loads, normalizes, and validates staffline-mcp settings.
//
// Settings come from a TOML file (default ~/.config/staffline-mcp/config.toml)
// layered over repository defaults. A missing file is not an error. The
// STAFFLINE_LOG_LEVEL environment variable overrides [log].level so debug
// logging can be enabled from an MCP client definition without a file.
package config
