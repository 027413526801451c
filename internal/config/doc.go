// Package config loads the aspp command configuration from TOML or YAML,
// applies .env and ASPP_* environment overrides, and validates the result.
package config
