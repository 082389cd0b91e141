// Package config handles configuration loading, parsing, and validation
// from defaults, an optional YAML file and FLASHFLOW_* environment
// variables. It provides type-safe access to the logging, storage and study
// settings while keeping configuration details separate from business logic.
package config
