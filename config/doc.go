// Package config loads, normalizes, and validates texturefinder configuration.
//
// Settings come from built-in defaults, then an optional TOML file. Command line
// flags are applied by the caller on top of the returned Config.
package config
