// Package config loads and validates the Cartographer configuration.
//
// Configuration is TOML, resolved once at startup from an explicit path,
// ~/.config/cartographer/config.toml, or ./cartographer.toml, in that
// order. Loading applies repository defaults first, then normalizes path
// fields (tilde expansion, absolute paths) and validates the result, so
// every component downstream receives a complete, usable *Config.
package config
