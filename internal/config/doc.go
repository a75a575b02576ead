// Package config loads, validates, and defaults chapterize configuration.
//
// Configuration is TOML. Load resolves an explicit path, then
// ~/.config/chapterize/config.toml, then ./chapterize.toml, and falls back to
// built-in defaults when no file exists. CLI flags are applied on top by the
// command layer.
package config
