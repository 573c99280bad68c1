// SPDX-License-Identifier: MPL-2.0

// Package config handles brpub configuration using Viper with CUE as the file format.
//
// A configuration file is looked up in order: the path given with --config,
// $XDG_CONFIG_HOME/brpub/config.cue (~/Library/Application Support/brpub on
// macOS, %APPDATA%\brpub on Windows), then .br/config.cue in the module
// repository. When none exists the defaults apply. Values can also be set
// through BRPUB_* environment variables, e.g. BRPUB_REGISTRY_PATH.
//
// Files are validated against the embedded CUE schema (config_schema.cue)
// before they are merged into Viper.
package config
