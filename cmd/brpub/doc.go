// SPDX-License-Identifier: MPL-2.0

// Package cmd implements the brpub command line: the publish command that
// turns a tagged module release into a registry commit, and the config
// commands that manage the user configuration file.
package cmd
