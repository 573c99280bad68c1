// SPDX-License-Identifier: MPL-2.0

// Package registry implements the archive and hash primitives used when
// publishing a module release into a Bazel registry.
//
// The package is organized into three concerns:
//   - fetch.go: HTTP download of release archives with a fixed User-Agent
//   - digest.go: SHA256 integrity strings in the "sha256-<base64>" form
//   - extract.go: zip and tar.gz extraction confined to a destination directory
package registry
