// SPDX-License-Identifier: MPL-2.0

// Package cueutil turns CUE evaluation errors into file-scoped messages with
// JSON-style field paths, and guards CUE input size.
package cueutil
