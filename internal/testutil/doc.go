// SPDX-License-Identifier: MPL-2.0

// Package testutil provides fixtures shared by the package tests: file
// helpers that fail the test on error, in-memory release archives, and
// scratch git repositories.
package testutil
