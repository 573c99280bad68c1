// SPDX-License-Identifier: MPL-2.0

// Package vcs models the version-control operations the publish pipeline
// needs as a narrow Repository interface, with a Git implementation that
// drives the git command-line tool against an explicit working directory.
package vcs
