// SPDX-License-Identifier: MPL-2.0

// Package jsondoc reads, writes and validates the JSON documents kept in a
// Bazel registry (metadata.json and source.json).
//
// Documents are decoded into an order-preserving Object so that fields the
// tool does not understand survive a read-modify-write cycle untouched. On
// write, keys are sorted by default so registry diffs stay reproducible.
package jsondoc
