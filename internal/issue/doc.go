// SPDX-License-Identifier: MPL-2.0

// Package issue holds the catalog of known failure modes and the
// ActionableError type used to present them. Catalog entries are Markdown
// rendered with glamour for the terminal.
package issue
