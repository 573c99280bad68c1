// SPDX-License-Identifier: MPL-2.0

// Package publish implements the release pipeline that records a module
// version in a Bazel registry working tree.
//
// The pipeline is strictly sequential:
//
//  1. read the module name from MODULE.bazel in the module repository;
//  2. resolve the release tag and derive the version from it;
//  3. create the branch <name>-<version> in the registry repository;
//  4. merge the version into modules/<name>/metadata.json (UpdateMetadata);
//  5. fill, download and digest the source archive, then write
//     modules/<name>/<version>/source.json and MODULE.bazel (UpdateSource);
//  6. stage everything and commit it as <name>@<version>.
//
// Every step receives explicit directories; the process working directory is
// never consulted or changed. The first failure aborts the run and nothing
// already written is rolled back.
package publish
