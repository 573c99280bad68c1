// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// VersionFromTag derives the registry version from a release tag by removing
// every "v" character, so "v1.2.0" becomes "1.2.0". A "v" in a non-leading
// position is removed as well; TagWarnings reports that case.
func VersionFromTag(tag string) string {
	return strings.ReplaceAll(tag, "v", "")
}

// TagWarnings lists the reasons why deriving a version from tag may not give
// the expected result. It returns nil for ordinary tags like "v1.2.0".
func TagWarnings(tag string) []string {
	var warnings []string
	if strings.Contains(strings.TrimPrefix(tag, "v"), "v") {
		warnings = append(warnings, fmt.Sprintf("tag %q contains a non-leading \"v\", which is removed as well", tag))
	}
	if version := VersionFromTag(tag); version != "" && !semver.IsValid("v"+version) {
		warnings = append(warnings, fmt.Sprintf("version %q is not a semantic version", version))
	}
	return warnings
}

// BranchName is the registry branch a release is recorded on.
func BranchName(module, version string) string {
	return module + "-" + version
}

// CommitMessage is the registry commit message for a release.
func CommitMessage(module, version string) string {
	return module + "@" + version
}
