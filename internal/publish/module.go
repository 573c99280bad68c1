// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
)

var (
	moduleNamePattern = regexp.MustCompile(`module\(\s*name = "(?P<name>[^"\s]+)"`)
	repositoryPattern = regexp.MustCompile(`github:(?P<owner>\S+)/(?P<repo>\S+)`)
)

// ParseModuleName extracts the name from the first `module(name = "...")`
// declaration in a MODULE.bazel file.
func ParseModuleName(content []byte) (string, bool) {
	m := moduleNamePattern.FindSubmatch(content)
	if m == nil {
		return "", false
	}
	return string(m[moduleNamePattern.SubexpIndex("name")]), true
}

// ReadModuleName reads MODULE.bazel from moduleDir and returns the declared
// module name.
func ReadModuleName(moduleDir string) (string, error) {
	path := filepath.Join(moduleDir, ModuleFileName)
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &NotFoundError{What: ModuleFileName, Path: moduleDir, Err: err}
		}
		return "", err
	}

	name, ok := ParseModuleName(content)
	if !ok {
		return "", &ConfigError{Path: path, Reason: `no module(name = "...") declaration`}
	}
	return name, nil
}

// ParseRepository splits a github:<owner>/<repo> repository entry. Matching
// is greedy, so with several slashes the repo is the last path segment.
func ParseRepository(entry string) (owner, repo string, err error) {
	m := repositoryPattern.FindStringSubmatch(entry)
	if m == nil {
		return "", "", &ConfigError{Reason: fmt.Sprintf("repository %q does not match github:<owner>/<repo>", entry)}
	}
	return m[repositoryPattern.SubexpIndex("owner")], m[repositoryPattern.SubexpIndex("repo")], nil
}
