// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"errors"
	"io/fs"
	"slices"

	"github.com/brpub/brpub/internal/jsondoc"
)

const (
	versionsField   = "versions"
	repositoryField = "repository"
)

// AddVersion returns versions with version appended unless it is already
// present. The input slice is not modified.
func AddVersion(versions []string, version string) []string {
	out := slices.Clone(versions)
	if slices.Contains(out, version) {
		return out
	}
	return append(out, version)
}

// UpdateMetadata records version in the module metadata document at
// targetPath and returns the owner and repository parsed from its first
// repository entry.
//
// The versions list is carried over from an existing targetPath, if any. All
// other fields are taken from the template at templatePath, which is read on
// every call and never modified.
func UpdateMetadata(templatePath, targetPath, version string) (owner, repo string, err error) {
	versions, err := existingVersions(targetPath)
	if err != nil {
		return "", "", err
	}
	versions = AddVersion(versions, version)

	doc, err := loadTemplate(templatePath, "metadata template")
	if err != nil {
		return "", "", err
	}
	doc.SetStringList(versionsField, versions)

	if err := jsondoc.Validate(jsondoc.KindMetadata, doc); err != nil {
		return "", "", &ConfigError{Path: templatePath, Reason: "metadata does not match the registry schema", Err: err}
	}
	if err := jsondoc.Save(targetPath, doc); err != nil {
		return "", "", err
	}

	repositories, err := doc.StringList(repositoryField)
	if err != nil || len(repositories) == 0 {
		return "", "", &ConfigError{Path: templatePath, Reason: "no repository entry", Err: err}
	}
	owner, repo, err = ParseRepository(repositories[0])
	if err != nil {
		var cerr *ConfigError
		if errors.As(err, &cerr) {
			cerr.Path = templatePath
		}
		return "", "", err
	}
	return owner, repo, nil
}

// existingVersions returns the versions list of the metadata document at
// path, or nil when the document does not exist yet.
func existingVersions(path string) ([]string, error) {
	doc, err := jsondoc.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &ConfigError{Path: path, Reason: "unreadable metadata document", Err: err}
	}

	versions, err := doc.StringList(versionsField)
	if err != nil {
		return nil, &ConfigError{Path: path, Reason: "invalid versions list", Err: err}
	}
	return versions, nil
}

// loadTemplate reads a template document, reporting a missing file as
// NotFoundError and malformed JSON as ConfigError.
func loadTemplate(path, what string) (*jsondoc.Object, error) {
	doc, err := jsondoc.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &NotFoundError{What: what, Path: path, Err: err}
	}
	if err != nil {
		return nil, &ConfigError{Path: path, Reason: "unreadable " + what, Err: err}
	}
	return doc, nil
}
