// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig is the sentinel wrapped by ConfigError.
	ErrConfig = errors.New("invalid module configuration")
	// ErrNotFound is the sentinel wrapped by NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrNoModuleFile is returned when a release archive holds no MODULE.bazel.
	ErrNoModuleFile = errors.New("archive contains no " + ModuleFileName)
	// ErrModuleFileNotRegular is returned when the MODULE.bazel picked from a
	// release archive is a link or another non-regular file.
	ErrModuleFileNotRegular = errors.New(ModuleFileName + " in archive is not a regular file")
)

type (
	// ConfigError reports release inputs that exist but cannot be used:
	// a MODULE.bazel without a module name, a repository entry that is not
	// github:<owner>/<repo>, or a document that fails validation.
	ConfigError struct {
		Path   string
		Reason string
		Err    error
	}

	// NotFoundError reports a required input that does not exist, such as a
	// missing MODULE.bazel or template, an untagged repository, or a release
	// archive without a MODULE.bazel.
	NotFoundError struct {
		What string
		Path string
		Err  error
	}
)

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := e.Reason
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes ErrConfig and the underlying cause.
func (e *ConfigError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConfig}
	}
	return []error{ErrConfig, e.Err}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	msg := e.What + " not found"
	if e.Path != "" {
		msg = fmt.Sprintf("%s in %s", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes ErrNotFound and the underlying cause.
func (e *NotFoundError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNotFound}
	}
	return []error{ErrNotFound, e.Err}
}
