// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brpub/brpub/internal/registry"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultGitBinary is the git executable resolved through PATH.
	DefaultGitBinary BinaryFilePath = "git"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidBinaryFilePath is returned when a BinaryFilePath value is empty or whitespace-only.
	ErrInvalidBinaryFilePath = errors.New("invalid binary file path")
	// ErrInvalidDirPath is returned when an optional directory is whitespace-only.
	ErrInvalidDirPath = errors.New("invalid directory path")
	// ErrInvalidUserAgent is returned when the configured User-Agent is blank.
	ErrInvalidUserAgent = errors.New("invalid user agent")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme selects the glamour style used for issue guides.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// BinaryFilePath is a path to, or PATH-relative name of, an executable.
	BinaryFilePath string

	// InvalidBinaryFilePathError is returned when a BinaryFilePath is blank.
	InvalidBinaryFilePathError struct {
		Value BinaryFilePath
	}

	// DirPath is an optional directory. The zero value means "unset".
	DirPath string

	// InvalidDirPathError is returned when a DirPath is non-empty but blank.
	InvalidDirPathError struct {
		Field string
		Value DirPath
	}

	// InvalidConfigError collects field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		Registry RegistryConfig `json:"registry" mapstructure:"registry"`
		HTTP     HTTPConfig     `json:"http" mapstructure:"http"`
		Git      GitConfig      `json:"git" mapstructure:"git"`
		UI       UIConfig       `json:"ui" mapstructure:"ui"`
	}

	// RegistryConfig locates the registry working tree.
	RegistryConfig struct {
		// Path is the registry working tree; empty means it must be given on
		// the command line.
		Path DirPath `json:"path" mapstructure:"path"`
		// TmpDir receives downloads; empty means <Path>/tmp.
		TmpDir DirPath `json:"tmp_dir" mapstructure:"tmp_dir"`
	}

	// HTTPConfig configures archive downloads.
	HTTPConfig struct {
		UserAgent string `json:"user_agent" mapstructure:"user_agent"`
	}

	// GitConfig configures the version-control tool.
	GitConfig struct {
		Binary BinaryFilePath `json:"binary" mapstructure:"binary"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables debug logging and rendered issue guides.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	}
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			UserAgent: registry.DefaultUserAgent,
		},
		Git: GitConfig{
			Binary: DefaultGitBinary,
		},
		UI: UIConfig{
			Verbose:     false,
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// IsValid returns whether the Config has valid fields, collecting every
// field error rather than stopping at the first.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Registry.Path.isValid("registry.path"); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Registry.TmpDir.isValid("registry.tmp_dir"); !valid {
		errs = append(errs, fieldErrs...)
	}
	if strings.TrimSpace(c.HTTP.UserAgent) == "" {
		errs = append(errs, fmt.Errorf("http.user_agent: %w", ErrInvalidUserAgent))
	}
	if valid, fieldErrs := c.Git.Binary.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the BinaryFilePath.
func (p BinaryFilePath) String() string { return string(p) }

// IsValid returns whether the BinaryFilePath names an executable.
func (p BinaryFilePath) IsValid() (bool, []error) {
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidBinaryFilePathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidBinaryFilePathError) Error() string {
	return fmt.Sprintf("git.binary: invalid binary file path %q", e.Value)
}

// Unwrap returns ErrInvalidBinaryFilePath for errors.Is() compatibility.
func (e *InvalidBinaryFilePathError) Unwrap() error { return ErrInvalidBinaryFilePath }

// String returns the string representation of the DirPath.
func (p DirPath) String() string { return string(p) }

func (p DirPath) isValid(field string) (bool, []error) {
	if p != "" && strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidDirPathError{Field: field, Value: p}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidDirPathError) Error() string {
	return fmt.Sprintf("%s: directory path %q is blank", e.Field, e.Value)
}

// Unwrap returns ErrInvalidDirPath for errors.Is() compatibility.
func (e *InvalidDirPathError) Unwrap() error { return ErrInvalidDirPath }
