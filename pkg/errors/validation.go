package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// layerKeyRegex matches hyper trigger keys and sub-keys: one lowercase letter or digit.
var layerKeyRegex = regexp.MustCompile(`^[a-z0-9]$`)

// ValidateLayerKey validates a trigger key or sub-key of a hyper layer.
// Layer keys are single alphanumeric characters, written the way Karabiner
// names the corresponding key code ("a", "7").
func ValidateLayerKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "layer key cannot be empty")
	}
	if !layerKeyRegex.MatchString(key) {
		return New(ErrCodeInvalidKey, "layer key must be a single lowercase letter or digit: %q", key)
	}
	return nil
}

// keyCodeRegex matches Karabiner key code and variable names.
var keyCodeRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_]*$`)

// ValidateKeyCode validates a Karabiner key_code such as "semicolon",
// "left_shift" or "volume_increment".
//
// The full key code table belongs to Karabiner and changes between releases,
// so only the shape is checked:
//   - No empty names
//   - Lowercase letters, digits and underscores only
//   - Maximum length of 64 characters
func ValidateKeyCode(code string) error {
	if code == "" {
		return New(ErrCodeInvalidKey, "key code cannot be empty")
	}
	if len(code) > 64 {
		return New(ErrCodeInvalidKey, "key code too long (max 64 characters)")
	}
	if !keyCodeRegex.MatchString(code) {
		return New(ErrCodeInvalidKey, "invalid key code: %q", code)
	}
	return nil
}

// ValidateVariableName validates a Karabiner variable name. Variable names
// share the key code alphabet.
func ValidateVariableName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "variable name cannot be empty")
	}
	if !keyCodeRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid variable name: %q", name)
	}
	return nil
}

// ValidateAppName validates an application name passed to the app launcher.
// It rejects names that would produce a broken shell command.
func ValidateAppName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidAction, "application name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidAction, "application name too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidAction, "application name contains invalid control characters")
		}
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidAction, "application name cannot contain path separators: %q", name)
	}
	return nil
}

// ValidateOutputPath validates the path of the generated configuration file.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
//   - Must name a .json file
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return New(ErrCodeInvalidPath, "output path must end in .json: %q", path)
	}
	return nil
}
