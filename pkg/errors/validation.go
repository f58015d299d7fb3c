package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateMetaTarget validates a meta-target type name such as "Task" or
// "qan::Node". Meta-targets key the default-style maps, so they must be
// non-empty, printable and reasonably short.
func ValidateMetaTarget(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "meta-target cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "meta-target too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "meta-target contains invalid control characters")
		}
	}

	return nil
}

// propertyNameRegex matches property names: identifiers that may contain
// dots and dashes ("border.width", "fill-color").
var propertyNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// ValidatePropertyName validates a style property name.
func ValidatePropertyName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "property name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "property name too long (max 128 characters)")
	}
	if !propertyNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid property name: %q", name)
	}
	return nil
}

// snapshotNameRegex matches snapshot names used as store keys.
var snapshotNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateSnapshotName validates a snapshot name for safety.
// Snapshot names become file names, SQL keys and Redis keys, so they are
// restricted to a conservative character set.
func ValidateSnapshotName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "snapshot name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "snapshot name too long (max 128 characters)")
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "snapshot name cannot contain path traversal sequences (..)")
	}
	if !snapshotNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid snapshot name: %q", name)
	}
	return nil
}
