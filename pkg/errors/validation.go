package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// MaxNodeNameLength bounds node names accepted from manifests and URLs.
const MaxNodeNameLength = 128

// nodeNameRegex matches names usable as manifest keys, URL path segments and
// Graphviz identifiers without quoting surprises.
var nodeNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// ValidateNodeName validates a node name coming from a manifest or a request.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Must start with a letter or underscore
//   - Only letters, digits, '_', '.' and '-' afterwards
//   - Maximum length of 128 characters
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidNodeName, "node name cannot be empty")
	}

	if len(name) > MaxNodeNameLength {
		return New(ErrCodeInvalidNodeName, "node name too long (max %d characters)", MaxNodeNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNodeName, "node name contains invalid control characters")
		}
	}

	if !nodeNameRegex.MatchString(name) {
		return New(ErrCodeInvalidNodeName, "invalid node name: %q", name)
	}

	return nil
}

// ValidateManifestFilename validates the path of a manifest file.
// Manifests are TOML documents and must carry a .toml extension.
func ValidateManifestFilename(path string) error {
	if path == "" {
		return New(ErrCodeInvalidManifest, "manifest filename cannot be empty")
	}

	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidManifest, "manifest filename contains a null byte")
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return New(ErrCodeInvalidManifest, "manifest filename cannot be a hidden file")
	}

	if !strings.EqualFold(filepath.Ext(base), ".toml") {
		return New(ErrCodeInvalidManifest, "manifest must be a .toml file: %s", base)
	}

	return nil
}

// ValidateTracking validates a tracking mode as written in a manifest.
// The empty string is accepted and means the default ("flag").
func ValidateTracking(mode string) error {
	switch mode {
	case "", "flag", "exists", "none":
		return nil
	}
	return New(ErrCodeInvalidManifest, "unknown tracking mode %q (want flag, exists or none)", mode)
}
