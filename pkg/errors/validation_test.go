package errors

import (
	"strings"
	"testing"
)

func TestValidateNodeName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "texture", false},
		{"underscore", "texture_view", false},
		{"leading underscore", "_internal", false},
		{"dotted", "shader.vert", false},
		{"dashed", "swap-chain", false},
		{"digits", "layer2", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", MaxNodeNameLength+1), true},
		{"leading digit", "2d", true},
		{"space", "texture view", true},
		{"slash", "a/b", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
		{"arrow", "a->b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidNodeName) {
				t.Errorf("ValidateNodeName(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateManifestFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "texture.toml", false},
		{"nested", "examples/diamond.toml", false},
		{"absolute", "/etc/lazydeps/graph.toml", false},
		{"upper case extension", "GRAPH.TOML", false},

		{"empty", "", true},
		{"wrong extension", "graph.yaml", true},
		{"no extension", "graph", true},
		{"hidden", ".graph.toml", true},
		{"null byte", "graph\x00.toml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateManifestFilename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateManifestFilename(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidManifest) {
				t.Errorf("ValidateManifestFilename(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateTracking(t *testing.T) {
	for _, mode := range []string{"", "flag", "exists", "none"} {
		if err := ValidateTracking(mode); err != nil {
			t.Errorf("ValidateTracking(%q) = %v", mode, err)
		}
	}
	for _, mode := range []string{"ready", "FLAG", "both"} {
		if err := ValidateTracking(mode); !Is(err, ErrCodeInvalidManifest) {
			t.Errorf("ValidateTracking(%q) = %v, want INVALID_MANIFEST", mode, err)
		}
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidFormat,
		ErrCodeInvalidManifest,
		ErrCodeInvalidNodeName,
		ErrCodeInvalidGraph,
		ErrCodeInvalidPath,
		ErrCodeNotFound,
		ErrCodeNodeNotFound,
		ErrCodeFileNotFound,
		ErrCodeCreateFailed,
		ErrCodeDestroyFailed,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
