package errors

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "crypt", false},
		{"valid with dash", "boss-room", false},
		{"valid with underscore", "boss_room", false},
		{"valid with space", "Great Hall", false},
		{"valid with slash", "castle/east", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 200), true},
		{"path traversal ..", "foo/../bar", true},
		{"path traversal //", "foo//bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName("shape", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid file", "shapes.toml", false},
		{"valid nested", "shapes/castle.yaml", false},
		{"valid dotfile", ".shapes.json", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "../secret", true},
		{"nested traversal", "a/../../b", true},
		{"backslash", "a\\b", true},
		{"null byte", "a\x00b", true},
		{"too long", strings.Repeat("a", 600), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateLayoutID(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"6ba7b810-9dad-51d1-80b4-00c04fd430c8", false},
		{"6BA7B810-9DAD-51D1-80B4-00C04FD430C8", true},
		{"6ba7b810", true},
		{"", true},
		{"../../etc/passwd", true},
	}

	for _, tt := range tests {
		err := ValidateLayoutID(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateLayoutID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
