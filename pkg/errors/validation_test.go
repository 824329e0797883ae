package errors

import (
	"testing"
)

func TestValidateAssetName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"defaults", "defaults.json", false},
		{"sample", "12.json", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"with path /", "../secret.json", true},
		{"with path \\", "a\\b.json", true},
		{"hidden file", ".env", true},
		{"control char", "12\x01.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAssetName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAssetName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.com/path", false},
		{"http", "http://example.com/path", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name    string
		lo, hi  int
		wantErr bool
	}{
		{"valid", 0, 100, false},
		{"single sample", 7, 8, false},
		{"empty range", 5, 5, true},
		{"inverted", 10, 2, true},
		{"negative", -1, 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange(tt.lo, tt.hi)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRange(%d, %d) error = %v, wantErr %v", tt.lo, tt.hi, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidConfig) {
				t.Errorf("expected INVALID_CONFIG code, got %v", GetCode(err))
			}
		})
	}
}
