package errors

import (
	"strings"
	"testing"
)

func TestValidators(t *testing.T) {
	validators := map[string]func(string) error{
		"identifier": ValidateIdentifier,
		"name":       ValidateName,
		"record id":  ValidateRecordID,
		"artifact":   ValidateArtifactName,
	}

	tests := []struct {
		validator string
		input     string
		ok        bool
	}{
		{"identifier", "UK123456", true},
		{"identifier", "HF-0042", true},
		{"identifier", "Barn 7 / 12", true},
		{"identifier", "", false},
		{"identifier", "   ", false},
		{"identifier", strings.Repeat("x", 51), false},
		{"identifier", "foo\x00bar", false},
		{"identifier", "foo\nbar", false},

		{"name", "", true},
		{"name", "Bessie of Hilltop", true},
		{"name", "Blümchen", true},
		{"name", strings.Repeat("n", 101), false},
		{"name", "Bes\x01sie", false},

		{"record id", "0b7d2f8e-3c1a-4a7e-9a53-6f5c8f0e2d11", true},
		{"record id", "a1", true},
		{"record id", "", false},
		{"record id", "a/b", false},
		{"record id", `a\b`, false},
		{"record id", strings.Repeat("1", 65), false},

		{"artifact", "pedigree_Bessie_20250506_1430.png", true},
		{"artifact", "pedigree_animal_20250101_0000.json", true},
		{"artifact", "", false},
		{"artifact", "out/pedigree.png", false},
		{"artifact", `out\pedigree.png`, false},
		{"artifact", "..pedigree.png", false},
		{"artifact", "pedigree\n.png", false},
	}

	for _, tt := range tests {
		t.Run(tt.validator+"/"+tt.input, func(t *testing.T) {
			err := validators[tt.validator](tt.input)
			if (err == nil) != tt.ok {
				t.Fatalf("%s(%q) = %v, want ok=%v", tt.validator, tt.input, err, tt.ok)
			}
			if err != nil && GetCode(err) != ErrCodeInvalidInput {
				t.Errorf("code = %q, want %q", GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}
