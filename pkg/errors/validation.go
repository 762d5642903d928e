package errors

import (
	"strings"
	"unicode"
)

const (
	maxIdentifierLength = 50
	maxNameLength       = 100
	maxRecordIDLength   = 64
)

// ValidateIdentifier validates an animal's external tag (ear tag, registry
// number). The rules mirror the storage column width:
//   - No empty identifiers
//   - No control characters
//   - Maximum length of 50 characters
func ValidateIdentifier(identifier string) error {
	if strings.TrimSpace(identifier) == "" {
		return New(ErrCodeInvalidInput, "identifier cannot be empty")
	}
	if len(identifier) > maxIdentifierLength {
		return New(ErrCodeInvalidInput, "identifier too long (max %d characters)", maxIdentifierLength)
	}
	if hasControl(identifier) {
		return New(ErrCodeInvalidInput, "identifier contains invalid control characters")
	}
	return nil
}

// ValidateName validates an optional display name. Empty is allowed.
func ValidateName(name string) error {
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "name too long (max %d characters)", maxNameLength)
	}
	if hasControl(name) {
		return New(ErrCodeInvalidInput, "name contains invalid control characters")
	}
	return nil
}

// ValidateRecordID validates a store key received from outside (URL path,
// CLI argument) before it reaches a repository.
func ValidateRecordID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "id cannot be empty")
	}
	if len(id) > maxRecordIDLength {
		return New(ErrCodeInvalidInput, "id too long (max %d characters)", maxRecordIDLength)
	}
	if hasControl(id) || strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "id contains invalid characters")
	}
	return nil
}

// ValidateArtifactName validates a file name produced for an export before it
// is joined onto a sink directory or used as an object key.
//
// Validation rules:
//   - Name cannot be empty
//   - No control characters
//   - No path separators or traversal sequences (..)
func ValidateArtifactName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "artifact name cannot be empty")
	}
	if hasControl(name) {
		return New(ErrCodeInvalidInput, "artifact name contains invalid characters")
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "artifact name cannot contain path separators")
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "artifact name cannot contain path traversal sequences (..)")
	}
	return nil
}

func hasControl(s string) bool {
	for _, r := range s {
		if r == '\x00' || unicode.IsControl(r) {
			return true
		}
	}
	return false
}
