package middleware

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var tenantRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateTenantID validates tenant ID format
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}
	if !tenantRe.MatchString(tenant) {
		return fmt.Errorf("invalid tenant ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidateUploadName accepts a bare .pdf or .txt file name.
func ValidateUploadName(name string) error {
	if name == "" {
		return fmt.Errorf("file name cannot be empty")
	}
	if strings.ContainsAny(name, "/\\\x00") || name != filepath.Base(name) || strings.HasPrefix(name, "..") {
		return fmt.Errorf("invalid file name")
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".txt":
		return nil
	default:
		return fmt.Errorf("unsupported file type %q (allowed: .pdf, .txt)", filepath.Ext(name))
	}
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
