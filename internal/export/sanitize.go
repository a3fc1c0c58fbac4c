package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

const maxFileNameRunes = 80

var ErrInvalidOutputDir = errors.New("invalid output_dir")

// SanitizeName drops control characters, replaces anything outside
// letters, digits and " -_.,()" with '_' and truncates to maxLen runes
// (0 means no limit).
func SanitizeName(s string, maxLen int) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsControl(r):
		case allowedNameRune(r):
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	cleaned := strings.TrimSpace(b.String())
	if maxLen > 0 {
		if runes := []rune(cleaned); len(runes) > maxLen {
			cleaned = strings.TrimSpace(string(runes[:maxLen]))
		}
	}
	return cleaned
}

func allowedNameRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	return strings.ContainsRune(" -_.,()", r)
}

// FileName builds "<sanitized title>.<ext>", falling back to "export".
func FileName(title, ext string) string {
	name := SanitizeName(title, maxFileNameRunes)
	name = strings.Trim(name, ". ")
	if name == "" {
		name = "export"
	}
	return name + "." + strings.TrimPrefix(ext, ".")
}

// ValidateOutputDir requires an existing, clean directory path without
// ".." segments.
func ValidateOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("%w: required", ErrInvalidOutputDir)
	}

	for _, part := range strings.Split(filepath.ToSlash(dir), "/") {
		if part == ".." {
			return fmt.Errorf("%w: path traversal", ErrInvalidOutputDir)
		}
	}

	if filepath.Clean(dir) != dir {
		return fmt.Errorf("%w: must be a clean path", ErrInvalidOutputDir)
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: does not exist", ErrInvalidOutputDir)
		}
		return fmt.Errorf("%w: %v", ErrInvalidOutputDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: not a directory", ErrInvalidOutputDir)
	}
	return nil
}
