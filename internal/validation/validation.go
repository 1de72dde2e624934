// Package validation provides input validation and sanitization functions
// for user-supplied paths, dictionary names, and segmentation input.
package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// Limits to prevent resource exhaustion.
const (
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
	// MaxDictionaryNameLength is the maximum allowed dictionary name length.
	MaxDictionaryNameLength = 128
	// MaxSegmentInputLength is the maximum rune count accepted for one
	// segmentation call. Segmentation is linear, but a cap keeps a single
	// request from monopolizing the server.
	MaxSegmentInputLength = 1 << 20
)

// Common validation errors.
var (
	ErrPathTraversal    = errors.New("path traversal detected")
	ErrPathTooLong      = errors.New("path too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrInvalidName      = errors.New("invalid dictionary name")
	ErrInputTooLong     = errors.New("input too long")
)

// ValidatePath performs path validation without requiring a base directory.
// It checks for dangerous patterns, length limits, and invalid characters.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}

	// Check for null bytes
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidCharacter)
	}

	// Check for control characters
	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}

	return nil
}

// SanitizePath validates a user-supplied path against a base directory to
// prevent path traversal. It returns the cleaned path relative to the
// base directory, or an error if the path escapes it.
func SanitizePath(baseDir, userPath string) (string, error) {
	if userPath == "" {
		return "", ErrEmptyPath
	}

	if len(userPath) > MaxPathLength {
		return "", ErrPathTooLong
	}

	cleanPath := filepath.Clean(userPath)

	if strings.Contains(cleanPath, "..") {
		return "", ErrPathTraversal
	}
	if filepath.IsAbs(cleanPath) {
		return "", fmt.Errorf("%w: absolute path not allowed", ErrPathTraversal)
	}

	fullPath := filepath.Join(baseDir, cleanPath)
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	relPath, err := filepath.Rel(absBase, absPath)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return "", ErrPathTraversal
	}

	return cleanPath, nil
}

// ValidateDictionaryName checks a user-supplied dictionary name. Names
// are lowercase identifiers: letters, digits, hyphen and underscore,
// starting with a letter.
func ValidateDictionaryName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if len(name) > MaxDictionaryNameLength {
		return fmt.Errorf("%w: too long", ErrInvalidName)
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case i > 0 && (r >= '0' && r <= '9' || r == '-' || r == '_'):
		default:
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	return nil
}

// ValidateSegmentInput checks text submitted for segmentation.
func ValidateSegmentInput(text string) error {
	if n := len([]rune(text)); n > MaxSegmentInputLength {
		return fmt.Errorf("%w: %d runes (max %d)", ErrInputTooLong, n, MaxSegmentInputLength)
	}
	return nil
}
