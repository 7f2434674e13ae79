package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxDeclarationPathLength bounds dotted declaration paths accepted from users.
const maxDeclarationPathLength = 512

// declarationSegmentRegex matches one segment of a dotted declaration path.
// Segments are identifiers, optionally quoted module names ("@scope/pkg").
var declarationSegmentRegex = regexp.MustCompile(`^(\$|_|[A-Za-z])[A-Za-z0-9_$]*$|^"[^"]+"$`)

// ValidateDeclarationPath validates a dotted declaration path such as
// "SupabaseClient.from" before it is used for lookup.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 512 characters
//   - No control characters
//   - No empty segments (leading, trailing or doubled dots)
//   - Each segment is an identifier or a quoted module name
func ValidateDeclarationPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidDeclaration, "declaration path cannot be empty")
	}

	if len(path) > maxDeclarationPathLength {
		return New(ErrCodeInvalidDeclaration, "declaration path too long (max %d characters)", maxDeclarationPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDeclaration, "declaration path contains invalid control characters")
		}
	}

	for _, seg := range SplitDeclarationPath(path) {
		if seg == "" {
			return New(ErrCodeInvalidDeclaration, "declaration path has an empty segment: %q", path)
		}
		if !declarationSegmentRegex.MatchString(seg) {
			return New(ErrCodeInvalidDeclaration, "invalid declaration path segment: %q", seg)
		}
	}

	return nil
}

// SplitDeclarationPath splits a dotted path into segments, keeping dots that
// appear inside double-quoted module names.
func SplitDeclarationPath(path string) []string {
	var (
		segs   []string
		cur    strings.Builder
		quoted bool
	)
	for _, r := range path {
		switch {
		case r == '"':
			quoted = !quoted
			cur.WriteRune(r)
		case r == '.' && !quoted:
			segs = append(segs, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(segs, cur.String())
}

// recordIDRegex matches the canonical lowercase UUID form used for stored records.
var recordIDRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidateRecordID validates a stored schema record ID.
// IDs are used as file names by the file store, so anything other than a
// canonical UUID is rejected.
func ValidateRecordID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "record id cannot be empty")
	}
	if !recordIDRegex.MatchString(id) {
		return New(ErrCodeInvalidID, "invalid record id: %q", id)
	}
	return nil
}

// ValidateFormat checks that a render format is one of allowed.
func ValidateFormat(format string, allowed []string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(allowed, ", "))
}
