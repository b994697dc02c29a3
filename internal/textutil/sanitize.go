package textutil

import "strings"

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// SanitizePathSegment is SanitizeFileName with whitespace runs collapsed to a
// single underscore and leading dots removed, so the result never names a
// hidden or relative directory. Returns fallback when nothing survives.
func SanitizePathSegment(name, fallback string) string {
	cleaned := strings.Join(strings.Fields(SanitizeFileName(name)), "_")
	cleaned = strings.TrimLeft(cleaned, ".")
	if cleaned == "" {
		return fallback
	}
	return cleaned
}
