// Package normalizers provides string normalization functions for product name matching
package normalizers

import (
	"regexp"
	"strings"
)

// Normalizer is a function that normalizes a string value
type Normalizer func(string) string

// registry holds all registered normalizers
var registry = make(map[string]Normalizer)

func init() {
	// Register built-in normalizers
	Register("lowercase", Lowercase)
	Register("trim", Trim)
	Register("strip_quantity", StripQuantitySuffix)
	Register("collapse_whitespace", CollapseWhitespace)
	Register("nproduct", NormalizeProductName)
}

// Register adds a normalizer to the registry
func Register(name string, fn Normalizer) {
	registry[name] = fn
}

// Get retrieves a normalizer by name
func Get(name string) (Normalizer, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// Apply applies a named normalizer to a value
func Apply(value, normalizer string) string {
	fn, ok := registry[normalizer]
	if !ok {
		return value
	}
	return fn(value)
}

// ApplyChain applies multiple normalizers in sequence
func ApplyChain(value string, normalizers ...string) string {
	result := value
	for _, name := range normalizers {
		result = Apply(result, name)
	}
	return result
}

// Built-in normalizers

// quantitySuffix matches a trailing "/ <quantity>" part, with an optional unit,
// e.g. "Widget / 10", "Widget / 12 pk", "Widget /6ct"
var quantitySuffix = regexp.MustCompile(`\s*/\s*\d+\s*([a-zA-Z]+)?\s*$`)

// whitespaceRun matches two or more consecutive whitespace characters
var whitespaceRun = regexp.MustCompile(`\s{2,}`)

// Lowercase converts string to lowercase
func Lowercase(s string) string {
	return strings.ToLower(s)
}

// Trim removes leading and trailing whitespace
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// StripQuantitySuffix removes a trailing "/ <quantity>(<unit>)?" pack-size suffix
// from a product name
func StripQuantitySuffix(s string) string {
	return strings.TrimSpace(quantitySuffix.ReplaceAllString(s, ""))
}

// CollapseWhitespace collapses runs of whitespace into single spaces
func CollapseWhitespace(s string) string {
	return whitespaceRun.ReplaceAllString(s, " ")
}

// NormalizeProductName produces the canonical form used for prefix matching:
// quantity suffix stripped, whitespace collapsed, trimmed, lowercased
func NormalizeProductName(s string) string {
	return ApplyChain(s, "strip_quantity", "collapse_whitespace", "trim", "lowercase")
}
