// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation for posts and categories.
package slug

import (
	"fmt"
	"regexp"
	"strings"
)

const maxLen = 80

var (
	// nonAlphanumeric matches anything that isn't a lowercase letter, digit,
	// space, or hyphen after lowering.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate creates a URL-friendly slug from the given string, truncated
// to a sane length for URLs.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.ReplaceAll(result, " ", "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	if len(result) > maxLen {
		result = strings.Trim(result[:maxLen], "-")
	}
	return result
}

// WithSuffix appends a numeric suffix, used to disambiguate duplicate slugs.
func WithSuffix(s string, n int) string {
	return fmt.Sprintf("%s-%d", Generate(s), n)
}
