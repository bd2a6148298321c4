package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for user-supplied fields.
const (
	maxTitleLen       = 200
	maxDescriptionLen = 500
	maxContentLen     = 100_000
	maxImageURLLen    = 2_000
	maxCategoryLen    = 60
	maxCommentLen     = 2_000
	maxEmailLen       = 254
	maxUsernameLen    = 40
	maxDisplayNameLen = 100
	minPasswordLen    = 8
	maxPasswordLen    = 72 // bcrypt input limit

	maxPageLimit = 50
)

// validatePostInput checks post form inputs and returns the first error found.
func validatePostInput(title, description, content, image string) string {
	if strings.TrimSpace(title) == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 200 characters)."
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "Description is too long (max 500 characters)."
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return "Content is too long (max 100,000 characters)."
	}
	if utf8.RuneCountInString(image) > maxImageURLLen {
		return "Image URL is too long (max 2,000 characters)."
	}
	return ""
}

// validateCategoryName checks a category name.
func validateCategoryName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Category name is required."
	}
	if utf8.RuneCountInString(name) > maxCategoryLen {
		return "Category name is too long (max 60 characters)."
	}
	return ""
}

// validateCommentContent checks a comment body.
func validateCommentContent(content string) string {
	if strings.TrimSpace(content) == "" {
		return "Comment cannot be empty."
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return "Comment is too long (max 2,000 characters)."
	}
	return ""
}

// validateRegistration checks new-account form inputs.
func validateRegistration(email, username, password, displayName string) string {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return "A valid email address is required."
	}
	if utf8.RuneCountInString(email) > maxEmailLen {
		return "Email is too long."
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return "Username is required."
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return "Username is too long (max 40 characters)."
	}
	for _, r := range username {
		if !isUsernameRune(r) {
			return "Username may only contain letters, digits, hyphens and underscores."
		}
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return "Password must be at least 8 characters."
	}
	if len(password) > maxPasswordLen {
		return "Password is too long (max 72 bytes)."
	}
	if utf8.RuneCountInString(displayName) > maxDisplayNameLen {
		return "Display name is too long (max 100 characters)."
	}
	return ""
}

func isUsernameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_':
		return true
	}
	return false
}
