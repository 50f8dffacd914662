// Package validation provides input validation for user-submitted content.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxConfessionLength  = 1000
	MaxCommentLength     = 500
	MaxChatMessageLength = 500
	MaxNicknameLength    = 50
)

var collegeCodeRegex = regexp.MustCompile(`^[a-z0-9-]{2,24}$`)

// Categories a confession may be filed under.
var validCategories = map[string]struct{}{
	"crush":    {},
	"funny":    {},
	"secrets":  {},
	"rants":    {},
	"advice":   {},
	"academic": {},
}

// ValidateCategory checks that the category is one of the known set.
func ValidateCategory(category string) error {
	if _, ok := validCategories[category]; !ok {
		return fmt.Errorf("unknown category %q", category)
	}
	return nil
}

// Categories returns the known category names, useful for cache invalidation
// and seeding.
func Categories() []string {
	out := make([]string, 0, len(validCategories))
	for c := range validCategories {
		out = append(out, c)
	}
	return out
}

// ValidateConfessionContent checks confession body length bounds.
func ValidateConfessionContent(content string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return fmt.Errorf("content is required")
	}
	if utf8.RuneCountInString(trimmed) > MaxConfessionLength {
		return fmt.Errorf("content must be at most %d characters", MaxConfessionLength)
	}
	return nil
}

// ValidateCommentContent checks comment body length bounds.
func ValidateCommentContent(content string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return fmt.Errorf("content is required")
	}
	if utf8.RuneCountInString(trimmed) > MaxCommentLength {
		return fmt.Errorf("content must be at most %d characters", MaxCommentLength)
	}
	return nil
}

// ValidateChatMessage checks chat message length bounds.
func ValidateChatMessage(content string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return fmt.Errorf("message is required")
	}
	if utf8.RuneCountInString(trimmed) > MaxChatMessageLength {
		return fmt.Errorf("message must be at most %d characters", MaxChatMessageLength)
	}
	return nil
}

// ValidateNickname checks optional display nickname bounds. An empty
// nickname is valid; the caller substitutes a generated one.
func ValidateNickname(nickname string) error {
	if utf8.RuneCountInString(nickname) > MaxNicknameLength {
		return fmt.Errorf("nickname must be at most %d characters", MaxNicknameLength)
	}
	return nil
}

// ValidateCollegeCode validates college code format.
func ValidateCollegeCode(code string) error {
	if !collegeCodeRegex.MatchString(code) {
		return fmt.Errorf("college code must be 2-24 characters and contain only lowercase letters, numbers, and hyphens")
	}
	if strings.HasPrefix(code, "-") || strings.HasSuffix(code, "-") {
		return fmt.Errorf("college code cannot start or end with a hyphen")
	}
	return nil
}
