package handlers

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation limits for post, category and comment fields.
const (
	maxTitleLen        = 300
	maxBodyLen         = 100_000
	maxExcerptLen      = 1_000
	maxImageURLLen     = 2_000
	maxCategoryNameLen = 100
	maxDescriptionLen  = 500
	maxCommentLen      = 5_000
)

// colorClass matches the Tailwind background classes categories use.
var colorClass = regexp.MustCompile(`^bg-[a-z]+-[1-9]00$`)

// validatePost checks a post submission and returns the offending field
// and message, or two empty strings.
func validatePost(title, content, excerpt, image string) (string, string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "title", "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "title", "Title is too long (max 300 characters)."
	}
	if strings.TrimSpace(content) == "" {
		return "content", "Content is required."
	}
	if utf8.RuneCountInString(content) > maxBodyLen {
		return "content", "Content is too long (max 100,000 characters)."
	}
	if utf8.RuneCountInString(excerpt) > maxExcerptLen {
		return "excerpt", "Excerpt is too long (max 1,000 characters)."
	}
	if len(image) > maxImageURLLen {
		return "featured_image", "Image URL is too long."
	}
	if image != "" && !isHTTPURL(image) {
		return "featured_image", "Image must be an http(s) URL."
	}
	return "", ""
}

// validateCategory checks category inputs. An empty color is allowed and
// replaced by the default later.
func validateCategory(name, description, color string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "name", "Name is required."
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLen {
		return "name", "Name is too long (max 100 characters)."
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "description", "Description is too long (max 500 characters)."
	}
	if color != "" && !colorClass.MatchString(color) {
		return "color", "Color must be a class like bg-blue-500."
	}
	return "", ""
}

// validateComment checks a comment body.
func validateComment(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return "Comment cannot be empty."
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return "Comment is too long (max 5,000 characters)."
	}
	return ""
}

// isHTTPURL reports whether s is an absolute http(s) URL with a host.
func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
