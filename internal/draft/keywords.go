// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package draft

import (
	"fmt"
	"strings"
	"unicode"
)

// maxKeywords caps the image search query length in words.
const maxKeywords = 3

// Keywords derives a short image-search query from a prompt: lowercase,
// drop everything except ASCII letters, digits and whitespace, then keep the
// first three words joined by single spaces.
func Keywords(prompt string) string {
	lowered := strings.ToLower(prompt)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	words := strings.Fields(b.String())
	if len(words) > maxKeywords {
		words = words[:maxKeywords]
	}
	return strings.Join(words, " ")
}

// TitleInstruction asks for a title and nothing else.
func TitleInstruction(prompt string) string {
	return fmt.Sprintf("Create a compelling blog post title for: \"%s\". Return only the title, nothing else.", prompt)
}

// BodyInstruction asks for the full markdown article.
func BodyInstruction(prompt string) string {
	return fmt.Sprintf("Write a comprehensive, engaging blog post about: \"%s\". "+
		"The content should be well-structured with proper paragraphs, informative, and around 800-1200 words. "+
		"Include relevant examples and actionable insights. Format it in clean markdown.", prompt)
}

// ExcerptInstruction asks for a 2-3 sentence summary.
func ExcerptInstruction(prompt string) string {
	return fmt.Sprintf("Write a compelling 2-3 sentence excerpt/summary for a blog post about: \"%s\". "+
		"Make it engaging and informative. Return only the excerpt.", prompt)
}
