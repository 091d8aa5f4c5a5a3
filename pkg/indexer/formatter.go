package indexer

import (
	"fmt"
	"strings"

	"agent-chatbot-be/internal/entity"
)

// maxPathDepth caps category path construction so a parent-id cycle in bad
// data cannot loop forever.
const maxPathDepth = 10

// FormatUnit renders a content unit into the text that gets embedded. The
// category name appears in the path and again under its own header, which
// weights it in the embedding so category-themed queries land on members.
// Empty sections are omitted to keep the vector focused.
func FormatUnit(unit *entity.ContentUnit, categoryPath []string) string {
	parts := make([]string, 0, 5)

	if len(categoryPath) > 0 {
		parts = append(parts, fmt.Sprintf("Category Path: %s", strings.Join(categoryPath, " > ")))
		parts = append(parts, fmt.Sprintf("Category: %s", categoryPath[len(categoryPath)-1]))
	}
	if unit.Title != "" {
		parts = append(parts, fmt.Sprintf("Title: %s", unit.Title))
	}
	if unit.Keywords != "" {
		parts = append(parts, fmt.Sprintf("Keywords: %s", unit.Keywords))
	}
	if unit.Body != "" {
		parts = append(parts, fmt.Sprintf("Content: %s", unit.Body))
	}

	return strings.Join(parts, "\n\n")
}

// FormatCategory renders a category node into its own embeddable entry, so
// broad queries can match a topic even when no single unit does.
func FormatCategory(category *entity.CategoryNode) string {
	text := fmt.Sprintf("Category: %s", category.Name)
	if category.Description != "" {
		text += fmt.Sprintf("\nDescription: %s", category.Description)
	}
	return text
}
