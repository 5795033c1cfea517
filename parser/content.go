package parser

import (
	"regexp"
	"strings"

	"github.com/skridlevsky/codex/types"
)

var (
	// # Title on the first heading line
	headingPattern = regexp.MustCompile(`(?m)^#\s+(.+?)\s*$`)

	// [[target]] wiki-style mentions
	linkPattern = regexp.MustCompile(`\[\[([^\]]+)\]\]`)

	// #tag, not a heading
	tagPattern = regexp.MustCompile(`(?:^|\s)#([a-zA-Z0-9_-]+)`)

	// - [] open item, optionally indented
	openTodoPattern = regexp.MustCompile(`(?m)^( |\t)*- \[\] .*`)

	// - [x] finished item
	doneTodoPattern = regexp.MustCompile(`(?m)^( |\t)*- \[[xX]\] .*`)
)

// Parse extracts structured data from a node's markdown body. A leading
// YAML frontmatter block becomes Properties and is not scanned further.
func Parse(content string) types.ParsedContent {
	props, body := Frontmatter(content)
	result := types.ParsedContent{
		Raw:        content,
		Properties: props,
		Links:      extractLinks(body),
		Tags:       extractTags(body),
		OpenTodos:  OpenTodos(body),
		DoneTodos:  len(doneTodoPattern.FindAllString(body, -1)),
	}
	if m := headingPattern.FindStringSubmatch(body); len(m) > 1 {
		result.Heading = m[1]
	}
	return result
}

// OpenTodos returns every open checklist line in content, indentation kept.
func OpenTodos(content string) []string {
	return openTodoPattern.FindAllString(content, -1)
}

// extractLinks finds all [[target]] patterns in content.
func extractLinks(content string) []string {
	matches := linkPattern.FindAllStringSubmatch(content, -1)
	links := make([]string, 0, len(matches))
	seen := make(map[string]bool)
	for _, m := range matches {
		name := m[1]
		if !seen[name] {
			links = append(links, name)
			seen[name] = true
		}
	}
	return links
}

// extractTags finds all #tag patterns in content.
func extractTags(content string) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, m := range tagPattern.FindAllStringSubmatch(content, -1) {
		tag := m[1]
		if !seen[tag] {
			tags = append(tags, tag)
			seen[tag] = true
		}
	}
	return tags
}

// StripHeading removes the leading "# title" line from content.
func StripHeading(content string) string {
	if !strings.HasPrefix(content, "# ") {
		return content
	}
	if _, rest, ok := strings.Cut(content, "\n"); ok {
		return rest
	}
	return ""
}
