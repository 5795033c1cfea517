package parser

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter extracts a leading YAML block delimited by "---" lines.
// It returns the properties and the content after the block. Content
// without a well-formed block comes back unchanged with nil properties.
func Frontmatter(content string) (map[string]any, string) {
	if !strings.HasPrefix(content, "---\n") && !strings.HasPrefix(content, "---\r\n") {
		return nil, content
	}

	// content[3:] removes the opening "---", leaving "\n<yaml>\n---\n<body>".
	parts := strings.SplitN(content[3:], "\n---", 2)
	if len(parts) < 2 {
		return nil, content
	}

	block := strings.TrimPrefix(strings.TrimPrefix(parts[0], "\r\n"), "\n")
	after := strings.TrimPrefix(strings.TrimPrefix(parts[1], "\r\n"), "\n")

	var props map[string]any
	if err := yaml.Unmarshal([]byte(block), &props); err != nil {
		return nil, content
	}
	return props, after
}
