package client

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const previewInputLimit = 80

// PreviewResponse fabricates a plausible enhancement locally when the
// backend is absent. Claude targets get XML-tagged sections; others get
// Markdown headings.
func PreviewResponse(modeName, modelName, input string) string {
	excerpt := strings.TrimSpace(input)
	if utf8.RuneCountInString(excerpt) > previewInputLimit {
		excerpt = string([]rune(excerpt)[:previewInputLimit]) + "..."
	}

	var b strings.Builder
	if strings.Contains(strings.ToLower(modelName), "claude") {
		fmt.Fprintf(&b, "<context>\nThe user wants help with: %s\n</context>\n\n", excerpt)
		fmt.Fprintf(&b, "<task>\nApply the %q transformation and produce a precise, well-structured prompt for %s.\n</task>\n\n", modeName, modelName)
		b.WriteString("<output_format>\nRespond with clear sections and concrete, actionable detail.\n</output_format>\n")
	} else {
		fmt.Fprintf(&b, "## Context\nThe user wants help with: %s\n\n", excerpt)
		fmt.Fprintf(&b, "## Task\nApply the %q transformation and produce a precise, well-structured prompt for %s.\n\n", modeName, modelName)
		b.WriteString("## Output Format\nRespond with clear sections and concrete, actionable detail.\n")
	}
	b.WriteString("\n---\n[PREVIEW MODE] No enhancement backend is deployed. This is a simulated result.")
	return b.String()
}
