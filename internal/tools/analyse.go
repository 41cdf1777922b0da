package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var headingPattern = regexp.MustCompile(`(?m)^(#{1,6}\s|[0-9]+\.\s|[A-Z][A-Z ]{3,}$)`)
var sentencePattern = regexp.MustCompile(`[.!?]+(\s|$)`)

// documentStructure summarises a document's shape for the analyser agent,
// which uses it to decide whether the user's request is about an existing
// document's content or a fresh drafting task.
type documentStructure struct {
	ParagraphCount int      `json:"paragraph_count"`
	SentenceCount  int      `json:"sentence_count"`
	HeadingCount   int      `json:"heading_count"`
	Headings       []string `json:"headings,omitempty"`
}

// NewDocumentAnalyseTool extracts structural signals (paragraph, sentence
// and heading counts) from a caller-supplied document. No example repo
// parses legal-document structure; this is plain regexp-based segmentation
// rather than a borrowed parser, since the concern has no ecosystem library
// in the corpus to ground it on.
func NewDocumentAnalyseTool() *Tool {
	return &Tool{
		Name:        "document_analyse",
		Description: "Extract paragraph, sentence and heading structure from a document.",
		Category:    CategoryAnalysis,
		Schema: ToolSchema{
			Required: []string{"text"},
			Properties: map[string]Property{
				"text": {Type: "string", Description: "the document text to analyse"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			text, _ := args["text"].(string)
			structure := analyseStructure(text)
			out, err := json.Marshal(structure)
			if err != nil {
				return "", fmt.Errorf("document_analyse: encoding result: %w", err)
			}
			return string(out), nil
		},
	}
}

func analyseStructure(text string) documentStructure {
	var paragraphs int
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			paragraphs++
		}
	}

	sentences := sentencePattern.FindAllString(text, -1)
	headings := headingPattern.FindAllString(text, -1)
	for i, h := range headings {
		headings[i] = strings.TrimSpace(h)
	}

	return documentStructure{
		ParagraphCount: paragraphs,
		SentenceCount:  len(sentences),
		HeadingCount:   len(headings),
		Headings:       headings,
	}
}
