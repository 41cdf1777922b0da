package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var citationRefPattern = regexp.MustCompile(`\[[^\]\s]+\]`)

// qualityReport is the structured signal handed back to the critic: a
// citation-density heuristic and a count of paragraphs with no citation,
// neither of which substitutes for the critic's own model-driven judgement.
type qualityReport struct {
	WordCount        int     `json:"word_count"`
	CitationCount     int     `json:"citation_count"`
	CitationDensity   float64 `json:"citation_density_per_1k_words"`
	UncitedParagraphs int     `json:"uncited_paragraphs"`
}

// NewQualityScoreTool computes cheap structural signals about a draft's
// citation support, for the critic to weigh alongside its own reading. No
// example repo scores legal-document quality; this is plain heuristic
// counting over the text rather than a borrowed statistical library.
func NewQualityScoreTool() *Tool {
	return &Tool{
		Name:        "quality_score",
		Description: "Compute citation-density and coverage heuristics for a draft.",
		Category:    CategoryQuality,
		Schema: ToolSchema{
			Required: []string{"text"},
			Properties: map[string]Property{
				"text": {Type: "string", Description: "the draft text to score"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			text, _ := args["text"].(string)
			report := scoreQuality(text)
			out, err := json.Marshal(report)
			if err != nil {
				return "", fmt.Errorf("quality_score: encoding result: %w", err)
			}
			return string(out), nil
		},
	}
}

func scoreQuality(text string) qualityReport {
	words := strings.Fields(text)
	citations := citationRefPattern.FindAllString(text, -1)

	paragraphs := strings.Split(text, "\n\n")
	uncited := 0
	for _, p := range paragraphs {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if !citationRefPattern.MatchString(p) {
			uncited++
		}
	}

	density := 0.0
	if len(words) > 0 {
		density = float64(len(citations)) / float64(len(words)) * 1000
	}

	return qualityReport{
		WordCount:         len(words),
		CitationCount:     len(citations),
		CitationDensity:   density,
		UncitedParagraphs: uncited,
	}
}
