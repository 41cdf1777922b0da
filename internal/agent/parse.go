package agent

import (
	"strings"

	"legalforge/internal/errs"
)

// analyserOutput is the parsed form of an analyser turn's response.
type analyserOutput struct {
	NeedsExternalInfo bool
	Summary           string
}

func parseAnalyser(response string) (analyserOutput, error) {
	fields := parseFields(response)
	needsRaw, ok := fields["NEEDS_EXTERNAL_INFO"]
	if !ok {
		return analyserOutput{}, errs.Newf(errs.ParseFailure, "missing NEEDS_EXTERNAL_INFO field")
	}
	summary, ok := fields["SUMMARY"]
	if !ok {
		return analyserOutput{}, errs.Newf(errs.ParseFailure, "missing SUMMARY field")
	}
	needs := strings.EqualFold(strings.TrimSpace(needsRaw), "yes")
	return analyserOutput{NeedsExternalInfo: needs, Summary: summary}, nil
}

// criticOutput is the parsed form of a critic turn's response.
type criticOutput struct {
	Verdict string // "accept" or "revise"
	Notes   string
}

func parseCritic(response string) (criticOutput, error) {
	fields := parseFields(response)
	verdict, ok := fields["VERDICT"]
	if !ok {
		return criticOutput{}, errs.Newf(errs.ParseFailure, "missing VERDICT field")
	}
	verdict = strings.ToLower(strings.TrimSpace(verdict))
	if verdict != "accept" && verdict != "revise" {
		return criticOutput{}, errs.Newf(errs.ParseFailure, "VERDICT must be accept or revise, got %q", verdict)
	}
	notes := fields["NOTES"]
	return criticOutput{Verdict: verdict, Notes: notes}, nil
}

// parseFields extracts "KEY: value" lines into a map, with any non-blank
// lines after a key's first line folded into that key's value (so a
// multi-line SUMMARY or NOTES body is kept, minus its blank lines).
func parseFields(response string) map[string]string {
	fields := make(map[string]string)
	var currentKey string
	for _, line := range strings.Split(response, "\n") {
		if key, value, ok := splitFieldLine(line); ok {
			fields[key] = strings.TrimSpace(value)
			currentKey = key
			continue
		}
		if currentKey != "" && strings.TrimSpace(line) != "" {
			fields[currentKey] = fields[currentKey] + "\n" + line
		}
	}
	return fields
}

func splitFieldLine(line string) (key, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	key = strings.ToUpper(strings.TrimSpace(line[:idx]))
	switch key {
	case "NEEDS_EXTERNAL_INFO", "SUMMARY", "VERDICT", "NOTES":
		return key, line[idx+1:], true
	default:
		return "", "", false
	}
}

// plainText parsers for kinds whose response is used verbatim: researcher
// findings, drafter text, and formatter output all pass through unparsed
// beyond a non-empty check.
func parsePlainText(response string) (string, error) {
	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return "", errs.Newf(errs.ParseFailure, "empty response")
	}
	return trimmed, nil
}
