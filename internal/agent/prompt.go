package agent

import (
	"fmt"
	"strings"

	"legalforge/internal/domain"
)

// systemPromptFor returns the versioned prompt template for kind, keyed
// further by documentType where a document type changes the agent's brief
// (e.g. a "contract" draft cites different conventions than a "motion").
// v1 is the only template version shipped; new versions should be added
// as new cases, never by mutating an existing one in place, so a run's
// trace always reflects the template that actually produced it.
func systemPromptFor(kind domain.AgentKind, documentType string) string {
	doc := documentType
	if doc == "" {
		doc = "general legal document"
	}

	switch kind {
	case domain.AgentAnalyser:
		return fmt.Sprintf(
			"You are the analysis stage for a %s. Read the user's request and determine "+
				"what it is actually asking for. Decide whether answering it requires information "+
				"beyond what has already been retrieved. Respond in exactly this form:\n"+
				"NEEDS_EXTERNAL_INFO: yes|no\n"+
				"SUMMARY: <one paragraph analysis>", doc)

	case domain.AgentResearcher:
		return fmt.Sprintf(
			"You are the research stage for a %s. Using the retrieved context below, "+
				"produce a concise finding that answers the open question from the analysis. "+
				"Cite source ids inline as [source_id]. Return only the finding text.", doc)

	case domain.AgentDrafter:
		return fmt.Sprintf(
			"You are the drafting stage for a %s. Using the analysis, research findings, and "+
				"retrieved context below, produce the document text. Cite source ids inline as "+
				"[source_id] wherever a claim depends on a retrieved source. Return only the draft text.", doc)

	case domain.AgentCritic:
		return fmt.Sprintf(
			"You are the critic stage for a %s. Evaluate the current draft for correctness, "+
				"completeness, and citation support. Respond in exactly this form:\n"+
				"VERDICT: accept|revise\n"+
				"NOTES: <specific, actionable feedback>", doc)

	case domain.AgentFormatter:
		return fmt.Sprintf(
			"You are the formatting stage for a %s. Apply final formatting conventions to the "+
				"accepted draft without changing its substance. Return only the formatted text.", doc)

	default:
		return "You are an assistant. Respond concisely."
	}
}

// userPromptFor assembles the turn-specific context: the working set
// entries relevant to kind, the retrieval record's top hits, and the
// PII-redacted query view the caller (the supervisor, via the policy gate)
// has already produced.
func userPromptFor(kind domain.AgentKind, state *domain.RunState, redactedQuery string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "User request:\n%s\n\n", redactedQuery)

	if len(state.Retrieval) > 0 {
		latest := state.Retrieval[len(state.Retrieval)-1]
		b.WriteString("Retrieved context:\n")
		top := latest.Hits
		if len(top) > 10 {
			top = top[:10]
		}
		for _, hit := range top {
			fmt.Fprintf(&b, "[%s] %s\n", hit.SourceID, hit.Excerpt)
		}
		b.WriteString("\n")
	}

	switch kind {
	case domain.AgentResearcher:
		if len(state.Working.ResearchFindings) > 0 {
			b.WriteString("Prior findings:\n")
			for _, f := range state.Working.ResearchFindings {
				fmt.Fprintf(&b, "- %s\n", f.Text)
			}
			b.WriteString("\n")
		}

	case domain.AgentDrafter:
		if len(state.Working.ResearchFindings) > 0 {
			b.WriteString("Research findings:\n")
			for _, f := range state.Working.ResearchFindings {
				fmt.Fprintf(&b, "- %s\n", f.Text)
			}
			b.WriteString("\n")
		}
		if verdict, ok := state.Working.LatestVerdict(); ok {
			fmt.Fprintf(&b, "Prior critic notes (version %d):\n%s\n\n", verdict.Version, verdict.Text)
		}
		if state.Working.Draft != nil {
			fmt.Fprintf(&b, "Current draft (version %d):\n%s\n\n", state.Working.Draft.Version, state.Working.Draft.Text)
		}

	case domain.AgentCritic:
		if state.Working.Draft != nil {
			fmt.Fprintf(&b, "Draft to review:\n%s\n\n", state.Working.Draft.Text)
		}

	case domain.AgentFormatter:
		if state.Working.Draft != nil {
			fmt.Fprintf(&b, "Accepted draft:\n%s\n\n", state.Working.Draft.Text)
		}
	}

	return b.String()
}

// repairDirective is appended to the user prompt on a single parse-failure
// retry, naming the exact format violation so the model can self-correct.
func repairDirective(reason string) string {
	return fmt.Sprintf("\n\nYour previous response could not be parsed: %s. Respond again in exactly the required form.", reason)
}
