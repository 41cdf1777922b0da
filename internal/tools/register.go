package tools

// RegisterAll builds and registers the document-generation pipeline's five
// tools into reg. federator and lexicalIndex may be nil (retrieve and
// jurisprudence_search are then simply not registered), so callers that
// don't wire a retrieval backend still get the three pure tools.
func RegisterAll(reg *Registry, federator Federator, lexicalIndex LexicalSearcher) error {
	tools := []*Tool{
		NewFormatCitationTool(),
		NewQualityScoreTool(),
		NewDocumentAnalyseTool(),
	}
	if federator != nil {
		tools = append(tools, NewRetrieveTool(federator))
	}
	if lexicalIndex != nil {
		tools = append(tools, NewJurisprudenceSearchTool(lexicalIndex))
	}

	for _, t := range tools {
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}
