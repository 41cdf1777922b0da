package embedding

import (
	"strings"

	"legalforge/internal/logging"
)

// =============================================================================
// TASK TYPE SELECTION FOR LEGAL-DOCUMENT CONTENT
// =============================================================================

// ContentType represents the kind of text being embedded in a run.
type ContentType string

const (
	ContentTypeQuery        ContentType = "query"         // The user's natural-language task
	ContentTypeClause       ContentType = "clause"        // Contract/statute clause text
	ContentTypeCaseLaw      ContentType = "case_law"       // Jurisprudence excerpt
	ContentTypeDraft        ContentType = "draft"          // Drafter working output
	ContentTypeCriticNote   ContentType = "critic_note"    // Critic verdict / annotation
	ContentTypeCentroid     ContentType = "centroid"       // Tenant thematic centroid seed text
	ContentTypeExternalDoc  ContentType = "external_doc"   // Caller-supplied document
)

// SelectTaskType picks the GenAI embedding task type best suited to content.
func SelectTaskType(contentType ContentType, isQuery bool) string {
	logging.EmbeddingDebug("SelectTaskType: content_type=%s, is_query=%v", contentType, isQuery)

	var taskType string

	switch contentType {
	case ContentTypeQuery:
		taskType = "RETRIEVAL_QUERY"

	case ContentTypeClause, ContentTypeCaseLaw, ContentTypeExternalDoc:
		if isQuery {
			taskType = "RETRIEVAL_QUERY"
		} else {
			taskType = "RETRIEVAL_DOCUMENT"
		}

	case ContentTypeCentroid:
		taskType = "CLUSTERING"

	case ContentTypeDraft, ContentTypeCriticNote:
		taskType = "SEMANTIC_SIMILARITY"

	default:
		taskType = "SEMANTIC_SIMILARITY"
		logging.EmbeddingDebug("SelectTaskType: unknown content_type=%s, defaulting to SEMANTIC_SIMILARITY", contentType)
	}

	logging.EmbeddingDebug("SelectTaskType: selected task_type=%s", taskType)
	return taskType
}

// DetectContentType guesses a ContentType from metadata attached to text,
// falling back to the external-document default since that is the only
// untyped text the retrieval federator embeds (queries and drafts are
// always tagged explicitly by their caller).
func DetectContentType(metadata map[string]interface{}) ContentType {
	if meta, ok := metadata["content_type"].(string); ok {
		return ContentType(meta)
	}

	if metaType, ok := metadata["type"].(string); ok {
		switch strings.ToLower(metaType) {
		case "clause", "contract", "statute":
			return ContentTypeClause
		case "case_law", "jurisprudence":
			return ContentTypeCaseLaw
		case "query":
			return ContentTypeQuery
		}
	}

	return ContentTypeExternalDoc
}

// GetOptimalTaskType combines detection and selection for convenience.
func GetOptimalTaskType(metadata map[string]interface{}, isQuery bool) string {
	contentType := DetectContentType(metadata)
	taskType := SelectTaskType(contentType, isQuery)
	logging.Embedding("GetOptimalTaskType: detected content_type=%s -> task_type=%s", contentType, taskType)
	return taskType
}
