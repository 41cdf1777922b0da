package embedding

import "testing"

func TestSelectTaskType(t *testing.T) {
	if got := SelectTaskType(ContentTypeClause, true); got != "RETRIEVAL_QUERY" {
		t.Fatalf("SelectTaskType(clause, query)=%q, want RETRIEVAL_QUERY", got)
	}
	if got := SelectTaskType(ContentTypeClause, false); got != "RETRIEVAL_DOCUMENT" {
		t.Fatalf("SelectTaskType(clause, doc)=%q, want RETRIEVAL_DOCUMENT", got)
	}
	if got := SelectTaskType(ContentTypeQuery, false); got != "RETRIEVAL_QUERY" {
		t.Fatalf("SelectTaskType(query)=%q, want RETRIEVAL_QUERY", got)
	}
	if got := SelectTaskType(ContentTypeCentroid, false); got != "CLUSTERING" {
		t.Fatalf("SelectTaskType(centroid)=%q, want CLUSTERING", got)
	}
}

func TestDetectContentType_MetadataWins(t *testing.T) {
	meta := map[string]interface{}{"content_type": "case_law"}
	if got := DetectContentType(meta); got != ContentTypeCaseLaw {
		t.Fatalf("DetectContentType(metadata content_type)=%q, want %q", got, ContentTypeCaseLaw)
	}

	meta = map[string]interface{}{"type": "query"}
	if got := DetectContentType(meta); got != ContentTypeQuery {
		t.Fatalf("DetectContentType(metadata type=query)=%q, want %q", got, ContentTypeQuery)
	}
}

func TestDetectContentType_DefaultsToExternalDoc(t *testing.T) {
	if got := DetectContentType(map[string]interface{}{}); got != ContentTypeExternalDoc {
		t.Fatalf("DetectContentType(no metadata)=%q, want %q", got, ContentTypeExternalDoc)
	}
}

func TestGetOptimalTaskType(t *testing.T) {
	got := GetOptimalTaskType(map[string]interface{}{"type": "statute"}, true)
	if got != "RETRIEVAL_QUERY" {
		t.Fatalf("GetOptimalTaskType(statute query)=%q, want RETRIEVAL_QUERY", got)
	}
}
