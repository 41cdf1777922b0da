package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// canonicalBytes joins parts with a newline separator after trimming
// trailing whitespace from each, so the same logical input always hashes
// to the same bytes regardless of how it was assembled.
func canonicalBytes(parts ...string) []byte {
	trimmed := make([]string, len(parts))
	for i, p := range parts {
		trimmed[i] = strings.TrimRight(p, " \t\r\n")
	}
	return []byte(strings.Join(trimmed, "\n"))
}

func hashHex(parts ...string) string {
	sum := sha256.Sum256(canonicalBytes(parts...))
	return hex.EncodeToString(sum[:])
}

// InputHash digests the normalised query, the sorted tenant/user ids, and
// the canonical config bundle.
func InputHash(query, tenantID, userID string, cfg ConfigBundle) string {
	ids := []string{tenantID, userID}
	sort.Strings(ids)
	return hashHex(strings.TrimSpace(query), strings.Join(ids, ","), canonicalConfig(cfg))
}

// OutputHash digests the final emitted text.
func OutputHash(finalText string) string {
	return hashHex(finalText)
}

// ContextHash digests the sorted, deduplicated set of source ids consumed
// by tool calls during the run.
func ContextHash(sourceIDs []string) string {
	sorted := append([]string(nil), sourceIDs...)
	sort.Strings(sorted)
	dedup := make([]string, 0, len(sorted))
	for i, id := range sorted {
		if i == 0 || sorted[i-1] != id {
			dedup = append(dedup, id)
		}
	}
	return hashHex(strings.Join(dedup, ","))
}

func canonicalConfig(c ConfigBundle) string {
	var b strings.Builder
	b.WriteString("k=")
	b.WriteString(strconv.Itoa(c.KTotal))
	b.WriteString(";alpha=")
	b.WriteString(strconv.FormatFloat(c.PersonalisationAlpha, 'f', -1, 64))
	b.WriteString(";iter=")
	b.WriteString(strconv.Itoa(c.MaxIterations))
	b.WriteString(";deadline=")
	b.WriteString(strconv.FormatInt(c.DeadlineMS, 10))
	b.WriteString(";cost=")
	b.WriteString(strconv.FormatFloat(c.CostCeiling, 'f', -1, 64))
	b.WriteString(";pii=")
	b.WriteString(c.PIIStrategy)
	b.WriteString(";doctype=")
	b.WriteString(c.DocumentType)

	if len(c.ModelPreferences) > 0 {
		keys := make([]string, 0, len(c.ModelPreferences))
		for k := range c.ModelPreferences {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(";models=")
		for _, k := range keys {
			b.WriteString(k)
			b.WriteString("=")
			b.WriteString(c.ModelPreferences[k])
			b.WriteString(",")
		}
	}
	return b.String()
}
