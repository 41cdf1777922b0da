// Package pii detects and redacts personally or commercially identifying
// spans in text before it reaches a model call or leaves the run. It
// implements the policy gate's PII-handling checkpoint work: detection,
// verifier-digit validation, confidence scoring, and the three redaction
// strategies.
package pii

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"legalforge/internal/domain"
	"legalforge/internal/logging"
)

// pattern pairs a PII kind with its detection regex and an optional
// verifier that confirms a candidate match is really that kind of number.
type pattern struct {
	kind    domain.PIIKind
	regex   *regexp.Regexp
	verify  func(match string) (valid bool, hasVerifier bool)
}

var patterns = []pattern{
	{kind: domain.PIITaxID, regex: regexp.MustCompile(`\b\d{3}\.\d{3}\.\d{3}-\d{2}\b`), verify: verifyCPF},
	{kind: domain.PIICorporateID, regex: regexp.MustCompile(`\b\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}\b`), verify: verifyCNPJ},
	{kind: domain.PIIEmail, regex: regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)},
	{kind: domain.PIIPhone, regex: regexp.MustCompile(`\b(?:\+?\d{1,3}[ \-]?)?\(?\d{2,3}\)?[ \-]?\d{4,5}[ \-]?\d{4}\b`)},
	{kind: domain.PIINationalID, regex: regexp.MustCompile(`\b\d{2}\.\d{3}\.\d{3}-\d\b`)},
	{kind: domain.PIIAddress, regex: regexp.MustCompile(`(?i)\b(rua|avenida|av\.|alameda|street|st\.|avenue)\s+[A-Za-zÀ-ÿ0-9 .,ºª]{3,60}\d+\b`)},
	{kind: domain.PIICardNumber, regex: regexp.MustCompile(`\b(?:\d[ -]?){13,16}\b`), verify: verifyLuhn},
	{kind: domain.PIIBankAccount, regex: regexp.MustCompile(`\b\d{4,5}-\d\b`)},
}

// Detection is one detected span prior to redaction, carrying the raw
// matched text (never written to the audit record — only Redacted is).
type Detection struct {
	domain.PIIDetection
	raw string
}

// Detect scans text for all enabled PII kinds and returns one Detection
// per match, in order of appearance. Overlapping matches from different
// patterns are kept independently; callers redact highest-kind-priority
// first if that matters for their use case (it doesn't for this gate:
// spans rarely overlap in practice because patterns are structurally
// distinct).
func Detect(text string, enabledKinds []domain.PIIKind) []Detection {
	enabled := make(map[domain.PIIKind]bool, len(enabledKinds))
	for _, k := range enabledKinds {
		enabled[k] = true
	}

	var out []Detection
	for _, p := range patterns {
		if len(enabled) > 0 && !enabled[p.kind] {
			continue
		}
		for _, loc := range p.regex.FindAllStringIndex(text, -1) {
			start, end := loc[0], loc[1]
			raw := text[start:end]

			confidence := 0.75
			verifierValid := false
			if p.verify != nil {
				valid, hasVerifier := p.verify(raw)
				if hasVerifier {
					verifierValid = valid
					if valid {
						confidence = 0.95
					} else {
						confidence = 0.3
					}
				}
			}

			out = append(out, Detection{
				PIIDetection: domain.PIIDetection{
					Kind:               p.kind,
					Start:              start,
					End:                end,
					VerifierDigitValid: verifierValid,
					Confidence:         confidence,
				},
				raw: raw,
			})
		}
	}
	return out
}

// Redact applies strategy to every detection in text and returns the
// redacted text plus the detections updated with their Redacted form and
// Strategy. Detections whose verifier digits are invalid are excluded from
// strict (typed/hashed) redaction — they're reported at low confidence but
// left in place, since a failed check-digit match is likely not real PII.
func Redact(text string, detections []Detection, strategy domain.RedactionStrategy) (string, []domain.PIIDetection) {
	// Process in reverse offset order so earlier replacements don't shift
	// the indices of ones not yet applied.
	ordered := append([]Detection(nil), detections...)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j-1].Start < ordered[j].Start; j-- {
			ordered[j-1], ordered[j] = ordered[j], ordered[j-1]
		}
	}

	redactedText := text
	results := make([]domain.PIIDetection, 0, len(detections))

	for _, d := range ordered {
		if hasVerifierKind(d.Kind) && !d.VerifierDigitValid {
			d.PIIDetection.Strategy = strategy
			d.PIIDetection.Redacted = d.raw
			results = append(results, d.PIIDetection)
			continue
		}

		replacement := redactionForm(d, strategy)
		redactedText = redactedText[:d.Start] + replacement + redactedText[d.End:]

		d.PIIDetection.Strategy = strategy
		d.PIIDetection.Redacted = replacement
		results = append(results, d.PIIDetection)
	}

	// Restore appearance order for the returned report.
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && results[j-1].Start > results[j].Start; j-- {
			results[j-1], results[j] = results[j], results[j-1]
		}
	}

	logging.Get(logging.CategoryPII).Debug("redacted %d spans with strategy=%s", len(results), strategy)
	return redactedText, results
}

func hasVerifierKind(k domain.PIIKind) bool {
	return k == domain.PIITaxID || k == domain.PIICorporateID || k == domain.PIICardNumber
}

func redactionForm(d Detection, strategy domain.RedactionStrategy) string {
	switch strategy {
	case domain.RedactionHashed:
		sum := sha256.Sum256([]byte(d.raw))
		return fmt.Sprintf("[%s_%s]", strings.ToUpper(string(d.Kind)), hex.EncodeToString(sum[:])[:8])
	case domain.RedactionMasked:
		return strings.Repeat("*", len(d.raw))
	default: // domain.RedactionTyped
		return fmt.Sprintf("[%s_REDACTED]", strings.ToUpper(string(d.Kind)))
	}
}

// verifyCPF checks a Brazilian tax id's two check digits (mod-11).
func verifyCPF(s string) (valid bool, hasVerifier bool) {
	digits := onlyDigits(s)
	if len(digits) != 11 || isRepdigit(digits) {
		return false, true
	}
	return cpfCheckDigits(digits), true
}

// isRepdigit reports whether every digit is the same (e.g. "00000000000").
// The mod-11 check-digit formula accepts these, but they are never valid
// issued ids, so real validators reject them explicitly.
func isRepdigit(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}

func cpfCheckDigits(d string) bool {
	nums := make([]int, len(d))
	for i, c := range d {
		nums[i] = int(c - '0')
	}
	calc := func(upto int) int {
		sum := 0
		weight := upto + 1
		for i := 0; i < upto; i++ {
			sum += nums[i] * weight
			weight--
		}
		rem := sum % 11
		if rem < 2 {
			return 0
		}
		return 11 - rem
	}
	return calc(9) == nums[9] && calc(10) == nums[10]
}

// verifyCNPJ checks a Brazilian corporate id's two check digits (mod-11
// with the CNPJ-specific weight cycle).
func verifyCNPJ(s string) (valid bool, hasVerifier bool) {
	digits := onlyDigits(s)
	if len(digits) != 14 {
		return false, true
	}
	nums := make([]int, len(digits))
	for i, c := range digits {
		nums[i] = int(c - '0')
	}
	weights1 := []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	weights2 := []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	calc := func(n int, weights []int) int {
		sum := 0
		for i := 0; i < n; i++ {
			sum += nums[i] * weights[i]
		}
		rem := sum % 11
		if rem < 2 {
			return 0
		}
		return 11 - rem
	}
	return calc(12, weights1) == nums[12] && calc(13, weights2) == nums[13], true
}

// verifyLuhn checks a card number's Luhn check digit.
func verifyLuhn(s string) (valid bool, hasVerifier bool) {
	digits := onlyDigits(s)
	if len(digits) < 13 || len(digits) > 19 {
		return false, true
	}
	sum := 0
	alt := false
	for i := len(digits) - 1; i >= 0; i-- {
		n, _ := strconv.Atoi(string(digits[i]))
		if alt {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		alt = !alt
	}
	return sum%10 == 0, true
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
