package report

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	summarySentences = 3
	maxKeyValues     = 5
	longReportChars  = 400
)

var numberPattern = regexp.MustCompile(`\d+\.?\d*`)

// Insight is one labelled fact pulled out of a report.
type Insight struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Trend string `json:"trend,omitempty"`
}

func normalizeSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// splitSentences breaks text after '.', '!' or '?' when whitespace follows.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		next := i + utf8.RuneLen(r)
		if next >= len(text) {
			continue
		}
		nr, _ := utf8.DecodeRuneInString(text[next:])
		if !unicode.IsSpace(nr) {
			continue
		}
		if s := strings.TrimSpace(text[start:next]); s != "" {
			sentences = append(sentences, s)
		}
		start = next
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// GenerateSummary returns the first three sentences of text prefixed with
// "Summary: ", or "" when text is blank.
func GenerateSummary(text string) string {
	normalized := normalizeSpace(text)
	if normalized == "" {
		return ""
	}

	sentences := splitSentences(normalized)
	if len(sentences) > summarySentences {
		sentences = sentences[:summarySentences]
	}
	return "Summary: " + strings.Join(sentences, " ")
}

// ExtractInsights reports the first few numbers, the length and the
// sentence count of text.
func ExtractInsights(text string) []Insight {
	var values []string
	for _, m := range numberPattern.FindAllString(text, maxKeyValues) {
		f, err := strconv.ParseFloat(strings.TrimSuffix(m, "."), 64)
		if err != nil {
			continue
		}
		values = append(values, strconv.FormatFloat(f, 'f', -1, 64))
	}

	keyValues := "n/a"
	if len(values) > 0 {
		keyValues = strings.Join(values, ", ")
	}

	length := utf8.RuneCountInString(text)
	trend := "short"
	if length > longReportChars {
		trend = "long"
	}

	return []Insight{
		{Label: "Key Values Found", Value: keyValues},
		{Label: "Report Length", Value: fmt.Sprintf("%d chars", length), Trend: trend},
		{Label: "Sentence Count", Value: strconv.Itoa(len(splitSentences(normalizeSpace(text))))},
	}
}
