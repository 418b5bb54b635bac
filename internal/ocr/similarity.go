package ocr

import (
	"strings"
	"unicode/utf8"

	"github.com/arbovm/levenshtein"
	"github.com/codycollier/wer"
)

// TextSimilarity returns a 0-1 similarity between the declared text and the
// recognized text, based on normalized Levenshtein distance over the
// whitespace-collapsed, upper-cased forms.
func TextSimilarity(expected, actual string) float64 {
	e := normalizeOCRText(expected)
	a := normalizeOCRText(actual)
	if e == "" && a == "" {
		return 1
	}
	longest := utf8.RuneCountInString(e)
	if n := utf8.RuneCountInString(a); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.Distance(e, a)
	sim := 1 - float64(dist)/float64(longest)
	if sim < 0 {
		return 0
	}
	return sim
}

// WordErrorRate returns the word error rate of the recognized text against
// the declared reference. An empty reference scores 0; an unusable hypothesis
// scores 1.
func WordErrorRate(expected, actual string) float64 {
	ref := strings.Fields(normalizeOCRText(expected))
	if len(ref) == 0 {
		return 0
	}
	hyp := strings.Fields(normalizeOCRText(actual))
	rate, _ := wer.WER(ref, hyp)
	return rate
}
