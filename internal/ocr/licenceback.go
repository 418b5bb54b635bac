// Package ocr extracts structured data from text recognized on identity
// documents and wraps the Tesseract engine used when the caller did not
// provide pre-extracted text.
package ocr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// LicenceBackExtract is the normalized structure parsed from the reverse side
// of a driver's licence. Dates are ISO-8601 strings; empty means absent.
type LicenceBackExtract struct {
	Categories []string `json:"categories,omitempty"`
	IssueDate  string   `json:"issue_date,omitempty"`
	ExpiryDate string   `json:"expiry_date,omitempty"`
	BirthDate  string   `json:"birth_date,omitempty"`
}

// categoryVocabulary lists the authorized vehicle category codes in display
// order. Extraction emits matches in this order regardless of where they
// appear in the scan.
var categoryVocabulary = []string{"A1", "A", "B1", "B", "C1", "C", "D1", "D", "BE", "CE", "DE"}

// Alternatives are ordered longest first so B1 is not shadowed by B.
var categoryPattern = regexp.MustCompile(`\b(A1|B1|C1|D1|BE|CE|DE|A|B|C|D)\b`)

var (
	datePattern = regexp.MustCompile(`\b(\d{1,2})[./-](\d{1,2})[./-](\d{2,4})\b`)

	// Issue and expiry printed side by side, pipe separated.
	datePairPattern = regexp.MustCompile(`\b(\d{1,2})[./-](\d{1,2})[./-](\d{2,4})\s*\|\s*(\d{1,2})[./-](\d{1,2})[./-](\d{2,4})\b`)
)

// Label keywords for the proximity fallback, matched against the upper-cased
// text. Both accented and OCR-mangled unaccented spellings are listed.
var (
	issueLabels  = []string{"DATE DE DÉLIV", "DÉLIV", "DELIV", "ÉMIS", "EMIS"}
	expiryLabels = []string{"VALABLE JUSQU", "EXPIR"}
	birthLabels  = []string{"NAISSANCE", "NÉ LE", "NE LE"}
)

// labelWindow is how many characters after a label's start offset a date is
// still considered to belong to that label.
const labelWindow = 80

// LicenceParser parses licence-back OCR text. The clock is injectable so the
// two-digit year fold can be tested against a fixed cutoff.
type LicenceParser struct {
	now func() time.Time
}

// NewLicenceParser returns a parser using the wall clock.
func NewLicenceParser() *LicenceParser {
	return &LicenceParser{now: time.Now}
}

// ParseLicenceBack parses text with the default parser. It never fails:
// empty or unusable input yields an all-absent extract.
func ParseLicenceBack(text string) LicenceBackExtract {
	return NewLicenceParser().Parse(text)
}

// Parse runs the extraction stages in order. Each stage only fills fields the
// previous stages left unset; the pipe-pair stage runs first and therefore
// owns issue/expiry whenever it matches.
func (p *LicenceParser) Parse(text string) LicenceBackExtract {
	norm := normalizeOCRText(text)
	out := LicenceBackExtract{}
	if norm == "" {
		return out
	}

	out.Categories = extractCategories(norm)
	p.applyDatePair(&out, norm)
	p.applyLabelProximity(&out, norm)
	p.applyBirthPositional(&out, norm)
	p.applyPositionalFallback(&out, norm)
	return out
}

// normalizeOCRText collapses whitespace runs to single spaces and upper-cases
// the text. Parsing the normalized text again yields an identical result.
func normalizeOCRText(text string) string {
	return strings.ToUpper(strings.Join(strings.Fields(text), " "))
}

func extractCategories(norm string) []string {
	matches := categoryPattern.FindAllString(norm, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		seen[m] = true
	}
	out := make([]string, 0, len(seen))
	for _, code := range categoryVocabulary {
		if seen[code] {
			out = append(out, code)
		}
	}
	return out
}

func (p *LicenceParser) applyDatePair(out *LicenceBackExtract, norm string) {
	m := datePairPattern.FindStringSubmatch(norm)
	if m == nil {
		return
	}
	if iso, ok := p.isoDate(m[1], m[2], m[3]); ok {
		out.IssueDate = iso
	}
	if iso, ok := p.isoDate(m[4], m[5], m[6]); ok {
		out.ExpiryDate = iso
	}
}

func (p *LicenceParser) applyLabelProximity(out *LicenceBackExtract, norm string) {
	if out.IssueDate == "" {
		out.IssueDate = p.dateNearLabels(norm, issueLabels)
	}
	if out.ExpiryDate == "" {
		out.ExpiryDate = p.dateNearLabels(norm, expiryLabels)
	}
	if out.BirthDate == "" {
		out.BirthDate = p.dateNearLabels(norm, birthLabels)
	}
}

func (p *LicenceParser) dateNearLabels(norm string, labels []string) string {
	for _, label := range labels {
		idx := strings.Index(norm, label)
		if idx < 0 {
			continue
		}
		end := idx + labelWindow
		if end > len(norm) {
			end = len(norm)
		}
		m := datePattern.FindStringSubmatch(norm[idx:end])
		if m == nil {
			continue
		}
		if iso, ok := p.isoDate(m[1], m[2], m[3]); ok {
			return iso
		}
	}
	return ""
}

// applyBirthPositional takes the third distinct date in scan order as the
// birth date. This document family prints birth after issue/expiry in raw
// scan order; it is an empirical guess, not a structural guarantee, which is
// why the label stages run first.
func (p *LicenceParser) applyBirthPositional(out *LicenceBackExtract, norm string) {
	if out.BirthDate != "" {
		return
	}
	dates := p.collectDistinctDates(norm)
	if len(dates) >= 3 {
		out.BirthDate = dates[2]
	}
}

func (p *LicenceParser) applyPositionalFallback(out *LicenceBackExtract, norm string) {
	if out.IssueDate != "" && out.ExpiryDate != "" {
		return
	}
	dates := p.collectDistinctDates(norm)
	if out.IssueDate == "" && len(dates) >= 1 {
		out.IssueDate = dates[0]
	}
	if out.ExpiryDate == "" && len(dates) >= 2 {
		out.ExpiryDate = dates[1]
	}
}

func (p *LicenceParser) collectDistinctDates(norm string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range datePattern.FindAllStringSubmatch(norm, -1) {
		iso, ok := p.isoDate(m[1], m[2], m[3])
		if !ok || seen[iso] {
			continue
		}
		seen[iso] = true
		out = append(out, iso)
	}
	return out
}

// isoDate builds YYYY-MM-DD from day/month/year tokens. Two-digit years fold
// against a rolling cutoff equal to the current two-digit year: values at or
// below the cutoff map to 20xx, above it to 19xx. The boundary slides forward
// each year; this is a simple heuristic, not a calendar authority.
func (p *LicenceParser) isoDate(dayStr, monthStr, yearStr string) (string, bool) {
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return "", false
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return "", false
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return "", false
	}
	switch len(yearStr) {
	case 2:
		cutoff := p.now().Year() % 100
		if year <= cutoff {
			year += 2000
		} else {
			year += 1900
		}
	case 4:
	default:
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}
