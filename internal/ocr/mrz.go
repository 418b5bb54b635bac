package ocr

import (
	"regexp"
	"strings"
)

// MRZ lines are 30 (TD1), 36 (TD2) or 44 (TD3) characters from a restricted
// charset. OCR tends to inject spaces, so candidates are matched after
// stripping them.
var mrzLinePattern = regexp.MustCompile(`^[A-Z0-9<]{30,44}$`)

const td3LineLength = 44

// DetectMRZ scans raw OCR text for a machine-readable zone. found reports
// whether at least two MRZ-shaped lines are present; valid additionally
// requires the TD3 data line's check digits to verify. Non-TD3 zones are
// reported found but not validated.
func DetectMRZ(text string) (found bool, valid bool) {
	var candidates []string
	for _, line := range strings.Split(text, "\n") {
		candidate := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(line)), " ", "")
		if mrzLinePattern.MatchString(candidate) {
			candidates = append(candidates, candidate)
		}
	}
	if len(candidates) < 2 {
		return false, false
	}

	data := candidates[len(candidates)-1]
	if len(data) != td3LineLength {
		return true, false
	}
	return true, validTD3DataLine(data)
}

// validTD3DataLine verifies the document-number, birth-date and expiry-date
// check digits of a TD3 (passport) second line.
func validTD3DataLine(line string) bool {
	return checkDigit(line[0:9]) == mrzCharValue(line[9]) &&
		checkDigit(line[13:19]) == mrzCharValue(line[19]) &&
		checkDigit(line[21:27]) == mrzCharValue(line[27])
}

// checkDigit computes the ICAO 9303 check digit with 7-3-1 weighting.
func checkDigit(field string) int {
	weights := [3]int{7, 3, 1}
	sum := 0
	for i := 0; i < len(field); i++ {
		sum += mrzCharValue(field[i]) * weights[i%3]
	}
	return sum % 10
}

func mrzCharValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	default: // filler '<'
		return 0
	}
}
