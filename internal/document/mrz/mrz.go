// Package mrz decodes the ICAO 9303 TD3 machine readable zone printed on
// passports. Input is text already read off the document by the scanner; the
// package only structures and checks it.
package mrz

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

const (
	// LineLength is the TD3 line width.
	LineLength = 44
	// Filler pads unused positions.
	Filler = '<'
)

var (
	ErrTooShort  = errors.New("mrz: fewer than 44 usable characters")
	ErrMalformed = errors.New("mrz: malformed line")
)

// line2Start recognizes the issuing-country/document-number signature that
// opens line 2 when a damaged capture lost its line break.
var line2Start = regexp.MustCompile(`[A-Z]{1,2}[0-9]{5,}`)

// Record is a normalized two-line MRZ. Both lines are exactly LineLength
// characters over A-Z, 0-9 and '<'.
type Record struct {
	Line1 string
	Line2 string
}

func (r Record) String() string {
	return r.Line1 + "\n" + r.Line2
}

// Normalize cleans raw scanner output into a Record.
func Normalize(raw string) (Record, error) {
	cleaned := clean(raw)

	var segments []string
	for _, seg := range strings.Split(cleaned, "\n") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) >= 2 {
		return Record{Line1: fit(segments[0]), Line2: fit(segments[1])}, nil
	}

	joined := strings.Join(segments, "")
	switch {
	case len(joined) >= 2*LineLength:
		return Record{Line1: joined[:LineLength], Line2: joined[LineLength : 2*LineLength]}, nil
	case len(joined) >= LineLength:
		return splitDamaged(joined), nil
	default:
		return Record{}, ErrTooShort
	}
}

// clean drops control characters, maps whitespace to filler and keeps only the
// MRZ alphabet plus line breaks.
func clean(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r == '\n':
			b.WriteRune(r)
		case r == '\r' || (unicode.IsControl(r) && r != '\t'):
			continue
		case unicode.IsSpace(r):
			b.WriteRune(Filler)
		default:
			r = unicode.ToUpper(r)
			if isAlphabet(r) {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

func isAlphabet(r rune) bool {
	return r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == Filler
}

// splitDamaged handles a capture shorter than two full lines: line 2 is found
// by its country/document-number signature, else the text is cut at 44.
func splitDamaged(s string) Record {
	if loc := line2Start.FindStringIndex(s); loc != nil && loc[0] > 0 {
		return Record{Line1: fit(s[:loc[0]]), Line2: fit(s[loc[0]:])}
	}
	return Record{Line1: fit(s[:LineLength]), Line2: fit(s[LineLength:])}
}

// fit right-pads with filler and truncates to LineLength.
func fit(s string) string {
	if len(s) >= LineLength {
		return s[:LineLength]
	}
	return s + strings.Repeat(string(Filler), LineLength-len(s))
}

var weights = [3]int{7, 3, 1}

// Checksum computes the ICAO 9303 check digit of field.
func Checksum(field string) int {
	sum := 0
	for i, r := range field {
		sum += value(r) * weights[i%3]
	}
	return sum % 10
}

func value(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'A' && r <= 'Z':
		return int(r-'A') + 10
	default:
		return 0
	}
}

// checkDigitMatches reports whether digit is the check digit of field. A
// filler in the check position counts as zero.
func checkDigitMatches(field string, digit byte) bool {
	want := 0
	switch {
	case digit >= '0' && digit <= '9':
		want = int(digit - '0')
	case digit == Filler:
		want = 0
	default:
		return false
	}
	return Checksum(field) == want
}

// PassportNumber is the document number read from line 2 together with the
// result of its check digit.
type PassportNumber struct {
	Number     string
	CheckValid bool
}

// ExtractPassportNumber returns the document number from raw MRZ text. A check
// digit mismatch is reported in CheckValid; it never rejects the number.
func ExtractPassportNumber(raw string) (PassportNumber, error) {
	rec, err := Normalize(raw)
	if err != nil {
		return PassportNumber{}, err
	}
	field := rec.Line2[0:9]
	number := strings.ToUpper(strings.ReplaceAll(field, string(Filler), ""))
	if number == "" {
		return PassportNumber{}, ErrMalformed
	}
	return PassportNumber{
		Number:     number,
		CheckValid: checkDigitMatches(field, rec.Line2[9]),
	}, nil
}
