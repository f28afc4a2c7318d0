// Package validate decides whether fields extracted from a document can be
// trusted without a human looking at them.
package validate

import (
	"regexp"
	"unicode/utf8"

	"idscan/internal/document"
	"idscan/internal/document/mrz"
)

const minNameLen = 2

var (
	// 13 digits, optionally split once after the sixth.
	residentPattern = regexp.MustCompile(`(?:^|\D)(\d{6})[-\s]?(\d{7})(?:\D|$)`)
	licensePattern  = regexp.MustCompile(`(?:^|\D)\d{2}-\d{2}-\d{6}-\d{2}(?:\D|$)`)
)

// Reason explains a verdict.
type Reason string

const (
	ReasonIdentifier   Reason = "identifier"
	ReasonNameFallback Reason = "name_fallback"
	ReasonMRZ          Reason = "mrz"
	ReasonRejected     Reason = "rejected"
)

// Verdict is the outcome of a validation rule.
type Verdict struct {
	Accepted bool
	Reason   Reason
}

func accept(r Reason) Verdict { return Verdict{Accepted: true, Reason: r} }

var reject = Verdict{Reason: ReasonRejected}

// Rule validates the fields of one card type.
type Rule func(document.Fields) Verdict

var rules = map[document.Type]Rule{
	document.TypeIDCard:        IDCard,
	document.TypeDriverLicense: DriverLicense,
	document.TypeAlienCard:     AlienCard,
}

// Check applies the rule for t. Types without a card rule are rejected.
func Check(t document.Type, f document.Fields) Verdict {
	rule, ok := rules[t]
	if !ok || f == nil {
		return reject
	}
	return rule(f)
}

// IDCard accepts a well-formed resident number, or a plausible name.
func IDCard(f document.Fields) Verdict {
	if IsResidentNumber(f.Get(document.FieldResidentNumber)) {
		return accept(ReasonIdentifier)
	}
	return nameFallback(f)
}

// DriverLicense accepts a DD-DD-DDDDDD-DD license number, or a plausible name.
func DriverLicense(f document.Fields) Verdict {
	if IsLicenseNumber(f.Get(document.FieldLicenseNumber)) {
		return accept(ReasonIdentifier)
	}
	return nameFallback(f)
}

// AlienCard accepts a registration number whose seventh digit marks a foreign
// resident (5-8), or a plausible name.
func AlienCard(f document.Fields) Verdict {
	if IsAlienRegistrationNumber(f.Get(document.FieldRegistrationNumber)) {
		return accept(ReasonIdentifier)
	}
	return nameFallback(f)
}

// Passport accepts MRZ text longer than ten characters that normalizes into a
// TD3 record. Check digits are not consulted.
func Passport(rawMRZ string) Verdict {
	if len(rawMRZ) <= 10 {
		return reject
	}
	if _, err := mrz.Normalize(rawMRZ); err != nil {
		return reject
	}
	return accept(ReasonMRZ)
}

func nameFallback(f document.Fields) Verdict {
	if utf8.RuneCountInString(f.Get(document.FieldName)) >= minNameLen {
		return accept(ReasonNameFallback)
	}
	return reject
}

// IsResidentNumber reports whether s contains a 13 digit resident number.
func IsResidentNumber(s string) bool {
	return residentPattern.MatchString(s)
}

// IsLicenseNumber reports whether s contains a driver license number.
func IsLicenseNumber(s string) bool {
	return licensePattern.MatchString(s)
}

// IsAlienRegistrationNumber reports whether s contains a resident-format
// number whose seventh digit is 5, 6, 7 or 8.
func IsAlienRegistrationNumber(s string) bool {
	m := residentPattern.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	switch m[2][0] {
	case '5', '6', '7', '8':
		return true
	}
	return false
}
