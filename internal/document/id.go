package document

import (
	"strings"
	"unicode"
)

const (
	identifierPrefixLen = 6
	maxKeyLen           = 64
)

// DocumentID derives a stable identifier for a recognized document. Priority:
// passport number, resident number prefix, license number, alien registration
// prefix, type name, then fallback().
func DocumentID(passportNumber string, p *Parsed, t Type, fallback func() string) string {
	if passportNumber == "" && p != nil && p.Passport != nil {
		passportNumber = p.Passport.DocumentNumber
	}
	if passportNumber != "" {
		return passportNumber
	}

	if p != nil {
		if prefix := digitPrefix(residentNumber(p)); prefix != "" {
			return prefix
		}
		if p.DriverLicense != nil && p.DriverLicense.LicenseNumber != "" {
			return p.DriverLicense.LicenseNumber
		}
		if p.AlienCard != nil {
			if prefix := digitPrefix(p.AlienCard.RegistrationNumber); prefix != "" {
				return prefix
			}
		}
	}

	if t.Known() {
		return t.String()
	}
	return fallback()
}

func residentNumber(p *Parsed) string {
	switch {
	case p.IDCard != nil && p.IDCard.ResidentNumber != "":
		return p.IDCard.ResidentNumber
	case p.DriverLicense != nil:
		return p.DriverLicense.ResidentNumber
	}
	return ""
}

// digitPrefix returns the first six digits of s, or "" if s has fewer.
func digitPrefix(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == identifierPrefixLen {
				return b.String()
			}
		}
	}
	return ""
}

// SanitizeKey makes s safe for file names and storage keys.
func SanitizeKey(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	key := strings.Trim(b.String(), "_")
	if len(key) > maxKeyLen {
		key = key[:maxKeyLen]
	}
	if key == "" {
		return "document"
	}
	return key
}
