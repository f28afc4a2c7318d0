// Package document holds the identity document model shared by extraction,
// validation and persistence. A Parsed document is a tagged variant keyed by
// Type with exactly one payload populated.
package document

import (
	"slices"
	"strings"
	"unicode"
)

// Type identifies the kind of document on the scanner glass.
type Type string

const (
	TypePassport      Type = "PASSPORT"
	TypeIDCard        Type = "ID_CARD"
	TypeDriverLicense Type = "DRIVER_LICENSE"
	TypeAlienCard     Type = "ALIEN_CARD"
	TypeUnknown       Type = "UNKNOWN"
)

// CardTypes lists the OCR-read card variants in probe order.
var CardTypes = []Type{TypeIDCard, TypeDriverLicense, TypeAlienCard}

func (t Type) String() string {
	return string(t)
}

// IsCard reports whether t is read through the OCR path.
func (t Type) IsCard() bool {
	switch t {
	case TypeIDCard, TypeDriverLicense, TypeAlienCard:
		return true
	}
	return false
}

// Known reports whether t names a concrete document type.
func (t Type) Known() bool {
	return t == TypePassport || t.IsCard()
}

// Device type codes reported by the scanner driver.
const (
	CodeUnknown       = 0
	CodeIDCard        = 1
	CodeDriverLicense = 2
	CodePassport      = 3
	CodeAlienCard     = 4
)

var codeTypes = map[int]Type{
	CodeIDCard:        TypeIDCard,
	CodeDriverLicense: TypeDriverLicense,
	CodePassport:      TypePassport,
	CodeAlienCard:     TypeAlienCard,
}

// TypeFromCode maps a driver type code to a Type.
func TypeFromCode(code int) Type {
	if t, ok := codeTypes[code]; ok {
		return t
	}
	return TypeUnknown
}

// TypeFromDevice resolves the driver's (code, name) pair. The code wins; the
// name is consulted when the code is unmapped and matches on whole words, so
// "INVALID" never reads as an ID card.
func TypeFromDevice(code int, name string) Type {
	if t := TypeFromCode(code); t != TypeUnknown {
		return t
	}
	words := strings.FieldsFunc(strings.ToUpper(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	has := func(want ...string) bool {
		return slices.ContainsFunc(words, func(w string) bool { return slices.Contains(want, w) })
	}
	switch {
	case len(words) == 0:
		return TypeUnknown
	case has("PASSPORT"):
		return TypePassport
	case has("DRIVER", "DRIVERS", "LICENSE", "LICENCE"):
		return TypeDriverLicense
	case has("ALIEN", "FOREIGN", "FOREIGNER") || phrase(words, "RESIDENT", "CARD"):
		return TypeAlienCard
	case has("ID", "IDCARD", "IDENTITY") || phrase(words, "RESIDENT", "REGISTRATION"):
		return TypeIDCard
	}
	return TypeUnknown
}

// phrase reports whether a and b appear as adjacent words.
func phrase(words []string, a, b string) bool {
	for i := 0; i+1 < len(words); i++ {
		if words[i] == a && words[i+1] == b {
			return true
		}
	}
	return false
}

// Fields is the raw key/value output of an OCR getter.
type Fields map[string]string

// Field keys emitted by the OCR getters.
const (
	FieldName               = "name"
	FieldResidentNumber     = "resident_number"
	FieldLicenseNumber      = "license_number"
	FieldRegistrationNumber = "registration_number"
	FieldAddress            = "address"
	FieldIssueDate          = "issue_date"
	FieldExpiryDate         = "expiry_date"
	FieldValidPeriod        = "valid_period"
	FieldIssuer             = "issuer"
	FieldNationality        = "nationality"
	FieldVisaType           = "visa_type"
	FieldLicenseType        = "license_type"
	FieldSerialNumber       = "serial_number"
)

// Get returns the trimmed value for key.
func (f Fields) Get(key string) string {
	return strings.TrimSpace(f[key])
}

// Passport is the MRZ-derived passport payload. Dates are YYYYMMDD.
type Passport struct {
	Surname        string `json:"surname"`
	GivenNames     string `json:"given_names"`
	DocumentNumber string `json:"document_number"`
	Nationality    string `json:"nationality"`
	BirthDate      string `json:"birth_date"`
	Sex            string `json:"sex"`
	ExpiryDate     string `json:"expiry_date"`
	IssuingCountry string `json:"issuing_country"`
	PersonalNumber string `json:"personal_number,omitempty"`
	ChecksValid    bool   `json:"checks_valid"`
}

// IDCard is the national resident registration card payload.
type IDCard struct {
	Name           string `json:"name"`
	ResidentNumber string `json:"resident_number"`
	Address        string `json:"address,omitempty"`
	IssueDate      string `json:"issue_date,omitempty"`
	Issuer         string `json:"issuer,omitempty"`
}

// DriverLicense is the driver license payload. ValidPeriod may be a range.
type DriverLicense struct {
	Name           string `json:"name"`
	LicenseNumber  string `json:"license_number"`
	ResidentNumber string `json:"resident_number,omitempty"`
	LicenseType    string `json:"license_type,omitempty"`
	Address        string `json:"address,omitempty"`
	IssueDate      string `json:"issue_date,omitempty"`
	ValidPeriod    string `json:"valid_period,omitempty"`
	SerialNumber   string `json:"serial_number,omitempty"`
}

// AlienCard is the foreign resident card payload.
type AlienCard struct {
	Name               string `json:"name"`
	RegistrationNumber string `json:"registration_number"`
	Nationality        string `json:"nationality,omitempty"`
	VisaType           string `json:"visa_type,omitempty"`
	Address            string `json:"address,omitempty"`
	IssueDate          string `json:"issue_date,omitempty"`
	ExpiryDate         string `json:"expiry_date,omitempty"`
}

// Parsed is the structured result of a scan.
type Parsed struct {
	Type          Type           `json:"document_type"`
	Passport      *Passport      `json:"passport,omitempty"`
	IDCard        *IDCard        `json:"id_card,omitempty"`
	DriverLicense *DriverLicense `json:"driver_license,omitempty"`
	AlienCard     *AlienCard     `json:"alien_card,omitempty"`
}
