package mrz

import (
	"strconv"
	"strings"
	"time"
)

// Sex as encoded in line 2 position 20.
type Sex string

const (
	SexMale    Sex = "Male"
	SexFemale  Sex = "Female"
	SexUnknown Sex = "Unknown"
)

// Checks records the outcome of every TD3 check digit.
type Checks struct {
	DocumentNumber bool
	BirthDate      bool
	ExpiryDate     bool
	PersonalNumber bool
	Composite      bool
}

// Valid reports whether every check digit matched.
func (c Checks) Valid() bool {
	return c.DocumentNumber && c.BirthDate && c.ExpiryDate && c.PersonalNumber && c.Composite
}

// Passport is a decoded TD3 zone.
type Passport struct {
	DocumentType   string
	IssuingCountry string
	Surname        string
	GivenNames     string
	DocumentNumber string
	Nationality    string
	BirthDate      time.Time
	Sex            Sex
	ExpiryDate     time.Time
	PersonalNumber string
	Checks         Checks
}

// ParseFull decodes raw MRZ text at fixed TD3 offsets. It returns false on any
// structural failure; check digit mismatches are reported in Checks only.
func ParseFull(raw string) (p Passport, ok bool) {
	defer func() {
		if recover() != nil {
			p, ok = Passport{}, false
		}
	}()

	rec, err := Normalize(raw)
	if err != nil {
		return Passport{}, false
	}
	l1, l2 := rec.Line1, rec.Line2

	birth, ok := parseYYMMDD(l2[13:19])
	if !ok {
		return Passport{}, false
	}
	expiry, ok := parseYYMMDD(l2[21:27])
	if !ok {
		return Passport{}, false
	}

	surname, given := splitName(l1[5:LineLength])

	p = Passport{
		DocumentType:   unfill(l1[0:2]),
		IssuingCountry: unfill(l1[2:5]),
		Surname:        surname,
		GivenNames:     given,
		DocumentNumber: unfill(l2[0:9]),
		Nationality:    unfill(l2[10:13]),
		BirthDate:      birth,
		Sex:            parseSex(l2[20]),
		ExpiryDate:     expiry,
		PersonalNumber: unfill(l2[28:42]),
		Checks: Checks{
			DocumentNumber: checkDigitMatches(l2[0:9], l2[9]),
			BirthDate:      checkDigitMatches(l2[13:19], l2[19]),
			ExpiryDate:     checkDigitMatches(l2[21:27], l2[27]),
			PersonalNumber: checkDigitMatches(l2[28:42], l2[42]),
			Composite:      checkDigitMatches(l2[0:10]+l2[13:20]+l2[21:43], l2[43]),
		},
	}
	return p, true
}

// splitName splits the name field on the first double filler.
func splitName(field string) (surname, given string) {
	primary, secondary, _ := strings.Cut(field, "<<")
	return unfill(primary), unfill(secondary)
}

func unfill(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, string(Filler), " "))
}

func parseSex(c byte) Sex {
	switch c {
	case 'M':
		return SexMale
	case 'F':
		return SexFemale
	default:
		return SexUnknown
	}
}

// parseYYMMDD decodes a six digit date. Years above 50 are 19xx, the rest 20xx.
func parseYYMMDD(s string) (time.Time, bool) {
	if len(s) != 6 {
		return time.Time{}, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return time.Time{}, false
	}
	yy, mm, dd := n/10000, n/100%100, n%100
	year := ExpandYear(yy)
	t := time.Date(year, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(mm) || t.Day() != dd {
		return time.Time{}, false
	}
	return t, true
}

// ExpandYear maps a two digit year onto 1951..2050.
func ExpandYear(yy int) int {
	if yy > 50 {
		return 1900 + yy
	}
	return 2000 + yy
}
