package mrz

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ICAO 9303 specimen. specimenLine2 carries a composite digit of 0 where the
// computed value is 4; validLine2 is the same zone with the correct digit.
const (
	specimenLine1 = "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<"
	specimenLine2 = "L898902C<3UTO6908061F9406236ZE184226B<<<<<10"
	validLine2    = "L898902C<3UTO6908061F9406236ZE184226B<<<<<14"
)

func TestChecksum(t *testing.T) {
	t.Run("document number with its check digit", func(t *testing.T) {
		assert.Equal(t, 6, Checksum("L898902C3"))
	})

	t.Run("specimen fields", func(t *testing.T) {
		assert.Equal(t, 3, Checksum("L898902C<"))
		assert.Equal(t, 1, Checksum("690806"))
		assert.Equal(t, 6, Checksum("940623"))
		assert.Equal(t, 1, Checksum("ZE184226B<<<<<"))
	})

	t.Run("fillers weigh zero", func(t *testing.T) {
		assert.Equal(t, 0, Checksum("<<<<<<"))
	})
}

func TestNormalize(t *testing.T) {
	t.Run("two lines are kept", func(t *testing.T) {
		rec, err := Normalize(specimenLine1 + "\r\n" + specimenLine2 + "\n")
		require.NoError(t, err)
		assert.Equal(t, specimenLine1, rec.Line1)
		assert.Equal(t, specimenLine2, rec.Line2)
	})

	t.Run("short lines are padded and long lines truncated", func(t *testing.T) {
		rec, err := Normalize("P<UTOERIKSSON<<ANNA\n" + specimenLine2 + "XYZ")
		require.NoError(t, err)
		assert.Len(t, rec.Line1, LineLength)
		assert.True(t, strings.HasPrefix(rec.Line1, "P<UTOERIKSSON<<ANNA<<<"))
		assert.Equal(t, specimenLine2, rec.Line2)
	})

	t.Run("whitespace becomes filler and foreign characters drop", func(t *testing.T) {
		rec, err := Normalize("p<uto eriksson<<anna*maria\x00\n" + specimenLine2)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(rec.Line1, "P<UTO<ERIKSSON<<ANNAMARIA"))
	})

	t.Run("single run of 88 characters splits at 44", func(t *testing.T) {
		rec, err := Normalize(specimenLine1 + specimenLine2)
		require.NoError(t, err)
		assert.Equal(t, specimenLine1, rec.Line1)
		assert.Equal(t, specimenLine2, rec.Line2)
	})

	t.Run("damaged capture splits on the document number signature", func(t *testing.T) {
		damaged := "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<" + specimenLine2
		rec, err := Normalize(damaged)
		require.NoError(t, err)
		assert.Equal(t, specimenLine2, rec.Line2)
		assert.True(t, strings.HasPrefix(rec.Line1, "P<UTOERIKSSON<<ANNA<MARIA"))
		assert.Len(t, rec.Line1, LineLength)
	})

	t.Run("damaged capture without signature falls back to a naive split", func(t *testing.T) {
		damaged := strings.Repeat("A", 50)
		rec, err := Normalize(damaged)
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("A", 44), rec.Line1)
		assert.Equal(t, "AAAAAA"+strings.Repeat("<", 38), rec.Line2)
	})

	t.Run("fewer than 44 characters fails", func(t *testing.T) {
		_, err := Normalize("P<UTOERIKSSON")
		assert.ErrorIs(t, err, ErrTooShort)
	})
}

func TestExtractPassportNumber(t *testing.T) {
	t.Run("valid check digit", func(t *testing.T) {
		pn, err := ExtractPassportNumber(specimenLine1 + "\n" + specimenLine2)
		require.NoError(t, err)
		assert.Equal(t, "L898902C", pn.Number)
		assert.True(t, pn.CheckValid)
	})

	t.Run("check digit mismatch does not reject", func(t *testing.T) {
		tampered := "L898902C<9" + specimenLine2[10:]
		pn, err := ExtractPassportNumber(specimenLine1 + "\n" + tampered)
		require.NoError(t, err)
		assert.Equal(t, "L898902C", pn.Number)
		assert.False(t, pn.CheckValid)
	})

	t.Run("empty document number is malformed", func(t *testing.T) {
		_, err := ExtractPassportNumber(specimenLine1 + "\n" + strings.Repeat("<", 44))
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

func TestParseFull(t *testing.T) {
	t.Run("specimen", func(t *testing.T) {
		p, ok := ParseFull(specimenLine1 + "\n" + specimenLine2)
		require.True(t, ok)

		assert.Equal(t, "P", p.DocumentType)
		assert.Equal(t, "UTO", p.IssuingCountry)
		assert.Equal(t, "ERIKSSON", p.Surname)
		assert.Equal(t, "ANNA MARIA", p.GivenNames)
		assert.Equal(t, "L898902C", p.DocumentNumber)
		assert.Equal(t, "UTO", p.Nationality)
		assert.Equal(t, time.Date(1969, 8, 6, 0, 0, 0, 0, time.UTC), p.BirthDate)
		assert.Equal(t, SexFemale, p.Sex)
		assert.Equal(t, time.Date(1994, 6, 23, 0, 0, 0, 0, time.UTC), p.ExpiryDate)
		assert.Equal(t, "ZE184226B", p.PersonalNumber)

		assert.True(t, p.Checks.DocumentNumber)
		assert.True(t, p.Checks.BirthDate)
		assert.True(t, p.Checks.ExpiryDate)
		assert.True(t, p.Checks.PersonalNumber)
		assert.False(t, p.Checks.Composite, "composite mismatch is reported, not rejected")
	})

	t.Run("all check digits valid", func(t *testing.T) {
		p, ok := ParseFull(specimenLine1 + "\n" + validLine2)
		require.True(t, ok)
		assert.True(t, p.Checks.Valid())
	})

	t.Run("impossible birth date is a structural failure", func(t *testing.T) {
		broken := specimenLine2[:13] + "691306" + specimenLine2[19:]
		_, ok := ParseFull(specimenLine1 + "\n" + broken)
		assert.False(t, ok)
	})

	t.Run("non digit expiry is a structural failure", func(t *testing.T) {
		broken := specimenLine2[:21] + "94O623" + specimenLine2[27:]
		_, ok := ParseFull(specimenLine1 + "\n" + broken)
		assert.False(t, ok)
	})

	t.Run("unknown sex marker", func(t *testing.T) {
		line2 := specimenLine2[:20] + "<" + specimenLine2[21:]
		p, ok := ParseFull(specimenLine1 + "\n" + line2)
		require.True(t, ok)
		assert.Equal(t, SexUnknown, p.Sex)
	})

	t.Run("too short input", func(t *testing.T) {
		_, ok := ParseFull("P<UTO")
		assert.False(t, ok)
	})
}

func TestExpandYear(t *testing.T) {
	assert.Equal(t, 1951, ExpandYear(51))
	assert.Equal(t, 2050, ExpandYear(50))
	assert.Equal(t, 2005, ExpandYear(5))
	assert.Equal(t, 1999, ExpandYear(99))
}
