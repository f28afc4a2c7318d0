package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idscan/internal/document/mrz"
)

func TestTypeFromDevice(t *testing.T) {
	assert.Equal(t, TypeIDCard, TypeFromDevice(CodeIDCard, ""))
	assert.Equal(t, TypePassport, TypeFromDevice(CodePassport, "whatever"))
	assert.Equal(t, TypeDriverLicense, TypeFromDevice(99, "Driver License"))
	assert.Equal(t, TypeAlienCard, TypeFromDevice(99, "alien registration card"))
	assert.Equal(t, TypeIDCard, TypeFromDevice(99, "ID CARD"))
	assert.Equal(t, TypeUnknown, TypeFromDevice(CodeUnknown, ""))
	assert.Equal(t, TypeUnknown, TypeFromDevice(CodeUnknown, "UNKNOWN"))
}

func TestTypeFromDeviceMatchesWholeWords(t *testing.T) {
	tests := []struct {
		name string
		want Type
	}{
		{"INVALID", TypeUnknown},
		{"UNIDENTIFIED", TypeUnknown},
		{"VALID DOCUMENT", TypeUnknown},
		{"id-card", TypeIDCard},
		{"National Identity Card", TypeIDCard},
		{"RESIDENT REGISTRATION CARD", TypeIDCard},
		{"Foreign Resident Card", TypeAlienCard},
		{"RESIDENT CARD", TypeAlienCard},
		{"driver's licence", TypeDriverLicense},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeFromDevice(99, tt.name))
		})
	}
}

func TestFromFields(t *testing.T) {
	t.Run("driver license normalizes dates", func(t *testing.T) {
		p, ok := FromFields(TypeDriverLicense, Fields{
			FieldName:          " HONG GILDONG ",
			FieldLicenseNumber: "11-17-003817-30",
			FieldIssueDate:     "2017.12.08.",
			FieldValidPeriod:   "~ 2027.12.08",
		})
		require.True(t, ok)
		require.NotNil(t, p.DriverLicense)
		assert.Equal(t, TypeDriverLicense, p.Type)
		assert.Equal(t, "HONG GILDONG", p.DriverLicense.Name)
		assert.Equal(t, "20171208", p.DriverLicense.IssueDate)
		assert.Equal(t, "~20271208", p.DriverLicense.ValidPeriod)
		assert.Nil(t, p.IDCard)
	})

	t.Run("undated field stays empty", func(t *testing.T) {
		p, ok := FromFields(TypeIDCard, Fields{FieldName: "KIM", FieldIssueDate: "n/a"})
		require.True(t, ok)
		assert.Empty(t, p.IDCard.IssueDate)
	})

	t.Run("passport and unknown have no card builder", func(t *testing.T) {
		_, ok := FromFields(TypePassport, Fields{})
		assert.False(t, ok)
		_, ok = FromFields(TypeUnknown, Fields{})
		assert.False(t, ok)
	})
}

func TestFromPassport(t *testing.T) {
	p := FromPassport(mrz.Passport{
		Surname:        "ERIKSSON",
		DocumentNumber: "L898902C",
		BirthDate:      time.Date(1969, 8, 6, 0, 0, 0, 0, time.UTC),
		ExpiryDate:     time.Date(1994, 6, 23, 0, 0, 0, 0, time.UTC),
		Sex:            mrz.SexFemale,
	})
	require.NotNil(t, p.Passport)
	assert.Equal(t, "19690806", p.Passport.BirthDate)
	assert.Equal(t, "19940623", p.Passport.ExpiryDate)
	assert.Equal(t, "Female", p.Passport.Sex)
}

func TestDocumentID(t *testing.T) {
	fallback := func() string { return "generated" }

	t.Run("passport number wins", func(t *testing.T) {
		p := &Parsed{Type: TypePassport, Passport: &Passport{DocumentNumber: "M1234567"}}
		assert.Equal(t, "X9", DocumentID("X9", p, TypePassport, fallback))
		assert.Equal(t, "M1234567", DocumentID("", p, TypePassport, fallback))
	})

	t.Run("resident number prefix", func(t *testing.T) {
		p, _ := FromFields(TypeIDCard, Fields{FieldResidentNumber: "900101-1234567"})
		assert.Equal(t, "900101", DocumentID("", &p, TypeIDCard, fallback))
	})

	t.Run("resident number on a license outranks license number", func(t *testing.T) {
		p, _ := FromFields(TypeDriverLicense, Fields{
			FieldResidentNumber: "9001011234567",
			FieldLicenseNumber:  "11-17-003817-30",
		})
		assert.Equal(t, "900101", DocumentID("", &p, TypeDriverLicense, fallback))
	})

	t.Run("license number", func(t *testing.T) {
		p, _ := FromFields(TypeDriverLicense, Fields{FieldLicenseNumber: "11-17-003817-30"})
		assert.Equal(t, "11-17-003817-30", DocumentID("", &p, TypeDriverLicense, fallback))
	})

	t.Run("alien registration prefix", func(t *testing.T) {
		p, _ := FromFields(TypeAlienCard, Fields{FieldRegistrationNumber: "850505-5123456"})
		assert.Equal(t, "850505", DocumentID("", &p, TypeAlienCard, fallback))
	})

	t.Run("type name then fallback", func(t *testing.T) {
		p, _ := FromFields(TypeIDCard, Fields{FieldName: "KIM"})
		assert.Equal(t, "ID_CARD", DocumentID("", &p, TypeIDCard, fallback))
		assert.Equal(t, "generated", DocumentID("", nil, TypeUnknown, fallback))
	})
}

func TestSanitizeKey(t *testing.T) {
	assert.Equal(t, "11-17-003817-30", SanitizeKey("11-17-003817-30"))
	assert.Equal(t, "a_b_c", SanitizeKey(" a/b\\c "))
	assert.Equal(t, "x", SanitizeKey("..x.."))
	assert.Equal(t, "document", SanitizeKey("홍길동"))
	assert.Len(t, SanitizeKey("abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyz"), 64)
}

func TestTranscript(t *testing.T) {
	t.Run("raw mrz", func(t *testing.T) {
		r := &Result{RawMRZ: "P<UTO", Fields: Fields{FieldName: "x"}}
		assert.Equal(t, "P<UTO", r.Transcript())
	})

	t.Run("field dump is sorted", func(t *testing.T) {
		r := &Result{Type: TypeIDCard, Fields: Fields{FieldName: "KIM", FieldAddress: "SEOUL"}}
		assert.Equal(t, "document_type: ID_CARD\naddress: SEOUL\nname: KIM\n", r.Transcript())
	})

	t.Run("placeholder", func(t *testing.T) {
		r := &Result{}
		assert.Equal(t, TranscriptPlaceholder, r.Transcript())
	})
}
