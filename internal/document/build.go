package document

import (
	"idscan/internal/document/dates"
	"idscan/internal/document/mrz"
)

const mrzDateLayout = "20060102"

// builders holds one entry per card variant.
var builders = map[Type]func(Fields) Parsed{
	TypeIDCard: func(f Fields) Parsed {
		return Parsed{Type: TypeIDCard, IDCard: &IDCard{
			Name:           f.Get(FieldName),
			ResidentNumber: f.Get(FieldResidentNumber),
			Address:        f.Get(FieldAddress),
			IssueDate:      dates.Normalize(f.Get(FieldIssueDate)),
			Issuer:         f.Get(FieldIssuer),
		}}
	},
	TypeDriverLicense: func(f Fields) Parsed {
		return Parsed{Type: TypeDriverLicense, DriverLicense: &DriverLicense{
			Name:           f.Get(FieldName),
			LicenseNumber:  f.Get(FieldLicenseNumber),
			ResidentNumber: f.Get(FieldResidentNumber),
			LicenseType:    f.Get(FieldLicenseType),
			Address:        f.Get(FieldAddress),
			IssueDate:      dates.Normalize(f.Get(FieldIssueDate)),
			ValidPeriod:    dates.Normalize(f.Get(FieldValidPeriod)),
			SerialNumber:   f.Get(FieldSerialNumber),
		}}
	},
	TypeAlienCard: func(f Fields) Parsed {
		return Parsed{Type: TypeAlienCard, AlienCard: &AlienCard{
			Name:               f.Get(FieldName),
			RegistrationNumber: f.Get(FieldRegistrationNumber),
			Nationality:        f.Get(FieldNationality),
			VisaType:           f.Get(FieldVisaType),
			Address:            f.Get(FieldAddress),
			IssueDate:          dates.Normalize(f.Get(FieldIssueDate)),
			ExpiryDate:         dates.Normalize(f.Get(FieldExpiryDate)),
		}}
	},
}

// FromFields builds the card variant for t with dates normalized. It returns
// false for passports and unknown types.
func FromFields(t Type, f Fields) (Parsed, bool) {
	build, ok := builders[t]
	if !ok {
		return Parsed{}, false
	}
	return build(f), true
}

// FromPassport converts a decoded MRZ into the passport variant.
func FromPassport(p mrz.Passport) Parsed {
	return Parsed{Type: TypePassport, Passport: &Passport{
		Surname:        p.Surname,
		GivenNames:     p.GivenNames,
		DocumentNumber: p.DocumentNumber,
		Nationality:    p.Nationality,
		BirthDate:      p.BirthDate.Format(mrzDateLayout),
		Sex:            string(p.Sex),
		ExpiryDate:     p.ExpiryDate.Format(mrzDateLayout),
		IssuingCountry: p.IssuingCountry,
		PersonalNumber: p.PersonalNumber,
		ChecksValid:    p.Checks.Valid(),
	}}
}
