package domain

import "time"

// Gender values accepted for a student record.
type Gender string

const (
	GenderMale   Gender = "Masculino"
	GenderFemale Gender = "Feminino"
	GenderOther  Gender = "Outro"
)

// Genders lists the accepted gender values in display order.
var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

// Student is a single stored student row. Only Name and Age are required;
// every other field is nullable.
type Student struct {
	ID                  int64
	Name                string `validate:"required"`
	Age                 int    `validate:"gt=0,lte=2147483647"`
	Course              *string
	Email               *string `validate:"omitempty,email"`
	BirthDate           *time.Time
	EnrollmentDate      *time.Time
	Gender              *Gender `validate:"omitempty,oneof=Masculino Feminino Outro"`
	Address             *string
	StreetNumber        *string
	PostalCode          *string
	MotherName          *string
	FatherName          *string
	IncidentDate        *time.Time
	IncidentDescription *string
}
