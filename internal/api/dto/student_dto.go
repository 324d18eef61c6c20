package dto

import (
	"time"

	"github.com/classroom-kit/student-records/internal/domain"
	apperrors "github.com/classroom-kit/student-records/pkg/util/errorutil"
)

const dateLayout = "2006-01-02"

// StudentRequest is the body for creating or replacing a student. Dates use
// YYYY-MM-DD; omitted optional fields are stored as null.
type StudentRequest struct {
	Name                string  `json:"name"`
	Age                 int     `json:"age"`
	Course              *string `json:"course"`
	Email               *string `json:"email"`
	BirthDate           *string `json:"birth_date"`
	EnrollmentDate      *string `json:"enrollment_date"`
	Gender              *string `json:"gender"`
	Address             *string `json:"address"`
	StreetNumber        *string `json:"street_number"`
	PostalCode          *string `json:"postal_code"`
	MotherName          *string `json:"mother_name"`
	FatherName          *string `json:"father_name"`
	IncidentDate        *string `json:"incident_date"`
	IncidentDescription *string `json:"incident_description"`
}

// StudentResponse is the JSON view of a student.
type StudentResponse struct {
	ID                  int64   `json:"id"`
	Name                string  `json:"name"`
	Age                 int     `json:"age"`
	Course              *string `json:"course"`
	Email               *string `json:"email"`
	BirthDate           *string `json:"birth_date"`
	EnrollmentDate      *string `json:"enrollment_date"`
	Gender              *string `json:"gender"`
	Address             *string `json:"address"`
	StreetNumber        *string `json:"street_number"`
	PostalCode          *string `json:"postal_code"`
	MotherName          *string `json:"mother_name"`
	FatherName          *string `json:"father_name"`
	IncidentDate        *string `json:"incident_date"`
	IncidentDescription *string `json:"incident_description"`
}

// ToDomain converts the request, rejecting malformed dates.
func (r StudentRequest) ToDomain(id int64) (*domain.Student, error) {
	s := &domain.Student{
		ID:                  id,
		Name:                r.Name,
		Age:                 r.Age,
		Course:              r.Course,
		Email:               r.Email,
		Address:             r.Address,
		StreetNumber:        r.StreetNumber,
		PostalCode:          r.PostalCode,
		MotherName:          r.MotherName,
		FatherName:          r.FatherName,
		IncidentDescription: r.IncidentDescription,
	}
	if r.Gender != nil {
		g := domain.Gender(*r.Gender)
		s.Gender = &g
	}

	details := map[string]any{}
	s.BirthDate = parseDate(r.BirthDate, "birth_date", details)
	s.EnrollmentDate = parseDate(r.EnrollmentDate, "enrollment_date", details)
	s.IncidentDate = parseDate(r.IncidentDate, "incident_date", details)
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid input", details)
	}
	return s, nil
}

func parseDate(v *string, field string, details map[string]any) *time.Time {
	if v == nil || *v == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, *v)
	if err != nil {
		details[field] = "must be a date in YYYY-MM-DD format"
		return nil
	}
	return &t
}

// NewStudentResponse maps a domain student.
func NewStudentResponse(s *domain.Student) StudentResponse {
	resp := StudentResponse{
		ID:                  s.ID,
		Name:                s.Name,
		Age:                 s.Age,
		Course:              s.Course,
		Email:               s.Email,
		BirthDate:           formatDate(s.BirthDate),
		EnrollmentDate:      formatDate(s.EnrollmentDate),
		Address:             s.Address,
		StreetNumber:        s.StreetNumber,
		PostalCode:          s.PostalCode,
		MotherName:          s.MotherName,
		FatherName:          s.FatherName,
		IncidentDate:        formatDate(s.IncidentDate),
		IncidentDescription: s.IncidentDescription,
	}
	if s.Gender != nil {
		g := string(*s.Gender)
		resp.Gender = &g
	}
	return resp
}

// NewStudentList maps a slice of domain students.
func NewStudentList(students []domain.Student) []StudentResponse {
	out := make([]StudentResponse, 0, len(students))
	for i := range students {
		out = append(out, NewStudentResponse(&students[i]))
	}
	return out
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(dateLayout)
	return &v
}
