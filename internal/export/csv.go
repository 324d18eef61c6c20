// Package export converts student records to and from the CSV layout used
// for downloads and bulk import.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/classroom-kit/student-records/internal/domain"
)

// DateLayout is the on-disk date format.
const DateLayout = "2006-01-02"

// Columns is the CSV header, in the same order as the alunos table.
var Columns = []string{
	"id", "nome", "idade", "curso", "email", "data_nascimento", "data_matricula",
	"genero", "endereco", "numero", "cep", "nome_mae", "nome_pai",
	"data_ocorrencia", "descricao_ocorrencia",
}

// ErrMissingColumn is returned by Decode when a required header is absent.
var ErrMissingColumn = errors.New("missing required column")

// RowError locates a malformed record in the input.
type RowError struct {
	Line   int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d, column %s: %v", e.Line, e.Column, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Encode writes a header and one row per student. Nil fields become empty.
func Encode(w io.Writer, students []domain.Student) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for i := range students {
		if err := cw.Write(encodeRow(&students[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func encodeRow(s *domain.Student) []string {
	gender := ""
	if s.Gender != nil {
		gender = string(*s.Gender)
	}
	return []string{
		strconv.FormatInt(s.ID, 10),
		NormalizeNewlines(s.Name),
		strconv.Itoa(s.Age),
		str(s.Course),
		str(s.Email),
		date(s.BirthDate),
		date(s.EnrollmentDate),
		gender,
		str(s.Address),
		str(s.StreetNumber),
		str(s.PostalCode),
		str(s.MotherName),
		str(s.FatherName),
		date(s.IncidentDate),
		str(s.IncidentDescription),
	}
}

func str(v *string) string {
	if v == nil {
		return ""
	}
	return NormalizeNewlines(*v)
}

// NormalizeNewlines rewrites CRLF line breaks as LF. encoding/csv drops the
// CR of a CRLF inside quoted fields when reading, so only LF survives an
// export and re-import.
func NormalizeNewlines(v string) string {
	return strings.ReplaceAll(v, "\r\n", "\n")
}

func date(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format(DateLayout)
}

// Decode reads rows written by Encode. Columns are matched by header name,
// unknown columns are ignored and only nome and idade are required. The id
// column is read but callers creating new records should discard it.
func Decode(r io.Reader) ([]domain.Student, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, required := range []string{"nome", "idade"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	var students []domain.Student
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		line, _ := cr.FieldPos(0)

		s, err := decodeRow(record, index, line)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, nil
}

func decodeRow(record []string, index map[string]int, line int) (domain.Student, error) {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}
	optional := func(name string) *string {
		if v := field(name); v != "" {
			return &v
		}
		return nil
	}

	var (
		s   domain.Student
		err error
	)
	if v := field("id"); v != "" {
		if s.ID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return s, &RowError{Line: line, Column: "id", Err: err}
		}
	}
	s.Name = field("nome")
	if v := strings.TrimSpace(field("idade")); v != "" {
		if s.Age, err = strconv.Atoi(v); err != nil {
			return s, &RowError{Line: line, Column: "idade", Err: err}
		}
	}
	s.Course = optional("curso")
	s.Email = optional("email")
	s.Address = optional("endereco")
	s.StreetNumber = optional("numero")
	s.PostalCode = optional("cep")
	s.MotherName = optional("nome_mae")
	s.FatherName = optional("nome_pai")
	s.IncidentDescription = optional("descricao_ocorrencia")
	if v := field("genero"); v != "" {
		g := domain.Gender(v)
		s.Gender = &g
	}

	for column, dst := range map[string]**time.Time{
		"data_nascimento": &s.BirthDate,
		"data_matricula":  &s.EnrollmentDate,
		"data_ocorrencia": &s.IncidentDate,
	} {
		v := field(column)
		if v == "" {
			continue
		}
		t, err := time.Parse(DateLayout, v)
		if err != nil {
			return s, &RowError{Line: line, Column: column, Err: err}
		}
		*dst = &t
	}
	return s, nil
}
