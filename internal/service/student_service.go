package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/classroom-kit/student-records/internal/domain"
	"github.com/classroom-kit/student-records/internal/export"
	"github.com/classroom-kit/student-records/internal/repository"
	"github.com/classroom-kit/student-records/internal/storage"
	apperrors "github.com/classroom-kit/student-records/pkg/util/errorutil"
)

// ErrArchiveDisabled is returned by ArchiveExport when no object storage is
// configured.
var ErrArchiveDisabled = errors.New("export archive storage not configured")

const csvContentType = "text/csv; charset=utf-8"

// StudentService validates and stores student records.
type StudentService struct {
	students repository.StudentRepository
	archive  storage.ObjectStorage
	logger   *zap.Logger
	now      func() time.Time
}

// StudentDependencies bundles collaborators for the student service.
// Archive may be nil.
type StudentDependencies struct {
	StudentRepo repository.StudentRepository
	Archive     storage.ObjectStorage
	Logger      *zap.Logger
}

// NewStudentService constructs the service.
func NewStudentService(deps StudentDependencies) *StudentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		students: deps.StudentRepo,
		archive:  deps.Archive,
		logger:   logger,
		now:      time.Now,
	}
}

// Create validates and inserts a new record, assigning its id.
func (s *StudentService) Create(ctx context.Context, student *domain.Student) error {
	normalizeStudent(student)
	if err := validateStruct(student); err != nil {
		return err
	}
	student.ID = 0
	if err := s.students.Create(ctx, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	s.logger.Info("student created", zap.Int64("student_id", student.ID))
	return nil
}

// Get returns a record by id.
func (s *StudentService) Get(ctx context.Context, id int64) (*domain.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("student", map[string]any{"id": id})
		}
		return nil, fmt.Errorf("get student: %w", err)
	}
	return student, nil
}

// List returns every record ordered by id.
func (s *StudentService) List(ctx context.Context) ([]domain.Student, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// Update replaces every field of an existing record.
func (s *StudentService) Update(ctx context.Context, student *domain.Student) error {
	normalizeStudent(student)
	if err := validateStruct(student); err != nil {
		return err
	}
	if err := s.students.Update(ctx, student); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("student", map[string]any{"id": student.ID})
		}
		return fmt.Errorf("update student: %w", err)
	}
	s.logger.Info("student updated", zap.Int64("student_id", student.ID))
	return nil
}

// Delete removes a record permanently. Missing ids are ignored.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	if err := s.students.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	s.logger.Info("student deleted", zap.Int64("student_id", id))
	return nil
}

// ExportCSV renders every record as CSV.
func (s *StudentService) ExportCSV(ctx context.Context) ([]byte, error) {
	students, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := export.Encode(&buf, students); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ArchiveExport uploads the current CSV export to object storage and
// returns its key.
func (s *StudentService) ArchiveExport(ctx context.Context) (string, error) {
	if s.archive == nil {
		return "", ErrArchiveDisabled
	}
	data, err := s.ExportCSV(ctx)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("exports/students-%s.csv", s.now().UTC().Format("20060102T150405Z"))
	if err := s.archive.Put(ctx, key, bytes.NewReader(data), int64(len(data)), csvContentType); err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}
	s.logger.Info("export archived",
		zap.String("bucket", s.archive.Bucket()),
		zap.String("key", key),
		zap.Int("bytes", len(data)))
	return key, nil
}

// ImportCSV creates one new record per CSV row. Every row is validated
// before anything is written; ids in the file are ignored. It returns the
// number of records created.
func (s *StudentService) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	rows, err := export.Decode(r)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid csv", map[string]any{"file": err.Error()})
	}

	for i := range rows {
		normalizeStudent(&rows[i])
		if err := validateStruct(&rows[i]); err != nil {
			details := map[string]any{"row": i + 1}
			var domainErr *apperrors.DomainError
			if errors.As(err, &domainErr) {
				for k, v := range domainErr.Details {
					details[k] = v
				}
			}
			return 0, apperrors.NewValidationError(fmt.Sprintf("row %d: invalid input", i+1), details)
		}
	}

	created := 0
	for i := range rows {
		rows[i].ID = 0
		if err := s.students.Create(ctx, &rows[i]); err != nil {
			return created, fmt.Errorf("import row %d: %w", i+1, err)
		}
		created++
	}
	s.logger.Info("students imported", zap.Int("count", created))
	return created, nil
}

// normalizeStudent trims text, stores line breaks as LF and turns blank
// optional fields into nulls.
func normalizeStudent(st *domain.Student) {
	st.Name = strings.TrimSpace(export.NormalizeNewlines(st.Name))
	for _, field := range []**string{
		&st.Course, &st.Email, &st.Address, &st.StreetNumber, &st.PostalCode,
		&st.MotherName, &st.FatherName, &st.IncidentDescription,
	} {
		if *field == nil {
			continue
		}
		if v := strings.TrimSpace(export.NormalizeNewlines(**field)); v != "" {
			*field = &v
		} else {
			*field = nil
		}
	}
	if st.Gender != nil && strings.TrimSpace(string(*st.Gender)) == "" {
		st.Gender = nil
	}
}
