package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/classroom-kit/student-records/internal/domain"
	"github.com/classroom-kit/student-records/internal/repository"
)

// StudentRepository is an in-memory repository.StudentRepository.
type StudentRepository struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]domain.Student
}

// NewStudentRepository returns an empty store.
func NewStudentRepository() *StudentRepository {
	return &StudentRepository{byID: make(map[int64]domain.Student)}
}

var _ repository.StudentRepository = (*StudentRepository)(nil)

func (r *StudentRepository) Create(_ context.Context, student *domain.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	student.ID = r.nextID
	r.byID[student.ID] = cloneStudent(student)
	return nil
}

func (r *StudentRepository) Update(_ context.Context, student *domain.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[student.ID]; !ok {
		return repository.ErrNotFound
	}
	r.byID[student.ID] = cloneStudent(student)
	return nil
}

func (r *StudentRepository) GetByID(_ context.Context, id int64) (*domain.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	student, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := cloneStudent(&student)
	return &clone, nil
}

func (r *StudentRepository) List(_ context.Context) ([]domain.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]domain.Student, 0, len(r.byID))
	for _, student := range r.byID {
		result = append(result, cloneStudent(&student))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *StudentRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.byID, id)
	return nil
}

// cloneStudent copies s including the values behind its pointer fields, so
// neither the caller nor the store can mutate the other's record.
func cloneStudent(s *domain.Student) domain.Student {
	c := *s
	c.Course = clonePtr(s.Course)
	c.Email = clonePtr(s.Email)
	c.BirthDate = clonePtr(s.BirthDate)
	c.EnrollmentDate = clonePtr(s.EnrollmentDate)
	c.Gender = clonePtr(s.Gender)
	c.Address = clonePtr(s.Address)
	c.StreetNumber = clonePtr(s.StreetNumber)
	c.PostalCode = clonePtr(s.PostalCode)
	c.MotherName = clonePtr(s.MotherName)
	c.FatherName = clonePtr(s.FatherName)
	c.IncidentDate = clonePtr(s.IncidentDate)
	c.IncidentDescription = clonePtr(s.IncidentDescription)
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
