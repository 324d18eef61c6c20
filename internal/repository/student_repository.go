package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/classroom-kit/student-records/internal/domain"
)

// StudentRepository manages student record persistence.
type StudentRepository interface {
	Create(ctx context.Context, student *domain.Student) error
	Update(ctx context.Context, student *domain.Student) error
	GetByID(ctx context.Context, id int64) (*domain.Student, error)
	List(ctx context.Context) ([]domain.Student, error)
	Delete(ctx context.Context, id int64) error
}

const studentColumns = `id, nome, COALESCE(idade, 0), curso, email, data_nascimento, data_matricula,
        genero, endereco, numero, cep, nome_mae, nome_pai, data_ocorrencia, descricao_ocorrencia`

type studentRepository struct {
	db DBTX
}

// NewStudentRepository builds the repository.
func NewStudentRepository(db DBTX) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, s *domain.Student) error {
	const query = `
        INSERT INTO alunos (
            nome, idade, curso, email, data_nascimento, data_matricula,
            genero, endereco, numero, cep, nome_mae, nome_pai,
            data_ocorrencia, descricao_ocorrencia
        )
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        RETURNING id`

	if err := r.db.QueryRow(ctx, query,
		s.Name,
		s.Age,
		s.Course,
		s.Email,
		s.BirthDate,
		s.EnrollmentDate,
		genderText(s.Gender),
		s.Address,
		s.StreetNumber,
		s.PostalCode,
		s.MotherName,
		s.FatherName,
		s.IncidentDate,
		s.IncidentDescription,
	).Scan(&s.ID); err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

// Update overwrites every mutable column with the supplied values.
func (r *studentRepository) Update(ctx context.Context, s *domain.Student) error {
	const query = `
        UPDATE alunos SET
            nome=$1, idade=$2, curso=$3, email=$4, data_nascimento=$5, data_matricula=$6,
            genero=$7, endereco=$8, numero=$9, cep=$10, nome_mae=$11, nome_pai=$12,
            data_ocorrencia=$13, descricao_ocorrencia=$14
        WHERE id=$15`

	cmd, err := r.db.Exec(ctx, query,
		s.Name,
		s.Age,
		s.Course,
		s.Email,
		s.BirthDate,
		s.EnrollmentDate,
		genderText(s.Gender),
		s.Address,
		s.StreetNumber,
		s.PostalCode,
		s.MotherName,
		s.FatherName,
		s.IncidentDate,
		s.IncidentDescription,
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *studentRepository) GetByID(ctx context.Context, id int64) (*domain.Student, error) {
	const query = `
        SELECT ` + studentColumns + `
        FROM alunos WHERE id=$1`

	student, err := scanStudent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select student: %w", err)
	}
	return student, nil
}

func (r *studentRepository) List(ctx context.Context) ([]domain.Student, error) {
	const query = `
        SELECT ` + studentColumns + `
        FROM alunos ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	result := []domain.Student{}
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		result = append(result, *student)
	}
	return result, rows.Err()
}

// Delete is idempotent; removing a missing id is not an error.
func (r *studentRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM alunos WHERE id=$1`
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

func scanStudent(row pgx.Row) (*domain.Student, error) {
	var (
		s      domain.Student
		gender *string
	)
	if err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Age,
		&s.Course,
		&s.Email,
		&s.BirthDate,
		&s.EnrollmentDate,
		&gender,
		&s.Address,
		&s.StreetNumber,
		&s.PostalCode,
		&s.MotherName,
		&s.FatherName,
		&s.IncidentDate,
		&s.IncidentDescription,
	); err != nil {
		return nil, err
	}
	if gender != nil {
		g := domain.Gender(*gender)
		s.Gender = &g
	}
	return &s, nil
}

func genderText(g *domain.Gender) *string {
	if g == nil {
		return nil
	}
	v := string(*g)
	return &v
}
