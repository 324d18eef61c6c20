package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classroom-kit/student-records/internal/domain"
)

var studentRowColumns = []string{
	"id", "nome", "idade", "curso", "email", "data_nascimento", "data_matricula",
	"genero", "endereco", "numero", "cep", "nome_mae", "nome_pai", "data_ocorrencia", "descricao_ocorrencia",
}

func ptr[T any](v T) *T { return &v }

func newStudentRepoWithMock(t *testing.T) (StudentRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewStudentRepository(mock), mock
}

func TestStudentRepository_CreateMinimal(t *testing.T) {
	repo, mock := newStudentRepoWithMock(t)

	var (
		noText *string
		noDate *time.Time
	)
	mock.ExpectQuery(`INSERT INTO alunos`).
		WithArgs("Bob", 20, noText, noText, noDate, noDate, noText, noText, noText, noText, noText, noText, noDate, noText).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))

	student := &domain.Student{Name: "Bob", Age: 20}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.Equal(t, int64(1), student.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_GetByID(t *testing.T) {
	repo, mock := newStudentRepoWithMock(t)
	birth := time.Date(2005, 3, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM alunos WHERE id=\$1`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(studentRowColumns).AddRow(
			int64(1), "Bob", 20, ptr("Mecânica"), ptr("bob@x.com"), ptr(birth), nil,
			ptr("Masculino"), ptr("Rua A"), ptr("12"), ptr("88000-000"), ptr("Maria"), nil, nil, nil,
		))

	student, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Bob", student.Name)
	assert.Equal(t, 20, student.Age)
	assert.Equal(t, ptr("Mecânica"), student.Course)
	require.NotNil(t, student.BirthDate)
	assert.True(t, birth.Equal(*student.BirthDate))
	assert.Nil(t, student.EnrollmentDate)
	require.NotNil(t, student.Gender)
	assert.Equal(t, domain.GenderMale, *student.Gender)
	assert.Nil(t, student.FatherName)
}

func TestStudentRepository_GetByIDNotFound(t *testing.T) {
	repo, mock := newStudentRepoWithMock(t)

	mock.ExpectQuery(`FROM alunos WHERE id=\$1`).
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStudentRepository_ListOrdered(t *testing.T) {
	repo, mock := newStudentRepoWithMock(t)

	mock.ExpectQuery(`FROM alunos ORDER BY id`).
		WillReturnRows(pgxmock.NewRows(studentRowColumns).
			AddRow(int64(1), "Ana", 19, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil).
			AddRow(int64(2), "Bob", 20, ptr("Elétrica"), nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil))

	students, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "Ana", students[0].Name)
	assert.Nil(t, students[0].Course)
	assert.Equal(t, ptr("Elétrica"), students[1].Course)
}

func TestStudentRepository_ListEmpty(t *testing.T) {
	repo, mock := newStudentRepoWithMock(t)

	mock.ExpectQuery(`FROM alunos ORDER BY id`).
		WillReturnRows(pgxmock.NewRows(studentRowColumns))

	students, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, students)
	assert.Empty(t, students)
}

func TestStudentRepository_UpdateMissing(t *testing.T) {
	repo, mock := newStudentRepoWithMock(t)

	mock.ExpectExec(`UPDATE alunos SET`).
		WithArgs(append(make([]any, 0, 15), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), int64(9))...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &domain.Student{ID: 9, Name: "Ghost", Age: 30})
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_UpdateOverwrites(t *testing.T) {
	repo, mock := newStudentRepoWithMock(t)
	gender := domain.GenderFemale

	var (
		noText *string
		noDate *time.Time
	)
	mock.ExpectExec(`UPDATE alunos SET`).
		WithArgs("Bia R.", 21, noText, noText, noDate, noDate, ptr("Feminino"), noText, noText, noText, noText, noText, noDate, noText, int64(4)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Update(context.Background(), &domain.Student{ID: 4, Name: "Bia R.", Age: 21, Gender: &gender})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_DeleteIsIdempotent(t *testing.T) {
	repo, mock := newStudentRepoWithMock(t)

	mock.ExpectExec(`DELETE FROM alunos WHERE id=\$1`).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.Delete(context.Background(), 3))
	require.NoError(t, mock.ExpectationsWereMet())
}
