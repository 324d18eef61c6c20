package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/classroom-kit/student-records/internal/api/dto"
	"github.com/classroom-kit/student-records/internal/service"
	apperrors "github.com/classroom-kit/student-records/pkg/util/errorutil"
)

// StudentsHandler exposes student record endpoints to authorized users.
type StudentsHandler struct {
	students *service.StudentService
}

// NewStudentsHandler constructs handler.
func NewStudentsHandler(studentService *service.StudentService) *StudentsHandler {
	return &StudentsHandler{students: studentService}
}

// List GET /students.
func (h *StudentsHandler) List(c *fiber.Ctx) error {
	students, err := h.students.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStudentList(students)})
}

// Create POST /students.
func (h *StudentsHandler) Create(c *fiber.Ctx) error {
	var req dto.StudentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	student, err := req.ToDomain(0)
	if err != nil {
		return err
	}
	if err := h.students.Create(c.UserContext(), student); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewStudentResponse(student)})
}

// Get GET /students/:id.
func (h *StudentsHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	student, err := h.students.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStudentResponse(student)})
}

// Update PUT /students/:id. The body replaces the whole record.
func (h *StudentsHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req dto.StudentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	student, err := req.ToDomain(id)
	if err != nil {
		return err
	}
	if err := h.students.Update(c.UserContext(), student); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStudentResponse(student)})
}

// Delete DELETE /students/:id.
func (h *StudentsHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.students.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Export GET /students/export.
func (h *StudentsHandler) Export(c *fiber.Ctx) error {
	data, err := h.students.ExportCSV(c.UserContext())
	if err != nil {
		return err
	}
	filename := fmt.Sprintf("students-%s.csv", time.Now().UTC().Format("20060102"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(data)
}

// Archive POST /students/export/archive.
func (h *StudentsHandler) Archive(c *fiber.Ctx) error {
	key, err := h.students.ArchiveExport(c.UserContext())
	if err != nil {
		if errors.Is(err, service.ErrArchiveDisabled) {
			return apperrors.NewUnavailable("export archive not configured", err)
		}
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"key": key}})
}

func idParam(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]any{"id": c.Params("id")})
	}
	return id, nil
}
