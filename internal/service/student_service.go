package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	BulkCreate(ctx context.Context, students []models.Student) error
	Delete(ctx context.Context, id string) error
}

type classResolver interface {
	FindByID(ctx context.Context, id string) (*models.EntityProfile, error)
}

// CreateStudentRequest registers one roster entry.
type CreateStudentRequest struct {
	RollNumber string `json:"roll_number" validate:"required"`
	Name       string `json:"name" validate:"required"`
	ClassID    string `json:"class_id" validate:"required"`
}

// BulkAddStudentsRequest carries pasted roster text, one student per line in
// the form "rollNumber, name".
type BulkAddStudentsRequest struct {
	ClassID string `json:"class_id" validate:"required"`
	Text    string `json:"text" validate:"required"`
}

// StudentService manages the roster.
type StudentService struct {
	repo      studentRepository
	classes   classResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService instantiates StudentService.
func NewStudentService(repo studentRepository, classes classResolver, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, classes: classes, validator: validate, logger: logger}
}

// List returns roster entries with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Create registers one student after checking the class reference.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if err := s.requireClass(ctx, req.ClassID); err != nil {
		return nil, err
	}

	student := models.Student{
		RollNumber: strings.TrimSpace(req.RollNumber),
		Name:       strings.TrimSpace(req.Name),
		ClassID:    req.ClassID,
	}
	if err := s.repo.Create(ctx, &student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return &student, nil
}

// BulkAdd parses pasted text line by line. Lines that do not yield both a roll
// number and a name are skipped, never rejected: the paste flow is forgiving.
func (s *StudentService) BulkAdd(ctx context.Context, req BulkAddStudentsRequest) (*models.BulkAddResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk add payload")
	}
	if err := s.requireClass(ctx, req.ClassID); err != nil {
		return nil, err
	}

	result := &models.BulkAddResult{}
	var students []models.Student
	for _, line := range strings.Split(req.Text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ",", 2)
		if len(parts) != 2 {
			result.Skipped++
			continue
		}
		roll := strings.TrimSpace(parts[0])
		name := strings.TrimSpace(parts[1])
		if roll == "" || name == "" {
			result.Skipped++
			continue
		}
		students = append(students, models.Student{RollNumber: roll, Name: name, ClassID: req.ClassID})
	}

	if len(students) > 0 {
		if err := s.repo.BulkCreate(ctx, students); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add students")
		}
	}
	result.Added = len(students)
	return result, nil
}

// Delete removes one student.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}

func (s *StudentService) requireClass(ctx context.Context, classID string) error {
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if class.Type != models.EntityTypeClass {
		return appErrors.Clone(appErrors.ErrValidation, "students can only join CLASS profiles")
	}
	return nil
}
