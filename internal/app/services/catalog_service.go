package services

import (
	"context"
	"errors"
	"time"

	"github.com/edafa/admissions/internal/app/models"
	"github.com/edafa/admissions/internal/app/repositories"
	"github.com/edafa/admissions/internal/pkg/apperrors"
)

// CatalogService exposes the academic catalog and the open admission cycles
// to the public application form.
type CatalogService struct {
	cycleStore CycleStore
	academic   AcademicStore
	now        func() time.Time
}

// NewCatalogService creates a new catalog service instance
func NewCatalogService(cycleStore CycleStore, academic AcademicStore) *CatalogService {
	return &CatalogService{cycleStore: cycleStore, academic: academic, now: time.Now}
}

// ListOpenCycles returns the cycles currently accepting applications
func (s *CatalogService) ListOpenCycles(ctx context.Context) ([]*models.AdmissionCycle, error) {
	return s.cycleStore.ListOpen(ctx, s.now())
}

// GetCycle returns one admission cycle with its fee lines
func (s *CatalogService) GetCycle(ctx context.Context, id int64) (*models.AdmissionCycle, error) {
	cycle, err := s.cycleStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCycleNotFound) {
			return nil, apperrors.ErrCycleNotFound
		}
		return nil, err
	}
	return cycle, nil
}

// ListDepartments returns all active departments
func (s *CatalogService) ListDepartments(ctx context.Context) ([]*models.Department, error) {
	return s.academic.GetDepartments(ctx)
}

// ListPrograms returns the programs of a department
func (s *CatalogService) ListPrograms(ctx context.Context, departmentID int64) ([]*models.Program, error) {
	if _, err := s.academic.GetDepartmentByID(ctx, departmentID); err != nil {
		if errors.Is(err, repositories.ErrDepartmentNotFound) {
			return nil, apperrors.ErrDepartmentNotFound
		}
		return nil, err
	}
	return s.academic.GetProgramsByDepartment(ctx, departmentID)
}

// ListCourses returns the courses of a program
func (s *CatalogService) ListCourses(ctx context.Context, programID int64) ([]*models.Course, error) {
	if _, err := s.academic.GetProgramByID(ctx, programID); err != nil {
		if errors.Is(err, repositories.ErrProgramNotFound) {
			return nil, apperrors.ErrProgramNotFound
		}
		return nil, err
	}
	return s.academic.GetCoursesByProgram(ctx, programID)
}

// ListBatches returns the batches of a course
func (s *CatalogService) ListBatches(ctx context.Context, courseID int64) ([]*models.Batch, error) {
	if _, err := s.academic.GetCourseByID(ctx, courseID); err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, err
	}
	return s.academic.GetBatchesByCourse(ctx, courseID)
}
