package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edafa/admissions/internal/app/models/dto"
	"github.com/edafa/admissions/internal/app/services"
	"github.com/edafa/admissions/internal/middleware"
)

// CatalogController exposes the academic catalog and the open admission
// cycles to the public application form.
type CatalogController struct {
	catalogService *services.CatalogService
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(catalogService *services.CatalogService) *CatalogController {
	return &CatalogController{catalogService: catalogService}
}

// ListOpenCycles returns the cycles currently accepting applications
func (c *CatalogController) ListOpenCycles(ctx *gin.Context) {
	cycles, err := c.catalogService.ListOpenCycles(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	responses := make([]dto.CycleResponse, 0, len(cycles))
	for _, cycle := range cycles {
		responses = append(responses, dto.ToCycleResponse(cycle))
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.CycleListResponse{Cycles: responses},
		Timestamp: time.Now(),
	})
}

// GetCycle returns one admission cycle with its selectable courses
func (c *CatalogController) GetCycle(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	cycle, err := c.catalogService.GetCycle(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.ToCycleResponse(cycle),
		Timestamp: time.Now(),
	})
}

// ListDepartments returns all active departments
func (c *CatalogController) ListDepartments(ctx *gin.Context) {
	departments, err := c.catalogService.ListDepartments(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	responses := make([]dto.DepartmentResponse, 0, len(departments))
	for _, d := range departments {
		responses = append(responses, dto.ToDepartmentResponse(d))
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.DepartmentListResponse{Departments: responses},
		Timestamp: time.Now(),
	})
}

// ListPrograms returns the programs of a department
func (c *CatalogController) ListPrograms(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	programs, err := c.catalogService.ListPrograms(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	responses := make([]dto.ProgramResponse, 0, len(programs))
	for _, p := range programs {
		responses = append(responses, dto.ToProgramResponse(p))
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.ProgramListResponse{Programs: responses},
		Timestamp: time.Now(),
	})
}

// ListCourses returns the courses of a program
func (c *CatalogController) ListCourses(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	courses, err := c.catalogService.ListCourses(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	responses := make([]dto.CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, dto.ToCourseResponse(course))
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.CourseListResponse{Courses: responses},
		Timestamp: time.Now(),
	})
}

// ListBatches returns the batches of a course
func (c *CatalogController) ListBatches(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	batches, err := c.catalogService.ListBatches(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	responses := make([]dto.BatchResponse, 0, len(batches))
	for _, b := range batches {
		responses = append(responses, dto.ToBatchResponse(b))
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.BatchListResponse{Batches: responses},
		Timestamp: time.Now(),
	})
}
