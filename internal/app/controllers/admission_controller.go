package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edafa/admissions/internal/app/models"
	"github.com/edafa/admissions/internal/app/models/dto"
	"github.com/edafa/admissions/internal/app/repositories"
	"github.com/edafa/admissions/internal/app/services"
	"github.com/edafa/admissions/internal/middleware"
	"github.com/edafa/admissions/internal/pkg/filestorage"
	"github.com/edafa/admissions/internal/pkg/helpers"
)

// AdmissionController handles application intake and the staff lifecycle
// operations.
type AdmissionController struct {
	admissionService  *services.AdmissionService
	enrollmentService *services.EnrollmentService
	invoiceService    *services.InvoiceService
	fileStorage       filestorage.FileStorage
}

// NewAdmissionController creates a new AdmissionController
func NewAdmissionController(
	admissionService *services.AdmissionService,
	enrollmentService *services.EnrollmentService,
	invoiceService *services.InvoiceService,
	fileStorage filestorage.FileStorage,
) *AdmissionController {
	return &AdmissionController{
		admissionService:  admissionService,
		enrollmentService: enrollmentService,
		invoiceService:    invoiceService,
		fileStorage:       fileStorage,
	}
}

func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name)
		errorDetail = errorDetail.WithDetails(name + " must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// SubmitApplication handles the public application form
func (c *AdmissionController) SubmitApplication(ctx *gin.Context) {
	var req dto.SubmitApplicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid application data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	admission, err := c.admissionService.SubmitApplication(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data: dto.SubmitApplicationResponse{
			AdmissionResponse: dto.ToAdmissionResponse(admission),
			AccessToken:       admission.AccessToken,
		},
		Timestamp: time.Now(),
	})
}

// GetApplication returns an application to its owner. The applicant proves
// ownership with the access token issued at submission.
func (c *AdmissionController) GetApplication(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	admission, err := c.admissionService.GetForApplicant(ctx, id, ctx.GetHeader("X-Access-Token"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.ToAdmissionResponse(admission),
		Timestamp: time.Now(),
	})
}

// CheckStatus is the public status lookup by application number and email
func (c *AdmissionController) CheckStatus(ctx *gin.Context) {
	var req dto.StatusCheckRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid status check parameters")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	admission, err := c.admissionService.CheckStatus(ctx, req.ApplicationNumber, req.Email)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.StatusCheckResponse{
			ApplicationNumber: admission.ApplicationNumber,
			Status:            admission.Status,
			PaymentStatus:     admission.PaymentStatus,
		},
		Timestamp: time.Now(),
	})
}

// UploadPhoto stores the applicant photo on an application
func (c *AdmissionController) UploadPhoto(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	// Ownership is checked before any file handling so an invalid token
	// cannot be used to write files
	accessToken := ctx.GetHeader("X-Access-Token")
	if _, err := c.admissionService.GetForApplicant(ctx, id, accessToken); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	fileHeader, err := ctx.FormFile("photo")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Photo file is required")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := filestorage.ValidatePhoto(fileHeader); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid photo")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	path, err := c.fileStorage.SaveFileWithPath(fileHeader, "admissions")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.admissionService.AttachPhoto(ctx, id, accessToken, path); err != nil {
		// Do not leave an orphaned file behind when the photo could not be
		// attached
		_ = c.fileStorage.DeleteFile(path)
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Photo uploaded successfully"},
		Timestamp: time.Now(),
	})
}

// ListAdmissions is the staff listing with cycle, status and email filters
func (c *AdmissionController) ListAdmissions(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	filter := repositories.AdmissionFilter{
		Email: ctx.Query("email"),
	}
	if cycleStr := ctx.Query("cycleId"); cycleStr != "" {
		cycleID, err := strconv.ParseInt(cycleStr, 10, 64)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid cycleId")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		filter.CycleID = &cycleID
	}
	if statusStr := ctx.Query("status"); statusStr != "" {
		status := models.AdmissionState(statusStr)
		filter.Status = &status
	}

	admissions, total, err := c.admissionService.List(ctx, filter, offset, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	responses := make([]dto.AdmissionResponse, 0, len(admissions))
	for _, a := range admissions {
		responses = append(responses, dto.ToAdmissionResponse(a))
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.AdmissionListResponse{
			Admissions:     responses,
			PaginationInfo: helpers.NewPaginationInfo(total, page, size),
		},
		Timestamp: time.Now(),
	})
}

// GetAdmission returns one application to staff
func (c *AdmissionController) GetAdmission(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	admission, err := c.admissionService.GetByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.ToAdmissionResponse(admission),
		Timestamp: time.Now(),
	})
}

// UpdateSelection changes the course/batch selection of an application
func (c *AdmissionController) UpdateSelection(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateSelectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid selection data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	admission, err := c.admissionService.UpdateSelection(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.ToAdmissionResponse(admission),
		Timestamp: time.Now(),
	})
}

// Confirm moves an application to confirm
func (c *AdmissionController) Confirm(ctx *gin.Context) {
	c.transition(ctx, c.admissionService.Confirm)
}

// Pend parks an application for later review
func (c *AdmissionController) Pend(ctx *gin.Context) {
	c.transition(ctx, c.admissionService.Pend)
}

// Cancel withdraws an application
func (c *AdmissionController) Cancel(ctx *gin.Context) {
	c.transition(ctx, c.admissionService.Cancel)
}

// BackToDraft returns an application to the applicant for editing
func (c *AdmissionController) BackToDraft(ctx *gin.Context) {
	c.transition(ctx, c.admissionService.BackToDraft)
}

// Reject declines an application with an optional staff reason
func (c *AdmissionController) Reject(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.RejectRequest
	// The reason body is optional
	_ = ctx.ShouldBindJSON(&req)

	admission, err := c.admissionService.Reject(ctx, id, req.Reason)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.ToAdmissionResponse(admission),
		Timestamp: time.Now(),
	})
}

func (c *AdmissionController) transition(ctx *gin.Context, op func(ctx context.Context, id int64) (*models.Admission, error)) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	admission, err := op(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.ToAdmissionResponse(admission),
		Timestamp: time.Now(),
	})
}

// IssueInvoice raises the application fee invoice
func (c *AdmissionController) IssueInvoice(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	invoice, err := c.invoiceService.IssueInvoice(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      dto.ToInvoiceResponse(invoice),
		Timestamp: time.Now(),
	})
}

// GetInvoice returns the invoice raised for an application
func (c *AdmissionController) GetInvoice(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	invoice, err := c.invoiceService.GetByAdmissionID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.ToInvoiceResponse(invoice),
		Timestamp: time.Now(),
	})
}

// Enroll finalizes an admitted application into a student
func (c *AdmissionController) Enroll(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	result, err := c.enrollmentService.Enroll(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.EnrollmentResponse{
			StudentID:          result.Student.ID,
			RegistrationNumber: result.Student.RegistrationNumber,
			AdmissionID:        id,
			CourseDetailID:     result.CourseDetailID,
			FeeDueCount:        result.FeeDueCount,
			PortalUserID:       result.PortalUserID,
		},
		Timestamp: time.Now(),
	})
}

// GetStudent returns an enrolled student with course assignments and fee dues
func (c *AdmissionController) GetStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	student, err := c.enrollmentService.GetStudent(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.ToStudentResponse(student),
		Timestamp: time.Now(),
	})
}
