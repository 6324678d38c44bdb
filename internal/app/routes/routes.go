package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/edafa/admissions/internal/app/controllers"
	"github.com/edafa/admissions/internal/app/models"
	"github.com/edafa/admissions/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	catalogController *controllers.CatalogController,
	admissionController *controllers.AdmissionController,
	paymentController *controllers.PaymentController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public catalog routes ---
	cycles := v1.Group("/cycles")
	{
		cycles.GET("", catalogController.ListOpenCycles)
		cycles.GET("/:id", catalogController.GetCycle)
	}

	departments := v1.Group("/departments")
	{
		departments.GET("", catalogController.ListDepartments)
		departments.GET("/:id/programs", catalogController.ListPrograms)
	}
	v1.GET("/programs/:id/courses", catalogController.ListCourses)
	v1.GET("/courses/:id/batches", catalogController.ListBatches)

	// --- Public applicant routes ---
	// Applicants authenticate per-application with the access token issued
	// at submission, sent in the X-Access-Token header.
	applications := v1.Group("/applications")
	{
		applications.POST("", admissionController.SubmitApplication)
		applications.GET("/status", admissionController.CheckStatus)
		applications.GET("/:id", admissionController.GetApplication)
		applications.POST("/:id/photo", admissionController.UploadPhoto)
		applications.POST("/:id/transactions", paymentController.CreateApplicantTransaction)
	}

	// Payment provider callbacks carry the transaction id, not an admission
	// id, and authenticate with the transaction reference
	v1.POST("/transactions/:id/callback", paymentController.ProviderCallback)

	// --- Public auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
	}

	// --- Staff routes ---
	staff := v1.Group("/admissions")
	staff.Use(authMiddleware.JWTAuth())
	staff.Use(authMiddleware.RoleRequired(models.RoleStaff))
	{
		staff.GET("", admissionController.ListAdmissions)
		staff.GET("/:id", admissionController.GetAdmission)
		staff.PUT("/:id/selection", admissionController.UpdateSelection)

		staff.POST("/:id/confirm", admissionController.Confirm)
		staff.POST("/:id/reject", admissionController.Reject)
		staff.POST("/:id/pend", admissionController.Pend)
		staff.POST("/:id/cancel", admissionController.Cancel)
		staff.POST("/:id/draft", admissionController.BackToDraft)

		staff.POST("/:id/invoice", admissionController.IssueInvoice)
		staff.GET("/:id/invoice", admissionController.GetInvoice)
		staff.POST("/:id/transactions", paymentController.CreateTransaction)
		staff.POST("/:id/reconcile", paymentController.Reconcile)
		staff.POST("/:id/enroll", admissionController.Enroll)
	}

	students := v1.Group("/students")
	students.Use(authMiddleware.JWTAuth())
	students.Use(authMiddleware.RoleRequired(models.RoleStaff))
	{
		students.GET("/:id", admissionController.GetStudent)
	}
}
