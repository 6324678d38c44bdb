package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edafa/admissions/internal/app/models"
	"github.com/edafa/admissions/internal/app/models/dto"
	"github.com/edafa/admissions/internal/app/services"
	"github.com/edafa/admissions/internal/middleware"
)

// PaymentController handles fee payment transactions and reconciliation.
type PaymentController struct {
	paymentService *services.PaymentService
}

// NewPaymentController creates a new PaymentController
func NewPaymentController(paymentService *services.PaymentService) *PaymentController {
	return &PaymentController{paymentService: paymentService}
}

// CreateTransaction opens a pending payment transaction for an application
func (c *PaymentController) CreateTransaction(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.CreateTransactionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid transaction data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	transaction, provider, err := c.paymentService.CreateTransaction(ctx, id, req.ProviderID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, transactionResponse(transaction, provider))
}

// CreateApplicantTransaction opens a payment transaction for the applicant's
// own application, authenticated by the access token
func (c *PaymentController) CreateApplicantTransaction(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.CreateTransactionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid transaction data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	transaction, provider, err := c.paymentService.CreateTransactionForApplicant(ctx, id, req.ProviderID, ctx.GetHeader("X-Access-Token"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, transactionResponse(transaction, provider))
}

func transactionResponse(transaction *models.PaymentTransaction, provider *models.PaymentProvider) dto.APIResponse {
	return dto.APIResponse{
		Data: dto.TransactionResponse{
			ID:          transaction.ID,
			Reference:   transaction.Reference,
			Amount:      transaction.Amount,
			Currency:    transaction.Currency,
			State:       transaction.State,
			RedirectURL: provider.RedirectURL,
			CreatedAt:   transaction.CreatedAt,
		},
		Timestamp: time.Now(),
	}
}

// ProviderCallback applies a provider state notification to a transaction
// and reconciles the owning application.
func (c *PaymentController) ProviderCallback(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.ProviderCallbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid callback data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	admission, err := c.paymentService.RecordProviderState(ctx, id, req.Reference, models.TransactionState(req.State))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      reconcileResponse(admission),
		Timestamp: time.Now(),
	})
}

// Reconcile re-applies the latest transaction state to an application. Safe
// to call repeatedly.
func (c *PaymentController) Reconcile(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	admission, err := c.paymentService.Reconcile(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      reconcileResponse(admission),
		Timestamp: time.Now(),
	})
}

func reconcileResponse(a *models.Admission) dto.ReconcileResponse {
	return dto.ReconcileResponse{
		AdmissionID:      a.ID,
		Status:           a.Status,
		PaymentStatus:    a.PaymentStatus,
		PaymentDate:      a.PaymentDate,
		PaymentReference: a.PaymentReference,
	}
}
