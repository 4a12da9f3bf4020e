package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"skillforge/internal/application/partner/usecases"
	"skillforge/internal/interfaces/http/middleware"
	"skillforge/internal/shared/constants"
	"skillforge/internal/shared/errors"
	"skillforge/internal/shared/logger"
	"skillforge/internal/shared/utils"
)

// PartnerHandler exposes the admin approval flow for partner intake
// applications.
type PartnerHandler struct {
	approveUC approveApplicationUseCase
	rejectUC  rejectApplicationUseCase
	getUC     getApplicationUseCase
	listUC    listApplicationsUseCase
	logger    logger.Interface
}

func NewPartnerHandler(
	approveUC approveApplicationUseCase,
	rejectUC rejectApplicationUseCase,
	getUC getApplicationUseCase,
	listUC listApplicationsUseCase,
	log logger.Interface,
) *PartnerHandler {
	return &PartnerHandler{
		approveUC: approveUC,
		rejectUC:  rejectUC,
		getUC:     getUC,
		listUC:    listUC,
		logger:    log,
	}
}

type RejectApplicationRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ApproveApplication runs the two-phase approval. A fully completed approval
// answers 200. When the partner record committed but the external identity
// step did not finish, the handler answers 207 Multi-Status with a retryable
// error in the body: the client finishes setup by calling the endpoint again.
func (h *PartnerHandler) ApproveApplication(c *gin.Context) {
	applicationID, err := parseApplicationID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	result, err := h.approveUC.Execute(c.Request.Context(), usecases.ApproveApplicationCommand{
		ApplicationSID: applicationID,
		Actor:          tc,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if result.RetryableError != "" {
		utils.SuccessResponse(c, http.StatusMultiStatus, result.Message, result)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, result.Message, result)
}

// RejectApplication terminates a submitted application.
func (h *PartnerHandler) RejectApplication(c *gin.Context) {
	applicationID, err := parseApplicationID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req RejectApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for reject application",
			"application_id", applicationID,
			"error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("Invalid request body", err.Error()))
		return
	}

	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	result, err := h.rejectUC.Execute(c.Request.Context(), usecases.RejectApplicationCommand{
		ApplicationSID: applicationID,
		Actor:          tc,
		Reason:         req.Reason,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Application rejected", result)
}

// GetApplication returns one application with its partner, if provisioned.
func (h *PartnerHandler) GetApplication(c *gin.Context) {
	applicationID, err := parseApplicationID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	result, err := h.getUC.Execute(c.Request.Context(), tc, applicationID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// ListApplications pages through the tenant's applications, newest first.
func (h *PartnerHandler) ListApplications(c *gin.Context) {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	page, pageSize, err := parsePagination(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	items, total, err := h.listUC.Execute(c.Request.Context(), tc, page, pageSize)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, items, total, page, pageSize)
}

func parseApplicationID(c *gin.Context) (string, error) {
	id := c.Param("id")
	if id == "" {
		return "", errors.NewValidationError("Application ID is required")
	}
	return id, nil
}

func parsePagination(c *gin.Context) (int, int, error) {
	page := constants.DefaultPage
	pageSize := constants.DefaultPageSize

	if pageStr := c.Query("page"); pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p < 1 {
			return 0, 0, errors.NewValidationError("Invalid page parameter")
		}
		page = p
	}

	if pageSizeStr := c.Query("page_size"); pageSizeStr != "" {
		ps, err := strconv.Atoi(pageSizeStr)
		if err != nil || ps < 1 {
			return 0, 0, errors.NewValidationError("Invalid page_size parameter")
		}
		if ps > constants.MaxPageSize {
			ps = constants.MaxPageSize
		}
		pageSize = ps
	}

	return page, pageSize, nil
}
