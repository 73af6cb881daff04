package onboarding

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"peoplehub/hr-portal/hr-portal-backend/internal/middleware"
	"peoplehub/hr-portal/hr-portal-backend/pkg/export"
)

// Handler handles HTTP requests for onboarding operations
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new onboarding handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers onboarding routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	onboarding := router.Group("/onboarding")
	{
		// Template authoring
		onboarding.POST("/templates", h.createTemplate)
		onboarding.GET("/templates", h.listTemplates)
		onboarding.GET("/templates/match/:employeeId", h.matchTemplate)
		onboarding.GET("/templates/:id", h.getTemplate)
		onboarding.PUT("/templates/:id", h.updateTemplate)

		// Progress
		onboarding.POST("/start/:employeeId", h.startOnboarding)
		onboarding.GET("/progress/:id", h.getProgress)
		onboarding.PUT("/progress/:id/steps/:stepId", h.updateStepStatus)
		onboarding.POST("/progress/:id/hold", h.hold)
		onboarding.POST("/progress/:id/resume", h.resume)
		onboarding.POST("/progress/:id/cancel", h.cancel)
		onboarding.POST("/progress/:id/retry-completion", h.retryCompletion)
		onboarding.PUT("/progress/:id/participants", h.assignParticipants)
		onboarding.GET("/employee/:employeeId", h.getEmployeeProgress)

		// Organization views
		onboarding.GET("/organization", h.listOrganizationProgress)
		onboarding.GET("/organization/export", h.exportOrganizationProgress)
		onboarding.GET("/dashboard/stats", h.dashboardStats)
	}
}

// StepActionRequest is the body of a step transition
type StepActionRequest struct {
	Action string `json:"action" binding:"required"`
	Notes  string `json:"notes"`
}

// ReasonRequest is the body of hold and cancel
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// ParticipantsRequest is the body of a participant assignment
type ParticipantsRequest struct {
	HRAssigneeID *uuid.UUID `json:"hr_assignee_id"`
	BuddyID      *uuid.UUID `json:"buddy_id"`
}

// =====================================================
// Template Endpoints
// =====================================================

// createTemplate handles POST /api/v1/onboarding/templates
func (h *Handler) createTemplate(c *gin.Context) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	tmpl, err := h.service.CreateTemplate(c.Request.Context(), middleware.OrganizationID(c), middleware.ActorID(c), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, tmpl)
}

// updateTemplate handles PUT /api/v1/onboarding/templates/:id
func (h *Handler) updateTemplate(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	tmpl, err := h.service.UpdateTemplate(c.Request.Context(), middleware.OrganizationID(c), id, middleware.ActorID(c), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tmpl)
}

// getTemplate handles GET /api/v1/onboarding/templates/:id
func (h *Handler) getTemplate(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	tmpl, err := h.service.GetTemplate(c.Request.Context(), middleware.OrganizationID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tmpl)
}

// listTemplates handles GET /api/v1/onboarding/templates
func (h *Handler) listTemplates(c *gin.Context) {
	templates, err := h.service.ListTemplates(c.Request.Context(), middleware.OrganizationID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates, "count": len(templates)})
}

// matchTemplate handles GET /api/v1/onboarding/templates/match/:employeeId
func (h *Handler) matchTemplate(c *gin.Context) {
	employeeID, ok := h.uuidParam(c, "employeeId")
	if !ok {
		return
	}
	tmpl, err := h.service.PreviewTemplate(c.Request.Context(), middleware.OrganizationID(c), employeeID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tmpl)
}

// =====================================================
// Progress Endpoints
// =====================================================

// startOnboarding handles POST /api/v1/onboarding/start/:employeeId
func (h *Handler) startOnboarding(c *gin.Context) {
	employeeID, ok := h.uuidParam(c, "employeeId")
	if !ok {
		return
	}
	var templateID *uuid.UUID
	if raw := c.Query("template_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.badRequest(c, "invalid template ID")
			return
		}
		templateID = &id
	}

	view, err := h.service.StartOnboarding(c.Request.Context(), middleware.OrganizationID(c), employeeID, templateID, middleware.ActorID(c))
	if err != nil {
		h.failWithView(c, view, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// getProgress handles GET /api/v1/onboarding/progress/:id
func (h *Handler) getProgress(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	view, err := h.service.GetProgress(c.Request.Context(), middleware.OrganizationID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// updateStepStatus handles PUT /api/v1/onboarding/progress/:id/steps/:stepId
func (h *Handler) updateStepStatus(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	stepID, ok := h.uuidParam(c, "stepId")
	if !ok {
		return
	}
	var req StepActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	view, err := h.service.UpdateStepStatus(c.Request.Context(), middleware.OrganizationID(c), id, stepID, req.Action, req.Notes, middleware.ActorID(c))
	if err != nil {
		h.failWithView(c, view, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// hold handles POST /api/v1/onboarding/progress/:id/hold
func (h *Handler) hold(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req ReasonRequest
	_ = c.ShouldBindJSON(&req)

	view, err := h.service.Hold(c.Request.Context(), middleware.OrganizationID(c), id, req.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// resume handles POST /api/v1/onboarding/progress/:id/resume
func (h *Handler) resume(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	view, err := h.service.Resume(c.Request.Context(), middleware.OrganizationID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// cancel handles POST /api/v1/onboarding/progress/:id/cancel
func (h *Handler) cancel(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req ReasonRequest
	_ = c.ShouldBindJSON(&req)

	view, err := h.service.Cancel(c.Request.Context(), middleware.OrganizationID(c), id, req.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// retryCompletion handles POST /api/v1/onboarding/progress/:id/retry-completion
func (h *Handler) retryCompletion(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	view, err := h.service.RetryCompletionEffects(c.Request.Context(), middleware.OrganizationID(c), id, middleware.ActorID(c))
	if err != nil {
		h.failWithView(c, view, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// assignParticipants handles PUT /api/v1/onboarding/progress/:id/participants
func (h *Handler) assignParticipants(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req ParticipantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	view, err := h.service.AssignParticipants(c.Request.Context(), middleware.OrganizationID(c), id, req.HRAssigneeID, req.BuddyID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// getEmployeeProgress handles GET /api/v1/onboarding/employee/:employeeId
func (h *Handler) getEmployeeProgress(c *gin.Context) {
	employeeID, ok := h.uuidParam(c, "employeeId")
	if !ok {
		return
	}
	view, err := h.service.GetEmployeeProgress(c.Request.Context(), middleware.OrganizationID(c), employeeID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// =====================================================
// Organization Endpoints
// =====================================================

// listOrganizationProgress handles GET /api/v1/onboarding/organization
func (h *Handler) listOrganizationProgress(c *gin.Context) {
	var status *OverallStatus
	if raw := c.Query("status"); raw != "" {
		s := OverallStatus(raw)
		if !progressMachine.Knows(raw) {
			h.badRequest(c, fmt.Sprintf("unknown status %q", raw))
			return
		}
		status = &s
	}

	progress, err := h.service.ListOrganizationProgress(c.Request.Context(), middleware.OrganizationID(c), status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": progress, "count": len(progress)})
}

// exportOrganizationProgress handles GET /api/v1/onboarding/organization/export
func (h *Handler) exportOrganizationProgress(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := h.service.ExportOrganizationProgress(c.Request.Context(), middleware.OrganizationID(c), format, &buf); err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=onboarding-progress%s", format.Extension()))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// dashboardStats handles GET /api/v1/onboarding/dashboard/stats
func (h *Handler) dashboardStats(c *gin.Context) {
	stats, err := h.service.DashboardStats(c.Request.Context(), middleware.OrganizationID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// =====================================================
// Helper Methods
// =====================================================

func (h *Handler) uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.badRequest(c, fmt.Sprintf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "BAD_REQUEST", "message": message}})
}

// fail maps an error to its status and the machine-readable error body
func (h *Handler) fail(c *gin.Context, err error) {
	status := HTTPStatus(err)
	code := "INTERNAL_ERROR"
	message := "internal server error"

	var e *Error
	if errors.As(err, &e) {
		code = string(e.Code)
		message = e.Message
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("Onboarding request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}

// failWithView reports a side-effect failure alongside the committed state
func (h *Handler) failWithView(c *gin.Context, view *ProgressView, err error) {
	var e *Error
	if view == nil || !errors.As(err, &e) || e.Kind != KindCollaborator {
		h.fail(c, err)
		return
	}
	h.logger.Warn("Onboarding side effect failed",
		zap.String("progress_id", view.ID.String()),
		zap.String("code", string(e.Code)),
		zap.Error(err))
	c.JSON(HTTPStatus(err), gin.H{
		"error":    gin.H{"code": string(e.Code), "message": e.Message},
		"progress": view,
	})
}
