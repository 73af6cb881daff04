package documents

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"peoplehub/hr-portal/hr-portal-backend/internal/middleware"
)

type Handler struct {
	dispatcher *Dispatcher
}

func NewHandler(dispatcher *Dispatcher) *Handler {
	return &Handler{dispatcher: dispatcher}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	docs := rg.Group("/documents")
	{
		docs.GET("/employee/:employeeId", h.ListEmployeeDocuments)
		docs.POST("/employee/:employeeId/onboarding", h.SendOnboardingDocuments)
	}
}

func (h *Handler) ListEmployeeDocuments(c *gin.Context) {
	employeeID, err := uuid.Parse(c.Param("employeeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee ID"})
		return
	}

	docs, err := h.dispatcher.ListEmployeeDocuments(c.Request.Context(), middleware.OrganizationID(c), employeeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs, "count": len(docs)})
}

func (h *Handler) SendOnboardingDocuments(c *gin.Context) {
	employeeID, err := uuid.Parse(c.Param("employeeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee ID"})
		return
	}

	sent, err := h.dispatcher.SendOnboardingDocuments(c.Request.Context(), employeeID, middleware.OrganizationID(c), middleware.ActorID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "sent": sent})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": sent})
}
