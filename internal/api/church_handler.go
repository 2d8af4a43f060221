package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"partnerhub/internal/service"
)

type ChurchHandler struct {
	status *service.StatusService
	audit  *service.AuditService
}

func NewChurchHandler(status *service.StatusService, audit *service.AuditService) *ChurchHandler {
	return &ChurchHandler{status: status, audit: audit}
}

// Transition handles PATCH /churches/:id/status
func (h *ChurchHandler) Transition(c *gin.Context) {
	churchID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid church id"})
		return
	}

	var in service.TransitionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ch, err := h.status.Transition(c.Request.Context(), callerFrom(c), churchID, in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ch)
}

// BulkTransition handles POST /churches/bulk-status
func (h *ChurchHandler) BulkTransition(c *gin.Context) {
	var req struct {
		ChurchIDs []int `json:"church_ids"`
		service.TransitionInput
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := h.status.BulkTransition(c.Request.Context(), callerFrom(c), req.ChurchIDs, req.TransitionInput)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AuditTrail handles GET /churches/:id/audit
func (h *ChurchHandler) AuditTrail(c *gin.Context) {
	churchID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid church id"})
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.audit.ListByEntity(c.Request.Context(), callerFrom(c), "church", churchID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
