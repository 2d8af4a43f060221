package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"partnerhub/internal/model"
	"partnerhub/internal/service"
)

type phaseLister interface {
	List(ctx context.Context) ([]model.Phase, error)
}

type MilestoneHandler struct {
	ordering *service.OrderingService
	progress *service.ProgressService
	phases   phaseLister
}

func NewMilestoneHandler(ordering *service.OrderingService, progress *service.ProgressService, phases phaseLister) *MilestoneHandler {
	return &MilestoneHandler{ordering: ordering, progress: progress, phases: phases}
}

func pathInt(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}

// Create handles POST /churches/:id/milestones
func (h *MilestoneHandler) Create(c *gin.Context) {
	churchID, ok := pathInt(c, "id")
	if !ok {
		return
	}

	var in service.CreateMilestoneInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	m, err := h.ordering.CreateMilestone(c.Request.Context(), callerFrom(c), churchID, in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, m)
}

// Edit handles PATCH /churches/:id/milestones/:mid
func (h *MilestoneHandler) Edit(c *gin.Context) {
	churchID, ok := pathInt(c, "id")
	if !ok {
		return
	}
	milestoneID, ok := pathInt(c, "mid")
	if !ok {
		return
	}

	var in service.EditMilestoneInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	m, err := h.ordering.EditMilestone(c.Request.Context(), callerFrom(c), churchID, milestoneID, in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, m)
}

// MoveUp handles POST /churches/:id/milestones/:mid/move-up
func (h *MilestoneHandler) MoveUp(c *gin.Context) {
	h.move(c, h.ordering.MoveUp)
}

// MoveDown handles POST /churches/:id/milestones/:mid/move-down
func (h *MilestoneHandler) MoveDown(c *gin.Context) {
	h.move(c, h.ordering.MoveDown)
}

func (h *MilestoneHandler) move(c *gin.Context, fn func(ctx context.Context, caller service.Caller, churchID, milestoneID int) error) {
	churchID, ok := pathInt(c, "id")
	if !ok {
		return
	}
	milestoneID, ok := pathInt(c, "mid")
	if !ok {
		return
	}

	if err := fn(c.Request.Context(), callerFrom(c), churchID, milestoneID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "reordered"})
}

// Delete handles DELETE /churches/:id/milestones/:mid
func (h *MilestoneHandler) Delete(c *gin.Context) {
	churchID, ok := pathInt(c, "id")
	if !ok {
		return
	}
	milestoneID, ok := pathInt(c, "mid")
	if !ok {
		return
	}

	if err := h.ordering.DeleteMilestone(c.Request.Context(), callerFrom(c), churchID, milestoneID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ListPhases handles GET /phases
func (h *MilestoneHandler) ListPhases(c *gin.Context) {
	phases, err := h.phases.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, phases)
}

// SetProgress handles PUT /churches/:id/milestones/:mid/progress
func (h *MilestoneHandler) SetProgress(c *gin.Context) {
	churchID, ok := pathInt(c, "id")
	if !ok {
		return
	}
	milestoneID, ok := pathInt(c, "mid")
	if !ok {
		return
	}

	var in service.SetProgressInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	p, err := h.progress.SetProgress(c.Request.Context(), callerFrom(c), churchID, milestoneID, in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}
