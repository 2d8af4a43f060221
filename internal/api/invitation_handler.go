package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"partnerhub/internal/model"
	"partnerhub/internal/service"
)

type InvitationHandler struct {
	invitations *service.InvitationService
	identity    *service.IdentityService
}

func NewInvitationHandler(invitations *service.InvitationService, identity *service.IdentityService) *InvitationHandler {
	return &InvitationHandler{invitations: invitations, identity: identity}
}

// Invite handles POST /groups/:id/invitations. Exactly one of leader_id or
// email selects the identity path.
func (h *InvitationHandler) Invite(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	var req struct {
		LeaderID int    `json:"leader_id"`
		Email    string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if (req.LeaderID == 0) == (req.Email == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one of leader_id or email is required"})
		return
	}

	caller := callerFrom(c)
	ctx := c.Request.Context()

	var inv any
	if req.LeaderID != 0 {
		inv, err = h.invitations.InviteByLeaderID(ctx, caller, groupID, req.LeaderID)
	} else {
		inv, err = h.invitations.InviteByEmail(ctx, caller, groupID, req.Email)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, inv)
}

// Accept handles POST /invitations/accept
func (h *InvitationHandler) Accept(c *gin.Context) {
	h.resolve(c, h.invitations.Accept)
}

// Decline handles POST /invitations/decline
func (h *InvitationHandler) Decline(c *gin.Context) {
	h.resolve(c, h.invitations.Decline)
}

func (h *InvitationHandler) resolve(c *gin.Context, fn func(ctx context.Context, token string) (*model.CoLeaderInvitation, error)) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	inv, err := fn(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, inv)
}

// Cancel handles DELETE /groups/:id/invitations
func (h *InvitationHandler) Cancel(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	if err := h.invitations.Cancel(c.Request.Context(), callerFrom(c), groupID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// RemoveCoLeader handles DELETE /groups/:id/co-leader
func (h *InvitationHandler) RemoveCoLeader(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	if err := h.invitations.RemoveCoLeader(c.Request.Context(), callerFrom(c), groupID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// Activate handles POST /account/activate. Public: the signup token is the
// credential.
func (h *InvitationHandler) Activate(c *gin.Context) {
	var in service.ActivateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	l, err := h.identity.Activate(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, l)
}
