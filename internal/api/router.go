package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	churchHandler *ChurchHandler,
	milestoneHandler *MilestoneHandler,
	invitationHandler *InvitationHandler,
	cronHandler *CronHandler,
	jwtSecret string,
	cronSecret string,
) *Router {
	r := gin.Default()
	r.Use(MetricsMiddleware())

	// Public
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/account/activate", invitationHandler.Activate)
	r.POST("/invitations/accept", invitationHandler.Accept)
	r.POST("/invitations/decline", invitationHandler.Decline)

	// Cron trigger, guarded by the shared secret
	cron := r.Group("/internal/cron")
	cron.Use(CronAuthMiddleware(cronSecret))
	{
		cron.POST("/reminders", cronHandler.RunReminders)
	}

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.GET("/phases", milestoneHandler.ListPhases)

		auth.PATCH("/churches/:id/status", churchHandler.Transition)
		auth.POST("/churches/bulk-status", churchHandler.BulkTransition)
		auth.GET("/churches/:id/audit", churchHandler.AuditTrail)

		auth.POST("/churches/:id/milestones", milestoneHandler.Create)
		auth.PATCH("/churches/:id/milestones/:mid", milestoneHandler.Edit)
		auth.POST("/churches/:id/milestones/:mid/move-up", milestoneHandler.MoveUp)
		auth.POST("/churches/:id/milestones/:mid/move-down", milestoneHandler.MoveDown)
		auth.DELETE("/churches/:id/milestones/:mid", milestoneHandler.Delete)
		auth.PUT("/churches/:id/milestones/:mid/progress", milestoneHandler.SetProgress)

		auth.POST("/groups/:id/invitations", invitationHandler.Invite)
		auth.DELETE("/groups/:id/invitations", invitationHandler.Cancel)
		auth.DELETE("/groups/:id/co-leader", invitationHandler.RemoveCoLeader)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
