package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"partnerhub/internal/service"
)

type CronHandler struct {
	reminders *service.ReminderService
}

func NewCronHandler(reminders *service.ReminderService) *CronHandler {
	return &CronHandler{reminders: reminders}
}

// RunReminders handles POST /internal/cron/reminders. The run summary is the
// response body; send failures are reported there, not as an error status.
func (h *CronHandler) RunReminders(c *gin.Context) {
	summary := h.reminders.Run(c.Request.Context())
	c.JSON(http.StatusOK, summary)
}
