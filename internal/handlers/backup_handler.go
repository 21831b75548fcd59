package handlers

import (
	"net/http"
	"time"

	"whereiscurtis/internal/service"

	"github.com/gin-gonic/gin"
)

type BackupHandler struct {
	service service.BackupService
}

func NewBackupHandler(service service.BackupService) *BackupHandler {
	return &BackupHandler{service: service}
}

// RunBackup — ручной тик бэкапа. Пропуски и неудачи отправки приходят
// как 200 со структурным итогом, 5xx только на внутренних ошибках стора.
func (h *BackupHandler) RunBackup(c *gin.Context) {
	ctx := c.Request.Context()

	outcome, err := h.service.RunBackupIfDue(ctx, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "backup tick failed",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, outcome)
}
