package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"whereiscurtis/internal/service"

	"github.com/gin-gonic/gin"
)

type DownloadHandler struct {
	service service.ExportService
}

func NewDownloadHandler(service service.ExportService) *DownloadHandler {
	return &DownloadHandler{service: service}
}

// Download выгружает историю событий файлом (json, csv или xlsx).
func (h *DownloadHandler) Download(c *gin.Context) {
	ctx := c.Request.Context()

	format := c.DefaultQuery("format", "json")
	startTime := parseInt64Query(c, "from")
	endTime := parseInt64Query(c, "to")

	file, err := h.service.ExportEvents(ctx, format, startTime, endTime)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to export events",
			"message": err.Error(),
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

func parseInt64Query(c *gin.Context, key string) *int64 {
	value := c.Query(key)
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil
	}
	return &parsed
}
