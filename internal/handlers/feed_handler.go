package handlers

import (
	"errors"
	"net/http"

	"whereiscurtis/internal/clients"
	"whereiscurtis/internal/service"

	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	service service.FeedService
}

func NewFeedHandler(service service.FeedService) *FeedHandler {
	return &FeedHandler{service: service}
}

// GetMessages отдает свежие либо кэшированные сообщения трекера.
// Неудачный рефетч не прячется за устаревшими данными: клиент получает
// явную ошибку.
func (h *FeedHandler) GetMessages(c *gin.Context) {
	ctx := c.Request.Context()

	bundle, err := h.service.GetMessages(ctx)
	if err != nil {
		status := http.StatusInternalServerError
		if isUpstreamError(err) {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{
			"error":   "failed to get messages",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, bundle)
}

func isUpstreamError(err error) bool {
	var netErr *clients.NetworkError
	var httpErr *clients.HTTPError
	var parseErr *clients.ParseError
	return errors.As(err, &netErr) || errors.As(err, &httpErr) || errors.As(err, &parseErr)
}
