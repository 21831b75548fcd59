package handlers

import (
	"net/http"

	"whereiscurtis/internal/models"
	"whereiscurtis/internal/repository"
	"whereiscurtis/internal/service"
	"whereiscurtis/pkg/database"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DebugHandler struct {
	feed      service.FeedService
	cacheRepo repository.CacheRepository
	db        *gorm.DB
	password  string
}

func NewDebugHandler(
	feed service.FeedService,
	cacheRepo repository.CacheRepository,
	db *gorm.DB,
	password string,
) *DebugHandler {
	return &DebugHandler{
		feed:      feed,
		cacheRepo: cacheRepo,
		db:        db,
		password:  password,
	}
}

func (h *DebugHandler) authorized(c *gin.Context) bool {
	password := c.Query("password")
	if h.password == "" || password != h.password {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return false
	}
	return true
}

// Handle разбирает дебаг-операции: replay последнего сырого ответа
// или сброс базы.
func (h *DebugHandler) Handle(c *gin.Context) {
	if !h.authorized(c) {
		return
	}

	ctx := c.Request.Context()

	switch {
	case c.Query("replay") != "":
		messages, err := h.feed.ReplayLast(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "failed to replay last API request",
				"message": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":  "last API response replayed",
			"count":    len(messages),
			"messages": messages,
		})

	case c.Query("reset-database") != "":
		if err := database.Reset(h.db); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "database reset failed",
				"message": err.Error(),
			})
			return
		}
		if err := h.cacheRepo.FlushAll(ctx); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "cache flush failed",
				"message": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "database reset successful"})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "no valid debug operation specified"})
	}
}

// Upload принимает сообщения вручную (ручной импорт истории).
func (h *DebugHandler) Upload(c *gin.Context) {
	if !h.authorized(c) {
		return
	}

	ctx := c.Request.Context()

	var payload struct {
		Messages []models.Event `json:"messages"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil || payload.Messages == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data format: expected messages array"})
		return
	}

	if err := h.feed.ImportMessages(ctx, payload.Messages); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "failed to store messages",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "messages stored",
		"count":   len(payload.Messages),
	})
}
