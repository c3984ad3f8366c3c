package ranking

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"zooguide/pkg/models"
)

type Handler struct {
	Cache *Cache
}

func NewHandler(cache *Cache) *Handler {
	return &Handler{Cache: cache}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ranking", h.get) // GET /api/ranking
}

func (h *Handler) get(c *gin.Context) {
	snap := h.Cache.Load()
	if snap == nil {
		c.JSON(http.StatusOK, gin.H{"data": []models.RankingEntry{}, "lastUpdated": nil})
		return
	}
	entries := snap.Entries
	if entries == nil {
		entries = []models.RankingEntry{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":        entries,
		"lastUpdated": snap.LastUpdated.UTC().Format(time.RFC3339),
	})
}
