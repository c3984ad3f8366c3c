package quiz

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"zooguide/internal/catalog"
)

type Handler struct {
	Catalog *catalog.Catalog
}

func NewHandler(c *catalog.Catalog) *Handler {
	return &Handler{Catalog: c}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/quiz", h.get) // GET /api/quiz
}

func (h *Handler) get(c *gin.Context) {
	quiz, err := Generate(h.Catalog, NewRand())
	if err != nil {
		log.Printf("[quiz] generate failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate quiz: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, quiz)
}
