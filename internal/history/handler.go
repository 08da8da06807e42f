// internal/history/handler.go
package history

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"paperforge/internal/common/logger"
)

// Handler exposes the history surface over HTTP. The search index is
// optional; its routes degrade gracefully when it is absent.
type Handler struct {
	store  *Store
	search *SearchIndex
	logger logger.Logger
}

func NewHandler(store *Store, search *SearchIndex, log logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{store: store, search: search, logger: log}
}

// Register mounts the history routes on the router.
func (h *Handler) Register(r *gin.Engine) {
	r.POST("/api/history", h.savePaper)
	r.GET("/api/history", h.listPapers)
	r.GET("/api/history/search", h.searchPapers)
	r.GET("/api/profile/:userID/complete", h.profileComplete)
}

func (h *Handler) savePaper(c *gin.Context) {
	var paper Paper
	if err := c.ShouldBindJSON(&paper); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid paper payload"})
		return
	}
	if paper.UserID == "" || paper.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and content are required"})
		return
	}

	if err := h.store.SavePaper(c.Request.Context(), &paper); err != nil {
		h.logger.Error("save paper failed", map[string]interface{}{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save paper"})
		return
	}

	if h.search != nil {
		if err := h.search.IndexPaper(c.Request.Context(), &paper); err != nil {
			// The paper is saved; a missed index entry is only a search gap.
			h.logger.Warn("paper indexing failed", map[string]interface{}{
				"paperId": paper.ID,
				"error":   err.Error(),
			})
		}
	}

	c.JSON(http.StatusCreated, paper)
}

func (h *Handler) listPapers(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	papers, err := h.store.ListPapers(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.Error("list papers failed", map[string]interface{}{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list papers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"papers": papers})
}

func (h *Handler) searchPapers(c *gin.Context) {
	if h.search == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search is not enabled"})
		return
	}

	userID := c.Query("userId")
	query := c.Query("q")
	if userID == "" || query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and q are required"})
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	papers, err := h.search.SearchPapers(c.Request.Context(), userID, query, size)
	if err != nil {
		h.logger.Error("paper search failed", map[string]interface{}{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"papers": papers})
}

func (h *Handler) profileComplete(c *gin.Context) {
	complete, err := h.store.IsProfileComplete(c.Request.Context(), c.Param("userID"))
	if err != nil {
		h.logger.Error("profile check failed", map[string]interface{}{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"complete": complete})
}
