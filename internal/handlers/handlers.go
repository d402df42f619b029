package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"crowsnest/internal/evidence"
	"crowsnest/internal/models"
	"crowsnest/internal/pipeline"
	"crowsnest/internal/respond"
	"crowsnest/internal/store"
	"crowsnest/pkg/logging"
)

type Config struct {
	Pipeline   *pipeline.Pipeline
	Store      store.Store
	Translator *respond.Translator
	Logger     logging.Logger
}

// Handlers exposes the search pipeline and stored results over HTTP.
// Store may be nil when no database is configured; read endpoints then
// serve empty results and clear fails loudly.
type Handlers struct {
	pipeline   *pipeline.Pipeline
	store      store.Store
	translator *respond.Translator
	logger     logging.Logger
}

func New(cfg Config) *Handlers {
	return &Handlers{
		pipeline:   cfg.Pipeline,
		store:      cfg.Store,
		translator: cfg.Translator,
		logger:     cfg.Logger,
	}
}

func (h *Handlers) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.POST("/search", h.Search)
	api.GET("/dashboard", h.Dashboard)
	api.GET("/posts/:postId", h.PostByID)
	api.GET("/evidence/:postId", h.Evidence)
	api.GET("/admin-response/:postId", h.AdminResponse)
	api.POST("/factcheck/:postId", h.FactCheck)
	api.POST("/translate", h.Translate)
	api.DELETE("/clear", h.Clear)
}

type searchRequest struct {
	Keyword string `json:"keyword"`
}

// Search runs the full pipeline for a keyword and returns the scored
// posts. Partial failures ride along in the errors field.
func (h *Handlers) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Keyword) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Keyword is required"})
		return
	}

	result := h.pipeline.Run(c.Request.Context(), strings.TrimSpace(req.Keyword))

	resp := gin.H{"success": true, "posts": result.Posts}
	if len(result.Errors) > 0 {
		resp["errors"] = result.Errors
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) Dashboard(c *gin.Context) {
	timeRange := c.DefaultQuery("timeRange", "7d")

	if h.store == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": nil})
		return
	}

	data, err := h.store.Dashboard(c.Request.Context(), timeRange)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build dashboard data")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func (h *Handlers) PostByID(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Post not found"})
		return
	}

	post, err := h.store.GetPostByID(c.Request.Context(), c.Param("postId"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to read post")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Post not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "post": post})
}

func (h *Handlers) Evidence(c *gin.Context) {
	results := []models.EvidenceResult{}
	if h.store != nil {
		stored, err := h.store.GetEvidence(c.Request.Context(), c.Param("postId"))
		if err != nil {
			h.logger.WithError(err).Error("Failed to read evidence")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
		if stored != nil {
			results = stored
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "evidence": results})
}

func (h *Handlers) AdminResponse(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Response not found"})
		return
	}

	text, err := h.store.GetAdminResponse(c.Request.Context(), c.Param("postId"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to read admin response")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if text == "" {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Response not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "response": text})
}

type factCheckRequest struct {
	PostContent string `json:"postContent"`
}

// FactCheck converts the evidence stored for a post into reviewable
// claims. Posts without evidence yield one unverified claim.
func (h *Handlers) FactCheck(c *gin.Context) {
	var req factCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.PostContent) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Post content is required"})
		return
	}

	var stored []models.EvidenceResult
	if h.store != nil {
		var err error
		stored, err = h.store.GetEvidence(c.Request.Context(), c.Param("postId"))
		if err != nil {
			h.logger.WithError(err).Warn("Failed to read evidence for fact-check")
			stored = nil
		}
	}

	result := evidence.FactCheck(strings.TrimSpace(req.PostContent), stored)
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"claims":      result.Claims,
		"hasEvidence": result.HasEvidence,
	})
}

type translateRequest struct {
	Text string `json:"text"`
}

func (h *Handlers) Translate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Text is required"})
		return
	}

	if h.translator == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Translation failed"})
		return
	}

	translated, err := h.translator.Translate(c.Request.Context(), strings.TrimSpace(req.Text))
	if err != nil {
		h.logger.WithError(err).Error("Translation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if translated == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Translation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "translatedText": translated})
}

func (h *Handlers) Clear(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to clear data"})
		return
	}

	if err := h.store.ClearAll(c.Request.Context()); err != nil {
		h.logger.WithError(err).Error("Failed to clear data")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to clear data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "All data cleared successfully"})
}
