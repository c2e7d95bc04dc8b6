package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cybertrack/dedup"
	"cybertrack/types"
)

// RegisterDeduplicationRoutes registers deduplication service endpoints.
func RegisterDeduplicationRoutes(r *gin.Engine, deps Deps) {
	g := r.Group("/api/deduplication")
	g.POST("/check", handleCheckDuplicate(deps))
	g.POST("/check-batch", handleCheckBatch(deps))
	g.POST("/process", handleProcessArticle(deps))
	g.GET("/count", handleGetCount(deps))
	g.DELETE("/clear", handleClear(deps))
}

// CheckDuplicateRequest represents the request to check for duplicates
type CheckDuplicateRequest struct {
	Article *types.Article `json:"article" binding:"required"`
}

// CheckBatchRequest represents the request to check a batch of articles
type CheckBatchRequest struct {
	Articles []*types.Article `json:"articles" binding:"required"`
}

// BatchItemResponse is the per-article outcome inside a batch response.
type BatchItemResponse struct {
	URL    string        `json:"url"`
	Result *dedup.Result `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// CheckBatchResponse summarizes a batch check.
type CheckBatchResponse struct {
	Total  int                 `json:"total"`
	Items  []BatchItemResponse `json:"items"`
	Failed int                 `json:"failed"`
}

// ProcessArticleResponse represents the response from processing an
// article (check + save when new).
type ProcessArticleResponse struct {
	Status string        `json:"status"` // "new", "duplicate"
	Result *dedup.Result `json:"result"`
}

func handleCheckDuplicate(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckDuplicateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := deps.Pipeline.Check(c.Request.Context(), req.Article)
		if err != nil {
			respondDedupError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func handleCheckBatch(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckBatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		results := deps.Pipeline.CheckBatch(c.Request.Context(), req.Articles)

		resp := CheckBatchResponse{Total: len(results)}
		resp.Items = make([]BatchItemResponse, len(results))
		for i, r := range results {
			item := BatchItemResponse{Result: r.Result}
			if r.Article != nil {
				item.URL = r.Article.URL
			}
			if r.Err != nil {
				item.Error = r.Err.Error()
				resp.Failed++
			}
			resp.Items[i] = item
		}

		c.JSON(http.StatusOK, resp)
	}
}

func handleProcessArticle(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckDuplicateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := deps.Pipeline.ProcessArticle(c.Request.Context(), req.Article)
		if err != nil {
			respondDedupError(c, err)
			return
		}

		status := "duplicate"
		if result.Verdict == dedup.VerdictNew {
			status = "new"
		}
		c.JSON(http.StatusOK, ProcessArticleResponse{Status: status, Result: result})
	}
}

func handleGetCount(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := deps.Articles.Count(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to count articles: " + err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

func handleClear(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.Articles.Clear(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to clear articles: " + err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "cleared"})
	}
}

// respondDedupError maps core failures to HTTP statuses: invalid input is
// the client's fault, a store outage is a 503 the client may retry.
func respondDedupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, dedup.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case dedup.IsStoreUnavailable(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
