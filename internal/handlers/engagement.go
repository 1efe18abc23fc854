package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tangle-social/backend/internal/engagement"
	"github.com/tangle-social/backend/internal/util"
)

// TogglePostLike likes or unlikes a post for the current user.
// POST /api/v1/posts/:id/like
func (h *Handlers) TogglePostLike(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	result, err := h.engagement.ToggleLike(c.Request.Context(), userID, c.Param("id"), engagement.TargetPost)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"liked": result.Active,
		"count": result.Count,
	})
}

// ToggleCommentLike likes or unlikes a comment for the current user.
// POST /api/v1/comments/:id/like
func (h *Handlers) ToggleCommentLike(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	result, err := h.engagement.ToggleLike(c.Request.Context(), userID, c.Param("id"), engagement.TargetComment)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"liked": result.Active,
		"count": result.Count,
	})
}

// ToggleSavePost saves or unsaves a post for the current user.
// POST /api/v1/posts/:id/save
func (h *Handlers) ToggleSavePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	result, err := h.engagement.ToggleSave(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"saved": result.Active,
		"count": result.Count,
	})
}

// VotePoll casts or migrates the user's vote on a post's poll and returns
// the updated snapshot.
// POST /api/v1/posts/:id/poll/vote
func (h *Handlers) VotePoll(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		OptionIndex *int `json:"option_index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "option_index is required")
		return
	}

	results, err := h.engagement.VotePoll(c.Request.Context(), userID, c.Param("id"), *req.OptionIndex)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// GetPollResults returns the poll snapshot for a post.
// GET /api/v1/posts/:id/poll
func (h *Handlers) GetPollResults(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	results, err := h.engagement.GetPollResults(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}
