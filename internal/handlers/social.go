package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tangle-social/backend/internal/util"
)

// GetFriends returns the user's friends with display attributes.
// GET /api/v1/friends
func (h *Handlers) GetFriends(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	friends, err := h.social.ListFriends(c.Request.Context(), userID)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"friends": friends,
		"count":   len(friends),
	})
}

// Unfriend removes the friendship with another user. Idempotent.
// DELETE /api/v1/friends/:id
func (h *Handlers) Unfriend(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.social.Unfriend(c.Request.Context(), userID, c.Param("id")); err != nil {
		util.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "unfriended"})
}

// FollowUser creates a follow edge to another user.
// POST /api/v1/users/:id/follow
func (h *Handlers) FollowUser(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.social.FollowUser(c.Request.Context(), userID, c.Param("id")); err != nil {
		util.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "following"})
}

// UnfollowUser removes the follow edge to another user.
// DELETE /api/v1/users/:id/follow
func (h *Handlers) UnfollowUser(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.social.UnfollowUser(c.Request.Context(), userID, c.Param("id")); err != nil {
		util.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "unfollowed"})
}

// GetFollowStatus returns the two-way follow relationship between the
// user and another user.
// GET /api/v1/users/:id/follow-status
func (h *Handlers) GetFollowStatus(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	status, err := h.social.GetFollowStatus(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// GetFollowers returns the users following :id.
// GET /api/v1/users/:id/followers
func (h *Handlers) GetFollowers(c *gin.Context) {
	if _, ok := util.GetUserIDFromContext(c); !ok {
		return
	}

	followers, err := h.social.ListFollowers(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"followers": followers,
		"count":     len(followers),
	})
}

// GetFollowing returns the users :id follows.
// GET /api/v1/users/:id/following
func (h *Handlers) GetFollowing(c *gin.Context) {
	if _, ok := util.GetUserIDFromContext(c); !ok {
		return
	}

	following, err := h.social.ListFollowing(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"following": following,
		"count":     len(following),
	})
}
