// Package handlers is the thin HTTP edge over the relationship ledger,
// engagement toggler and notification feed. It binds parameters and maps
// errors; all state transitions live in the services.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tangle-social/backend/internal/database"
	"github.com/tangle-social/backend/internal/engagement"
	"github.com/tangle-social/backend/internal/notify"
	"github.com/tangle-social/backend/internal/social"
)

// Handlers holds the service dependencies for all routes.
type Handlers struct {
	social     *social.Service
	engagement *engagement.Service
	notify     *notify.Service
}

// NewHandlers creates the handler set.
func NewHandlers(socialSvc *social.Service, engagementSvc *engagement.Service, notifySvc *notify.Service) *Handlers {
	return &Handlers{
		social:     socialSvc,
		engagement: engagementSvc,
		notify:     notifySvc,
	}
}

// Register wires all authenticated API routes onto the group. The caller
// attaches the auth middleware.
func (h *Handlers) Register(api *gin.RouterGroup) {
	requests := api.Group("/friend-requests")
	{
		requests.POST("", h.SendFriendRequest)
		requests.GET("", h.GetIncomingFriendRequests)
		requests.GET("/sent", h.GetSentFriendRequests)
		requests.GET("/count", h.GetFriendRequestCount)
		requests.POST("/:id/accept", h.AcceptFriendRequest)
		requests.POST("/:id/reject", h.RejectFriendRequest)
		requests.DELETE("/:id", h.CancelFriendRequest)
	}

	friends := api.Group("/friends")
	{
		friends.GET("", h.GetFriends)
		friends.DELETE("/:id", h.Unfriend)
	}

	users := api.Group("/users")
	{
		users.POST("/:id/follow", h.FollowUser)
		users.DELETE("/:id/follow", h.UnfollowUser)
		users.GET("/:id/follow-status", h.GetFollowStatus)
		users.GET("/:id/friend-request-status", h.GetFriendRequestStatus)
		users.GET("/:id/followers", h.GetFollowers)
		users.GET("/:id/following", h.GetFollowing)
	}

	posts := api.Group("/posts")
	{
		posts.POST("/:id/like", h.TogglePostLike)
		posts.POST("/:id/save", h.ToggleSavePost)
		posts.POST("/:id/poll/vote", h.VotePoll)
		posts.GET("/:id/poll", h.GetPollResults)
	}

	api.POST("/comments/:id/like", h.ToggleCommentLike)

	notifications := api.Group("/notifications")
	{
		notifications.GET("", h.GetNotifications)
		notifications.GET("/unread-count", h.GetUnreadNotificationCount)
		notifications.POST("/read-all", h.MarkAllNotificationsRead)
		notifications.POST("/:id/read", h.MarkNotificationRead)
		notifications.DELETE("/:id", h.DeleteNotification)
	}
}

// Health reports service liveness and database connectivity.
// GET /health
func (h *Handlers) Health(c *gin.Context) {
	status := "ok"
	code := http.StatusOK
	if err := database.Health(); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"service":   "tangle-backend",
	})
}
