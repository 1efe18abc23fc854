package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tangle-social/backend/internal/util"
)

// SendFriendRequest creates a pending friend request to another user.
// POST /api/v1/friend-requests
func (h *Handlers) SendFriendRequest(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		ReceiverID string `json:"receiver_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "receiver_id is required")
		return
	}

	requestID, err := h.social.SendFriendRequest(c.Request.Context(), userID, req.ReceiverID)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"request_id": requestID,
		"status":     "pending",
	})
}

// GetIncomingFriendRequests returns pending requests addressed to the
// authenticated user, with sender info for display.
// GET /api/v1/friend-requests
func (h *Handlers) GetIncomingFriendRequests(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	requests, err := h.social.ListIncomingRequests(c.Request.Context(), userID)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	type incomingResponse struct {
		ID          string `json:"id"`
		SenderID    string `json:"sender_id"`
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
		AvatarURL   string `json:"avatar_url"`
		CreatedAt   string `json:"created_at"`
	}

	response := make([]incomingResponse, len(requests))
	for i, req := range requests {
		response[i] = incomingResponse{
			ID:          req.ID,
			SenderID:    req.SenderID,
			Username:    req.Sender.Username,
			DisplayName: req.Sender.DisplayName,
			AvatarURL:   req.Sender.AvatarURL,
			CreatedAt:   req.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": response,
		"count":    len(response),
	})
}

// GetSentFriendRequests returns pending requests the user has sent.
// GET /api/v1/friend-requests/sent
func (h *Handlers) GetSentFriendRequests(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	requests, err := h.social.ListSentRequests(c.Request.Context(), userID)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	type sentResponse struct {
		ID          string `json:"id"`
		ReceiverID  string `json:"receiver_id"`
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
		AvatarURL   string `json:"avatar_url"`
		CreatedAt   string `json:"created_at"`
	}

	response := make([]sentResponse, len(requests))
	for i, req := range requests {
		response[i] = sentResponse{
			ID:          req.ID,
			ReceiverID:  req.ReceiverID,
			Username:    req.Receiver.Username,
			DisplayName: req.Receiver.DisplayName,
			AvatarURL:   req.Receiver.AvatarURL,
			CreatedAt:   req.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": response,
		"count":    len(response),
	})
}

// GetFriendRequestCount returns the pending-request badge count.
// GET /api/v1/friend-requests/count
func (h *Handlers) GetFriendRequestCount(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	count, err := h.social.PendingRequestCount(c.Request.Context(), userID)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// AcceptFriendRequest accepts a pending request addressed to the user.
// POST /api/v1/friend-requests/:id/accept
func (h *Handlers) AcceptFriendRequest(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.social.AcceptFriendRequest(c.Request.Context(), c.Param("id"), userID); err != nil {
		util.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "accepted",
		"message": "Friend request accepted",
	})
}

// RejectFriendRequest rejects a pending request addressed to the user.
// POST /api/v1/friend-requests/:id/reject
func (h *Handlers) RejectFriendRequest(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.social.RejectFriendRequest(c.Request.Context(), c.Param("id"), userID); err != nil {
		util.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "rejected",
		"message": "Friend request rejected",
	})
}

// CancelFriendRequest cancels a pending request the user sent.
// DELETE /api/v1/friend-requests/:id
func (h *Handlers) CancelFriendRequest(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.social.CancelSentRequest(c.Request.Context(), c.Param("id"), userID); err != nil {
		util.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "cancelled",
		"message": "Friend request cancelled",
	})
}

// GetFriendRequestStatus checks for a pending request between the user
// and another user, in either direction.
// GET /api/v1/users/:id/friend-request-status
func (h *Handlers) GetFriendRequestStatus(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	otherID := c.Param("id")
	ctx := c.Request.Context()

	if req, err := h.social.RequestBetween(ctx, userID, otherID); err != nil {
		util.RespondWithError(c, err)
		return
	} else if req != nil {
		c.JSON(http.StatusOK, gin.H{"status": "sent", "request_id": req.ID})
		return
	}

	if req, err := h.social.RequestBetween(ctx, otherID, userID); err != nil {
		util.RespondWithError(c, err)
		return
	} else if req != nil {
		c.JSON(http.StatusOK, gin.H{"status": "received", "request_id": req.ID})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "none"})
}
