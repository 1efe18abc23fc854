// Package websocket pushes notifications to connected clients in real
// time. Each connection subscribes to the user's pub/sub channel; the
// persisted Notification row is always the record, the socket is purely
// a delivery optimization.
package websocket

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/tangle-social/backend/internal/cache"
	"github.com/tangle-social/backend/internal/logger"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Handler upgrades HTTP requests to live notification streams.
type Handler struct {
	redis     *cache.RedisClient
	jwtSecret []byte
}

// NewHandler creates a websocket handler.
func NewHandler(redis *cache.RedisClient, jwtSecret []byte) *Handler {
	return &Handler{
		redis:     redis,
		jwtSecret: jwtSecret,
	}
}

// HandleNotifications streams the user's notifications as they are
// published. Authentication is via JWT in the token query param or the
// Authorization header; browsers cannot set headers on websocket dials.
// GET /ws/notifications
func (h *Handler) HandleNotifications(c *gin.Context) {
	userID, err := h.authenticate(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	sub := h.redis.Subscribe(c.Request.Context(), cache.NotificationChannel(userID))
	if sub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live notifications unavailable"})
		return
	}
	defer sub.Close()

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionContextTakeover,
	})
	if err != nil {
		logger.WarnErr("WebSocket upgrade failed", err)
		return
	}
	defer conn.CloseNow()

	logger.Info("Notification stream opened", logger.WithUserID(userID))

	ctx := c.Request.Context()

	// Discard inbound frames so control frames keep being processed; the
	// stream is one-way.
	go func() {
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-sub.Channel():
			if !ok {
				conn.Close(websocket.StatusGoingAway, "subscription closed")
				return
			}
			if err := h.write(ctx, conn, []byte(msg.Payload)); err != nil {
				logger.Debug("Notification stream write failed",
					logger.WithUserID(userID), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		}
	}
}

func (h *Handler) write(ctx context.Context, conn *websocket.Conn, payload []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, payload)
}

func (h *Handler) authenticate(c *gin.Context) (string, error) {
	tokenString := c.Query("token")
	if tokenString == "" {
		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			tokenString = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	if tokenString == "" {
		return "", fmt.Errorf("missing token")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return h.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("invalid token subject")
	}
	return subject, nil
}
