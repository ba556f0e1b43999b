package ginserver

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"academy/internal/infra/obs"
	"academy/internal/infra/storage/memory"
)

// Broadcaster fans a freshly stored message out to live listeners.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg memory.Message, payload []byte) error
}

type ChatHandler struct {
	Store       *memory.Academy
	Broadcaster []Broadcaster
	Now         func() time.Time
	Logger      *slog.Logger
}

type sendRequest struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Text       string `json:"text"`
}

type markReadRequest struct {
	UserID      string `json:"userId"`
	OtherUserID string `json:"otherUserId"`
}

func (h ChatHandler) Conversations(c *gin.Context) {
	p, ok := h.requireSelf(c, c.Param("userId"))
	if !ok {
		return
	}
	summaries := h.Store.Conversations(p.ID)
	items := make([]gin.H, 0, len(summaries))
	for _, s := range summaries {
		last, err := extJSON(s.Last)
		if err != nil {
			h.internalError(c, "render conversation", err)
			return
		}
		items = append(items, gin.H{"otherUserId": s.OtherUserID, "lastMessage": last, "unreadCount": s.Unread})
	}
	c.JSON(http.StatusOK, gin.H{"conversations": items})
}

func (h ChatHandler) Thread(c *gin.Context) {
	p, ok := h.requireSelf(c, c.Param("userId"))
	if !ok {
		return
	}
	messages, err := extJSONList(h.Store.Thread(p.ID, c.Param("otherUserId")))
	if err != nil {
		h.internalError(c, "render thread", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"messages": messages, "count": len(messages)}})
}

func (h ChatHandler) Send(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	sender := strings.TrimSpace(req.SenderID)
	if sender == "" {
		sender = p.ID
	}
	if sender != p.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot send as another user"})
		return
	}
	receiver, text := strings.TrimSpace(req.ReceiverID), strings.TrimSpace(req.Text)
	if receiver == "" || text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receiverId and text are required"})
		return
	}
	if _, err := h.Store.UserByID(receiver); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "receiver not found"})
		return
	}
	msg := h.Store.AddMessage(sender, receiver, text, h.now())
	payload, err := extJSON(msg)
	if err != nil {
		h.internalError(c, "render message", err)
		return
	}
	log := obs.LoggerFrom(c.Request.Context(), h.Logger)
	for _, b := range h.Broadcaster {
		if err := b.Broadcast(c.Request.Context(), msg, payload); err != nil && log != nil {
			log.Warn("broadcast message", "id", msg.ID.Hex(), "error", err)
		}
	}
	c.JSON(http.StatusCreated, gin.H{"message": payload})
}

func (h ChatHandler) MarkRead(c *gin.Context) {
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	p, ok := h.requireSelf(c, req.UserID)
	if !ok {
		return
	}
	if strings.TrimSpace(req.OtherUserID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "otherUserId is required"})
		return
	}
	n := h.Store.MarkRead(p.ID, req.OtherUserID, h.now())
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

// requireSelf allows only the signed-in user to act on userID.
func (h ChatHandler) requireSelf(c *gin.Context, userID string) (principal, bool) {
	p, ok := requireAuth(c)
	if !ok {
		return principal{}, false
	}
	if userID = strings.TrimSpace(userID); userID != "" && userID != p.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return principal{}, false
	}
	return p, true
}

func (h ChatHandler) internalError(c *gin.Context, op string, err error) {
	if log := obs.LoggerFrom(c.Request.Context(), h.Logger); log != nil {
		log.Error(op, "error", err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func (h ChatHandler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}
