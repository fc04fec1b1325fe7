package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"newsrag/internal/app"
	"newsrag/internal/model"
	"newsrag/internal/transport/http/response"
)

const minSessionIDLen = 10

type ChatHandler struct {
	chatService *app.ChatService
}

type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// MessageView is the API shape of an archived message, with the citation
// list parsed out of storage form.
type MessageView struct {
	ID        string                 `json:"id"`
	Role      string                 `json:"role"`
	Content   string                 `json:"content"`
	Sources   []model.SourceCitation `json:"sources"`
	CreatedAt string                 `json:"created_at"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// StreamMessage answers the message over Server-Sent Events: one chunk frame
// per generated fragment, a complete frame with the citations, then the
// `[DONE]` terminator. Failures surface as a single error frame before the
// terminator.
func (h *ChatHandler) StreamMessage(c *gin.Context) {
	sessionID, ok := sessionIDFromPath(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "message is required")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "stream not supported")
		return
	}

	events := h.chatService.StreamAnswer(c.Request.Context(), sessionID, req.Message)
	for ev := range events {
		frame, err := eventFrame(ev)
		if err != nil || frame == nil {
			continue
		}
		if _, err := c.Writer.Write(frame); err != nil {
			// client gone; the producer stops via request context cancellation
			return
		}
		flusher.Flush()
	}

	if _, err := c.Writer.Write([]byte("data: [DONE]\n\n")); err == nil {
		flusher.Flush()
	}
}

// SendMessage is the synchronous variant, returning the whole answer at once.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	sessionID, ok := sessionIDFromPath(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "message is required")
		return
	}

	answer, sources := h.chatService.Answer(c.Request.Context(), sessionID, req.Message)
	response.OK(c, gin.H{
		"message":    answer,
		"sources":    sources,
		"session_id": sessionID,
	})
}

func (h *ChatHandler) GetHistory(c *gin.Context) {
	sessionID, ok := sessionIDFromPath(c)
	if !ok {
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	messages, err := h.chatService.History(c.Request.Context(), sessionID, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get history failed")
		return
	}

	views := make([]MessageView, 0, len(messages))
	for i := range messages {
		msg := &messages[i]
		sources := msg.SourceCitations()
		if sources == nil {
			sources = []model.SourceCitation{}
		}
		views = append(views, MessageView{
			ID:        msg.MessageID,
			Role:      msg.Role,
			Content:   msg.Content,
			Sources:   sources,
			CreatedAt: msg.CreatedAt.Format(time.RFC3339),
		})
	}
	response.OK(c, gin.H{"messages": views})
}

func (h *ChatHandler) ClearSession(c *gin.Context) {
	sessionID, ok := sessionIDFromPath(c)
	if !ok {
		return
	}

	if err := h.chatService.ClearSession(c.Request.Context(), sessionID); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "clear session failed")
		return
	}
	response.OK(c, gin.H{"cleared_session_id": sessionID})
}

func sessionIDFromPath(c *gin.Context) (string, bool) {
	sessionID := c.Param("sessionID")
	if len(sessionID) < minSessionIDLen {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid session id")
		return "", false
	}
	return sessionID, true
}

// eventFrame renders one stream event as an SSE data frame.
func eventFrame(ev model.StreamEvent) ([]byte, error) {
	var payload interface{}
	switch ev.Type {
	case model.EventChunk:
		payload = gin.H{"type": "chunk", "content": ev.Content}
	case model.EventComplete:
		sources := ev.Sources
		if sources == nil {
			sources = []model.SourceCitation{}
		}
		payload = gin.H{"type": "complete", "sources": sources}
	case model.EventError:
		payload = gin.H{"type": "error", "message": ev.Message}
	default:
		return nil, nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []byte("data: " + string(body) + "\n\n"), nil
}
