package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"homophily-study/internal/domain"
	"homophily-study/internal/service"
)

// ChatHandler mantiene dependencias para los endpoints de conversacion.
type ChatHandler struct {
	logger *zap.Logger
	chat   *service.ChatService
}

func NewChatHandler(logger *zap.Logger, chat *service.ChatService) *ChatHandler {
	return &ChatHandler{logger: logger, chat: chat}
}

type chatRequest struct {
	ParticipantID string `json:"participant_id"`
	Phase         int    `json:"phase"`
	Message       string `json:"message"`
	BotType       string `json:"bot_type"`
	Topic         struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"topic"`
}

func (r chatRequest) toService() service.ChatRequest {
	return service.ChatRequest{
		ParticipantID: r.ParticipantID,
		Phase:         r.Phase,
		Message:       r.Message,
		BotType:       r.BotType,
		Topic:         domain.Topic{ID: r.Topic.ID, Title: r.Topic.Title},
	}
}

// Chat maneja POST /api/chat (variante bloqueante).
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := h.chat.Send(c.Request.Context(), req.toService())
	if err != nil {
		if errors.Is(err, service.ErrChatInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing participant_id or message"})
			return
		}
		h.logger.Error("chat failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ChatStream maneja POST /api/chat/stream: respuesta como server-sent
// events. Emite data:{"content":...} por fragmento y cierra con
// data:{"done":true,...}; si el upstream falla, el evento terminal es
// data:{"error":...} en lugar de dejar el stream abierto.
func (h *ChatHandler) ChatStream(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat stream request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	svcReq := req.toService()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	result, err := h.chat.Stream(c.Request.Context(), svcReq, func(delta string) error {
		return writeSSE(c, gin.H{"content": delta})
	})
	if err != nil {
		if errors.Is(err, service.ErrChatInvalidInput) {
			// Aun no se escribio nada: el 400 normal sigue disponible.
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing participant_id or message"})
			return
		}
		h.logger.Error("chat stream failed", zap.Error(err))
		_ = writeSSE(c, gin.H{"error": err.Error()})
		return
	}

	_ = writeSSE(c, gin.H{
		"done":          true,
		"message_count": result.MessageCount,
		"phase_complete": result.PhaseComplete,
	})
}

func writeSSE(c *gin.Context, payload gin.H) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}
