package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gurkanbulca/grievanceportal/internal/service"
)

type ChatbotHandler struct {
	chatbotService *service.ChatbotService
	logger         *zap.Logger
}

func NewChatbotHandler(chatbotService *service.ChatbotService, logger *zap.Logger) *ChatbotHandler {
	return &ChatbotHandler{
		chatbotService: chatbotService,
		logger:         logger.With(zap.String("handler", "chatbot")),
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

// Chat forwards one message to the counselor and returns its reply.
func (ch *ChatbotHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	reply, err := ch.chatbotService.Respond(c.Request.Context(), req.Message)
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message})
		return
	}
	if err != nil {
		ch.logger.Error("Chatbot failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": service.ChatbotFallback})
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": reply})
}
