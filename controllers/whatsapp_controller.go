package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"clinic-assistant/models"
	"clinic-assistant/services"
)

const (
	webhookTimeout     = 30 * time.Second
	unsupportedMessage = "عذراً، يمكنني حالياً قراءة الرسائل النصية والخيارات فقط."
	failureMessage     = "عذراً، لم أتمكن من معالجة رسالتك. يرجى المحاولة مرة أخرى."
)

type WhatsAppController struct {
	whatsappService *services.WhatsAppService
	chatbotService  *services.ChatbotService
	verifyToken     string
}

func NewWhatsAppController(whatsappService *services.WhatsAppService, chatbotService *services.ChatbotService, verifyToken string) *WhatsAppController {
	return &WhatsAppController{
		whatsappService: whatsappService,
		chatbotService:  chatbotService,
		verifyToken:     verifyToken,
	}
}

// VerifyWebhook handles the webhook verification request from WhatsApp
func (wc *WhatsAppController) VerifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && wc.verifyToken != "" && token == wc.verifyToken {
		c.String(http.StatusOK, challenge)
		return
	}

	c.JSON(http.StatusForbidden, gin.H{"error": "Verification failed"})
}

// HandleWebhook acknowledges the delivery at once and answers the messages
// in the background.
func (wc *WhatsAppController) HandleWebhook(c *gin.Context) {
	var webhookData models.WhatsAppWebhookData

	if err := c.ShouldBindJSON(&webhookData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook data"})
		return
	}

	// The request context ends with this handler.
	ctx := context.WithoutCancel(c.Request.Context())
	go func() {
		ctx, cancel := context.WithTimeout(ctx, webhookTimeout)
		defer cancel()
		wc.ProcessWebhook(ctx, webhookData)
	}()

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

// ProcessWebhook answers every message in a webhook delivery and logs
// delivery statuses.
func (wc *WhatsAppController) ProcessWebhook(ctx context.Context, webhookData models.WhatsAppWebhookData) {
	for _, entry := range webhookData.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			for _, message := range change.Value.Messages {
				wc.handleIncomingMessage(ctx, message)
			}
			for _, status := range change.Value.Statuses {
				handleStatusUpdate(status)
			}
		}
	}
}

func (wc *WhatsAppController) handleIncomingMessage(ctx context.Context, message models.WhatsAppMessage) {
	if err := wc.whatsappService.MarkMessageAsRead(ctx, message.ID); err != nil {
		log.Printf("Failed to mark WhatsApp message %s as read: %v", message.ID, err)
	}

	text := message.UserText()
	if text == "" {
		log.Printf("Unsupported WhatsApp message type %q from %s", message.Type, message.From)
		if err := wc.whatsappService.SendTextMessage(ctx, message.From, unsupportedMessage); err != nil {
			log.Printf("Failed to send WhatsApp reply: %v", err)
		}
		return
	}

	response, err := wc.chatbotService.ProcessMessage(ctx, models.ChatRequest{
		Message:   text,
		SessionID: "whatsapp:" + message.From,
		UserID:    message.From,
		Channel:   models.ChannelWhatsApp,
	})
	if err != nil {
		log.Printf("Failed to process WhatsApp message from %s: %v", message.From, err)
		if err := wc.whatsappService.SendTextMessage(ctx, message.From, failureMessage); err != nil {
			log.Printf("Failed to send WhatsApp reply: %v", err)
		}
		return
	}

	// Errors are logged only; answering them would loop.
	if err := wc.whatsappService.SendChatResponse(ctx, message.From, response); err != nil {
		log.Printf("Failed to send WhatsApp response: %v", err)
	}
}

func handleStatusUpdate(status models.WhatsAppStatus) {
	log.Printf("WhatsApp message %s to %s: %s", status.ID, status.RecipientID, status.Status)

	for _, err := range status.Errors {
		log.Printf("WhatsApp error: %d - %s: %s", err.Code, err.Title, err.Message)
	}
}

// SendMessage sends a message to a specific WhatsApp number (for notifications)
func (wc *WhatsAppController) SendMessage(c *gin.Context) {
	var req struct {
		To      string `json:"to" binding:"required"`
		Message string `json:"message" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	to := services.CleanPhoneNumber(req.To)
	if err := wc.whatsappService.SendTextMessage(c.Request.Context(), to, req.Message); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Failed to send message",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "sent",
		"to":     to,
	})
}

// GetStatus returns WhatsApp service status
func (wc *WhatsAppController) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, wc.whatsappService.GetStatus())
}
