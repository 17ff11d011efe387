package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"clinic-assistant/database"
	"clinic-assistant/models"
	"clinic-assistant/services"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

type ChatbotController struct {
	chatbotService *services.ChatbotService
}

func NewChatbotController(chatbotService *services.ChatbotService) *ChatbotController {
	return &ChatbotController{
		chatbotService: chatbotService,
	}
}

// HandleChat processes chat messages
func (cc *ChatbotController) HandleChat(c *gin.Context) {
	var req models.ChatRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	response, err := cc.chatbotService.ProcessMessage(c.Request.Context(), req)
	if err != nil {
		respondError(c, "Failed to process message", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetChatHistory returns the latest turns of a session.
func (cc *ChatbotController) GetChatHistory(c *gin.Context) {
	sessionID := c.Param("id")
	limit := defaultHistoryLimit

	if limitStr := c.Query("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(l, maxHistoryLimit)
	}

	history, err := cc.chatbotService.GetHistory(c.Request.Context(), sessionID, limit)
	if err != nil {
		respondError(c, "Failed to retrieve chat history", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"history":    history,
		"count":      len(history),
	})
}

// ClearSession forgets a session and its history.
func (cc *ChatbotController) ClearSession(c *gin.Context) {
	sessionID := c.Param("id")

	if err := cc.chatbotService.ResetSession(c.Request.Context(), sessionID); err != nil {
		respondError(c, "Failed to clear session", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Session cleared successfully",
	})
}

var intentDescriptions = map[models.MessageIntent]string{
	models.IntentBookingAppointment:   "Book an appointment",
	models.IntentCancelAppointment:    "Cancel an appointment",
	models.IntentCheckHours:           "Opening hours",
	models.IntentBillingInquiry:       "Bills, prices and payments",
	models.IntentMedicalRecords:       "Medical records and reports",
	models.IntentSymptomInquiry:       "Describe symptoms",
	models.IntentDoctorInquiry:        "Doctors and specialties",
	models.IntentInsuranceInquiry:     "Insurance coverage",
	models.IntentMedicationInquiry:    "Medication and prescriptions",
	models.IntentEmergencyInquiry:     "Emergency assistance",
	models.IntentCovidInquiry:         "COVID-19 tests and vaccines",
	models.IntentTelemedicineInquiry:  "Remote consultations",
	models.IntentLabResultsInquiry:    "Lab results",
	models.IntentSpecialistReferral:   "Specialist referrals",
	models.IntentAuthorizationInquiry: "Insurance pre-authorization",
	models.IntentGreeting:             "Greetings",
	models.IntentThanks:               "Thanks",
	models.IntentGoodbye:              "Ending the conversation",
	models.IntentHelp:                 "What the assistant can do",
	models.IntentGeneralInquiry:       "Anything else",
}

// GetSupportedIntents returns list of supported intents
func (cc *ChatbotController) GetSupportedIntents(c *gin.Context) {
	supported := cc.chatbotService.SupportedIntents()
	intents := make([]gin.H, 0, len(supported))
	for _, intent := range supported {
		intents = append(intents, gin.H{
			"intent":      intent,
			"description": intentDescriptions[intent],
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"intents": intents,
	})
}

func respondError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrEmptyMessage):
		status = http.StatusBadRequest
	case errors.Is(err, database.ErrSessionNotFound):
		status = http.StatusNotFound
	}

	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}
