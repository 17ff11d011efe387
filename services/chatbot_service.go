package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"clinic-assistant/database"
	"clinic-assistant/models"
	"clinic-assistant/utils"
)

// ErrEmptyMessage is returned when a turn carries no text.
var ErrEmptyMessage = errors.New("message is empty")

// ChatbotService runs one chat turn end to end: it loads the session,
// classifies the message, advances the conversation context and stores
// the result.
type ChatbotService struct {
	store      database.Store
	classifier *utils.IntentClassifier
	extractor  *utils.EntityExtractor
	responder  *ResponseGenerator
	clinic     models.ClinicInfo
	sessionTTL time.Duration
	now        func() time.Time
	locks      *sessionLocks
}

func NewChatbotService(store database.Store, table *utils.PatternTable, clinic models.ClinicInfo, sessionTTL time.Duration) *ChatbotService {
	return &ChatbotService{
		store:      store,
		classifier: utils.NewIntentClassifier(table),
		extractor:  utils.NewEntityExtractor(table),
		responder:  NewResponseGenerator(clinic),
		clinic:     clinic,
		sessionTTL: sessionTTL,
		now:        time.Now,
		locks:      newSessionLocks(),
	}
}

func (s *ChatbotService) ProcessMessage(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	channel := req.Channel
	if channel == "" {
		channel = models.ChannelWeb
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	now := s.now()

	session, err := s.store.GetSession(ctx, sessionID)
	switch {
	case errors.Is(err, database.ErrSessionNotFound):
		// Turns left over from an expired session must not show up in
		// the history of the new one.
		if err := s.store.DeleteSession(ctx, sessionID); err != nil && !errors.Is(err, database.ErrSessionNotFound) {
			return nil, fmt.Errorf("failed to clear expired session: %w", err)
		}
		session = &models.ConversationSession{
			SessionID: sessionID,
			UserID:    req.UserID,
			Channel:   channel,
			CreatedAt: now,
		}
	case err != nil:
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	entities := s.extractor.Extract(text)
	intent := s.classifier.ClassifyIntent(text)
	intent = continueBooking(session.Context, intent, entities)

	next := UpdateConversationContextAt(session.Context, text, intent, entities, now)
	reply := s.responder.GenerateResponse(intent, next)
	suggestions := GenerateSuggestions(intent, next)

	session.Context = next
	session.LastActivity = now
	session.ExpiresAt = now.Add(s.sessionTTL)
	if req.UserID != "" {
		session.UserID = req.UserID
	}
	if err := s.store.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	record := &models.Message{
		SessionID:   sessionID,
		UserMessage: text,
		BotResponse: reply,
		Intent:      intent,
		Entities:    entities,
		Suggestions: suggestions,
		Timestamp:   now,
		UserID:      req.UserID,
		Channel:     channel,
	}
	if err := s.store.SaveMessage(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	if intent == models.IntentEmergencyInquiry {
		log.Printf("Emergency inquiry on session %s", sessionID)
	}

	return &models.ChatResponse{
		SessionID:    sessionID,
		Response:     reply,
		Intent:       intent,
		Entities:     entities,
		Suggestions:  suggestions,
		Actions:      s.buildActions(intent, suggestions),
		ResponseType: models.ResponseTypeText,
	}, nil
}

// GetHistory returns up to limit of the latest turns of a session, oldest
// first.
func (s *ChatbotService) GetHistory(ctx context.Context, sessionID string, limit int) ([]models.Message, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	messages, err := s.store.GetMessages(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return messages, nil
}

// ResetSession forgets a session and its history.
func (s *ChatbotService) ResetSession(ctx context.Context, sessionID string) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	return s.store.DeleteSession(ctx, sessionID)
}

func (s *ChatbotService) SupportedIntents() []models.MessageIntent {
	return append([]models.MessageIntent(nil), models.AllIntents...)
}

// continueBooking keeps a booking going when the user answers a booking
// question with a bare date, time, specialty or doctor.
func continueBooking(prev models.ConversationContext, intent models.MessageIntent, e models.Entities) models.MessageIntent {
	if intent != models.IntentGeneralInquiry || !prev.BookingInProgress {
		return intent
	}
	if e.Date != "" || e.Time != "" || e.Specialty != "" || e.DoctorName != "" {
		return models.IntentBookingAppointment
	}
	return intent
}

func (s *ChatbotService) buildActions(intent models.MessageIntent, suggestions []string) []models.Action {
	var actions []models.Action

	if intent == models.IntentEmergencyInquiry {
		actions = append(actions,
			models.Action{
				Type:    models.ActionCall,
				Label:   "اتصل بالإسعاف",
				ID:      "call_emergency",
				Payload: map[string]interface{}{"number": s.clinic.EmergencyNumber},
			},
			models.Action{
				Type:    models.ActionCall,
				Label:   "اتصل بالعيادة",
				ID:      "call_clinic",
				Payload: map[string]interface{}{"number": s.clinic.Phone},
			},
		)
	}

	for i, suggestion := range suggestions {
		actions = append(actions, models.Action{
			Type:    models.ActionQuickReply,
			Label:   suggestion,
			ID:      fmt.Sprintf("suggestion_%d", i+1),
			Payload: map[string]interface{}{"message": suggestion},
		})
	}
	return actions
}
