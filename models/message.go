package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageChannel represents the communication channel
type MessageChannel string

const (
	ChannelWeb       MessageChannel = "web"
	ChannelWebSocket MessageChannel = "websocket"
	ChannelWhatsApp  MessageChannel = "whatsapp"
)

// Message is one stored chat turn.
type Message struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID   string             `bson:"session_id" json:"session_id"`
	UserMessage string             `bson:"user_message" json:"user_message"`
	BotResponse string             `bson:"bot_response" json:"bot_response"`
	Intent      MessageIntent      `bson:"intent" json:"intent"`
	Entities    Entities           `bson:"entities" json:"entities"`
	Suggestions []string           `bson:"suggestions,omitempty" json:"suggestions,omitempty"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
	UserID      string             `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Channel     MessageChannel     `bson:"channel,omitempty" json:"channel,omitempty"`
}

type ChatRequest struct {
	Message   string         `json:"message" binding:"required"`
	SessionID string         `json:"session_id"`
	UserID    string         `json:"user_id,omitempty"`
	Channel   MessageChannel `json:"channel,omitempty"`
}

type ChatResponse struct {
	SessionID    string              `json:"session_id"`
	Response     string              `json:"response"`
	Intent       MessageIntent       `json:"intent"`
	Entities     Entities            `json:"entities"`
	Suggestions  []string            `json:"suggestions"`
	Actions      []Action            `json:"actions,omitempty"`
	ResponseType ResponseType        `json:"response_type,omitempty"`
	Interactive  *InteractiveMessage `json:"interactive,omitempty"`
}

// ResponseType for different message types
type ResponseType string

const (
	ResponseTypeText        ResponseType = "text"
	ResponseTypeInteractive ResponseType = "interactive"
)

// Action is a client-side affordance attached to a reply: a suggestion chip
// or a phone call button.
type Action struct {
	Type        string                 `json:"type"`
	Label       string                 `json:"label"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	Description string                 `json:"description,omitempty"`
	ID          string                 `json:"id,omitempty"`
}

const (
	ActionQuickReply = "quick_reply"
	ActionCall       = "call"
)

// InteractiveMessage for WhatsApp interactive messages
type InteractiveMessage struct {
	Type   string             `json:"type"` // "list" or "button"
	Header *MessageHeader     `json:"header,omitempty"`
	Body   *InteractiveBody   `json:"body"`
	Footer *InteractiveBody   `json:"footer,omitempty"`
	Action *InteractiveAction `json:"action"`
}

type InteractiveBody struct {
	Text string `json:"text"`
}

type MessageHeader struct {
	Type string `json:"type"` // "text"
	Text string `json:"text,omitempty"`
}

type InteractiveAction struct {
	Buttons  []InteractiveButton `json:"buttons,omitempty"`
	Button   string              `json:"button,omitempty"` // For list messages
	Sections []Section           `json:"sections,omitempty"`
}

type InteractiveButton struct {
	Type  string       `json:"type"` // "reply"
	Reply *ButtonReply `json:"reply"`
}

type ButtonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Section struct {
	Title string     `json:"title,omitempty"`
	Rows  []ListItem `json:"rows"`
}

type ListItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// WhatsApp Webhook Models
type WhatsAppWebhookData struct {
	Object string          `json:"object"`
	Entry  []WhatsAppEntry `json:"entry"`
}

type WhatsAppEntry struct {
	ID      string           `json:"id"`
	Changes []WhatsAppChange `json:"changes"`
}

type WhatsAppChange struct {
	Field string        `json:"field"`
	Value WhatsAppValue `json:"value"`
}

type WhatsAppValue struct {
	MessagingProduct string            `json:"messaging_product"`
	Metadata         WhatsAppMetadata  `json:"metadata"`
	Messages         []WhatsAppMessage `json:"messages,omitempty"`
	Statuses         []WhatsAppStatus  `json:"statuses,omitempty"`
	Contacts         []WhatsAppContact `json:"contacts,omitempty"`
}

type WhatsAppMetadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type WhatsAppMessage struct {
	From        string                    `json:"from"`
	ID          string                    `json:"id"`
	Timestamp   string                    `json:"timestamp"`
	Type        string                    `json:"type"`
	Text        *WhatsAppText             `json:"text,omitempty"`
	Interactive *WhatsAppInteractiveReply `json:"interactive,omitempty"`
	Button      *WhatsAppQuickReply       `json:"button,omitempty"`
}

// UserText returns the text a user typed or the title of the option they
// tapped. Empty for media and other message types.
func (m WhatsAppMessage) UserText() string {
	switch m.Type {
	case "text":
		if m.Text != nil {
			return m.Text.Body
		}
	case "interactive":
		if m.Interactive == nil {
			return ""
		}
		if m.Interactive.ButtonReply != nil {
			return m.Interactive.ButtonReply.Title
		}
		if m.Interactive.ListReply != nil {
			return m.Interactive.ListReply.Title
		}
	case "button":
		if m.Button != nil {
			return m.Button.Text
		}
	}
	return ""
}

type WhatsAppText struct {
	Body string `json:"body"`
}

type WhatsAppInteractiveReply struct {
	Type        string               `json:"type"`
	ListReply   *WhatsAppListReply   `json:"list_reply,omitempty"`
	ButtonReply *WhatsAppButtonReply `json:"button_reply,omitempty"`
}

type WhatsAppListReply struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type WhatsAppButtonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// WhatsAppQuickReply is the payload of a template quick-reply button.
type WhatsAppQuickReply struct {
	Payload string `json:"payload"`
	Text    string `json:"text"`
}

type WhatsAppContact struct {
	Profile WhatsAppProfile `json:"profile"`
	WaID    string          `json:"wa_id"`
}

type WhatsAppProfile struct {
	Name string `json:"name"`
}

type WhatsAppStatus struct {
	ID          string  `json:"id"`
	RecipientID string  `json:"recipient_id"`
	Status      string  `json:"status"`
	Timestamp   string  `json:"timestamp"`
	Errors      []Error `json:"errors,omitempty"`
}

type Error struct {
	Code    int    `json:"code"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// WhatsApp Send Message Models
type WhatsAppSendMessage struct {
	MessagingProduct string              `json:"messaging_product"`
	RecipientType    string              `json:"recipient_type"`
	To               string              `json:"to"`
	Type             string              `json:"type"`
	Text             *WhatsAppText       `json:"text,omitempty"`
	Interactive      *InteractiveMessage `json:"interactive,omitempty"`
}

// Service Status Model
type WhatsAppServiceStatus struct {
	Enabled           bool      `json:"enabled"`
	LastMessageSent   time.Time `json:"last_message_sent"`
	MessageCountToday int       `json:"message_count_today"`
	TotalMessages     int64     `json:"total_messages"`
}

// ConversationSession is the persisted envelope around a ConversationContext.
type ConversationSession struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	SessionID    string              `bson:"session_id" json:"session_id"`
	UserID       string              `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Channel      MessageChannel      `bson:"channel" json:"channel"`
	Context      ConversationContext `bson:"context" json:"context"`
	LastActivity time.Time           `bson:"last_activity" json:"last_activity"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
	ExpiresAt    time.Time           `bson:"expires_at" json:"expires_at"`
}

// Clone returns a deep copy of the session.
func (s ConversationSession) Clone() ConversationSession {
	out := s
	out.Context = s.Context.Clone()
	return out
}

// Helper function to convert Action to WhatsApp format
func (a Action) ToWhatsAppButton() InteractiveButton {
	return InteractiveButton{
		Type: "reply",
		Reply: &ButtonReply{
			ID:    a.ID,
			Title: truncateRunes(a.Label, 20),
		},
	}
}

// Helper function to convert Action to WhatsApp list item
func (a Action) ToWhatsAppListItem() ListItem {
	return ListItem{
		ID:          a.ID,
		Title:       truncateRunes(a.Label, 24),
		Description: truncateRunes(a.Description, 72),
	}
}

// QuickReplies returns only the suggestion actions.
func (cr ChatResponse) QuickReplies() []Action {
	var out []Action
	for _, a := range cr.Actions {
		if a.Type == ActionQuickReply {
			out = append(out, a)
		}
	}
	return out
}

// NeedsInteractiveFormat reports whether the reply has tappable options.
func (cr ChatResponse) NeedsInteractiveFormat() bool {
	return len(cr.QuickReplies()) > 0 || cr.Interactive != nil
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
