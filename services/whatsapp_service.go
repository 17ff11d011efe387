package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"clinic-assistant/config"
	"clinic-assistant/models"
)

const (
	maxReplyButtons = 3
	maxListRows     = 10
)

// WhatsAppService sends assistant replies through the WhatsApp Cloud API.
type WhatsAppService struct {
	apiURL        string
	apiVersion    string
	accessToken   string
	phoneNumberID string
	httpClient    *http.Client
	now           func() time.Time

	// Status tracking
	statusMu        sync.RWMutex
	lastMessageTime time.Time
	messageCount    int64
	dailyCount      map[string]int
}

func NewWhatsAppService(cfg config.WhatsAppConfig) *WhatsAppService {
	return &WhatsAppService{
		apiURL:        strings.TrimRight(cfg.APIURL, "/"),
		apiVersion:    cfg.APIVersion,
		accessToken:   cfg.AccessToken,
		phoneNumberID: cfg.PhoneNumberID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		now:        time.Now,
		dailyCount: make(map[string]int),
	}
}

// Enabled reports whether credentials for sending are configured.
func (ws *WhatsAppService) Enabled() bool {
	return ws.accessToken != "" && ws.phoneNumberID != ""
}

// SendTextMessage sends a simple text message
func (ws *WhatsAppService) SendTextMessage(ctx context.Context, to string, message string) error {
	payload := models.WhatsAppSendMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               CleanPhoneNumber(to),
		Type:             "text",
		Text: &models.WhatsAppText{
			Body: message,
		},
	}

	return ws.sendRequest(ctx, payload)
}

// SendInteractiveMessage sends an interactive message
func (ws *WhatsAppService) SendInteractiveMessage(ctx context.Context, to string, interactive *models.InteractiveMessage) error {
	payload := models.WhatsAppSendMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               CleanPhoneNumber(to),
		Type:             "interactive",
		Interactive:      interactive,
	}

	return ws.sendRequest(ctx, payload)
}

// SendChatResponse delivers an assistant reply. Up to three quick replies
// become reply buttons, more become a list, none is plain text.
func (ws *WhatsAppService) SendChatResponse(ctx context.Context, to string, resp *models.ChatResponse) error {
	interactive := BuildInteractiveMessage(resp)
	if interactive == nil {
		return ws.SendTextMessage(ctx, to, resp.Response)
	}
	return ws.SendInteractiveMessage(ctx, to, interactive)
}

// BuildInteractiveMessage lays out the quick replies of resp as WhatsApp
// buttons or a list. It returns nil when there is nothing to tap.
func BuildInteractiveMessage(resp *models.ChatResponse) *models.InteractiveMessage {
	replies := resp.QuickReplies()
	if len(replies) == 0 {
		return nil
	}

	body := &models.InteractiveBody{Text: resp.Response}

	if len(replies) <= maxReplyButtons {
		buttons := make([]models.InteractiveButton, 0, len(replies))
		for _, r := range replies {
			buttons = append(buttons, r.ToWhatsAppButton())
		}
		return &models.InteractiveMessage{
			Type:   "button",
			Body:   body,
			Action: &models.InteractiveAction{Buttons: buttons},
		}
	}

	if len(replies) > maxListRows {
		replies = replies[:maxListRows]
	}
	rows := make([]models.ListItem, 0, len(replies))
	for _, r := range replies {
		rows = append(rows, r.ToWhatsAppListItem())
	}
	return &models.InteractiveMessage{
		Type: "list",
		Body: body,
		Action: &models.InteractiveAction{
			Button:   "الخيارات",
			Sections: []models.Section{{Title: "اختر", Rows: rows}},
		},
	}
}

// MarkMessageAsRead marks a message as read
func (ws *WhatsAppService) MarkMessageAsRead(ctx context.Context, messageID string) error {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"status":            "read",
		"message_id":        messageID,
	}

	return ws.sendRequest(ctx, payload)
}

func (ws *WhatsAppService) sendRequest(ctx context.Context, payload interface{}) error {
	if !ws.Enabled() {
		return fmt.Errorf("WhatsApp is not configured")
	}

	url := fmt.Sprintf("%s/%s/%s/messages", ws.apiURL, ws.apiVersion, ws.phoneNumberID)

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+ws.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ws.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errorResp struct {
			Error struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
			log.Printf("WhatsApp API error %d: %s", errorResp.Error.Code, errorResp.Error.Message)
			return fmt.Errorf("WhatsApp API error %d: %s", errorResp.Error.Code, errorResp.Error.Message)
		}
		return fmt.Errorf("WhatsApp API error: status %d: %s", resp.StatusCode, string(body))
	}

	ws.updateMessageStatus()
	return nil
}

// CleanPhoneNumber keeps only digits and turns local Saudi numbers
// (05xxxxxxxx) into international form.
func CleanPhoneNumber(phone string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	cleaned = strings.TrimPrefix(cleaned, "00")
	if len(cleaned) == 10 && strings.HasPrefix(cleaned, "05") {
		cleaned = "966" + cleaned[1:]
	}

	return cleaned
}

func (ws *WhatsAppService) updateMessageStatus() {
	ws.statusMu.Lock()
	defer ws.statusMu.Unlock()

	now := ws.now()
	ws.lastMessageTime = now
	ws.messageCount++

	today := now.Format("2006-01-02")
	for day := range ws.dailyCount {
		if day != today {
			delete(ws.dailyCount, day)
		}
	}
	ws.dailyCount[today]++
}

// GetStatus returns the service status
func (ws *WhatsAppService) GetStatus() models.WhatsAppServiceStatus {
	ws.statusMu.RLock()
	defer ws.statusMu.RUnlock()

	today := ws.now().Format("2006-01-02")

	return models.WhatsAppServiceStatus{
		Enabled:           ws.Enabled(),
		LastMessageSent:   ws.lastMessageTime,
		MessageCountToday: ws.dailyCount[today],
		TotalMessages:     ws.messageCount,
	}
}
