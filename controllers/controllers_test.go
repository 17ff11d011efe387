package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-assistant/config"
	"clinic-assistant/database"
	"clinic-assistant/models"
	"clinic-assistant/services"
	"clinic-assistant/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestChatbot(t *testing.T) (*services.ChatbotService, *database.MemoryStore) {
	t.Helper()
	table, err := utils.LoadPatternTable("")
	require.NoError(t, err)
	store := database.NewMemoryStore()
	return services.NewChatbotService(store, table, models.DefaultClinicInfo(), time.Hour), store
}

func newChatRouter(t *testing.T) *gin.Engine {
	t.Helper()
	svc, _ := newTestChatbot(t)
	cc := NewChatbotController(svc)

	r := gin.New()
	r.POST("/chat", cc.HandleChat)
	r.GET("/intents", cc.GetSupportedIntents)
	r.GET("/sessions/:id/messages", cc.GetChatHistory)
	r.DELETE("/sessions/:id", cc.ClearSession)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleChat(t *testing.T) {
	r := newChatRouter(t)

	w := do(r, http.MethodPost, "/chat", `{"message":"أريد حجز موعد","session_id":"s1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, models.IntentBookingAppointment, resp.Intent)
	assert.NotEmpty(t, resp.Response)
	assert.NotEmpty(t, resp.Suggestions)
}

func TestHandleChat_BadRequests(t *testing.T) {
	r := newChatRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing message", `{"session_id":"s1"}`},
		{"blank message", `{"message":"   "}`},
		{"not json", `hello`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/chat", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}

func TestGetSupportedIntents(t *testing.T) {
	r := newChatRouter(t)

	w := do(r, http.MethodGet, "/intents", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Intents []struct {
			Intent      string `json:"intent"`
			Description string `json:"description"`
		} `json:"intents"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Intents, len(models.AllIntents))
	assert.Equal(t, "booking_appointment", body.Intents[0].Intent)
	for _, i := range body.Intents {
		assert.NotEmpty(t, i.Description, i.Intent)
	}
}

func TestGetChatHistoryAndClear(t *testing.T) {
	r := newChatRouter(t)

	do(r, http.MethodPost, "/chat", `{"message":"مرحبا","session_id":"s1"}`)
	do(r, http.MethodPost, "/chat", `{"message":"شكرا","session_id":"s1"}`)

	w := do(r, http.MethodGet, "/sessions/s1/messages?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Count   int              `json:"count"`
		History []models.Message `json:"history"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, models.IntentThanks, body.History[0].Intent)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/sessions/s1/messages?limit=abc", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/sessions/nope/messages", "").Code)

	assert.Equal(t, http.StatusOK, do(r, http.MethodDelete, "/sessions/s1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/sessions/s1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/sessions/s1/messages", "").Code)
}

func dialWS(t *testing.T, delay time.Duration) *websocket.Conn {
	t.Helper()
	svc, _ := newTestChatbot(t)
	wc := NewWebSocketController(svc, []string{"http://localhost:3000"}, delay)

	r := gin.New()
	r.GET("/ws", wc.HandleWebSocket)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?session_id=ws1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func TestWebSocket_Reply(t *testing.T) {
	conn := dialWS(t, 0)

	require.NoError(t, conn.WriteJSON(gin.H{"message": "شكرا"}))

	var resp models.ChatResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "ws1", resp.SessionID)
	assert.Equal(t, models.IntentThanks, resp.Intent)
}

func TestWebSocket_PacedReplySendsTypingFirst(t *testing.T) {
	conn := dialWS(t, 20*time.Millisecond)

	require.NoError(t, conn.WriteJSON(gin.H{"message": "مرحبا"}))

	var typing map[string]string
	require.NoError(t, conn.ReadJSON(&typing))
	assert.Equal(t, "typing", typing["type"])
	assert.Equal(t, "ws1", typing["session_id"])

	var resp models.ChatResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, models.IntentGreeting, resp.Intent)
}

func TestWebSocket_RejectsForeignOrigin(t *testing.T) {
	svc, _ := newTestChatbot(t)
	wc := NewWebSocketController(svc, []string{"http://localhost:3000"}, 0)
	r := gin.New()
	r.GET("/ws", wc.HandleWebSocket)
	srv := httptest.NewServer(r)
	defer srv.Close()

	header := http.Header{}
	header.Set("Origin", "http://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := sleepContext(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)

	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
}

type fakeGraph struct {
	mu       sync.Mutex
	requests []models.WhatsAppSendMessage
}

func (g *fakeGraph) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var msg models.WhatsAppSendMessage
	_ = json.NewDecoder(r.Body).Decode(&msg)

	g.mu.Lock()
	g.requests = append(g.requests, msg)
	g.mu.Unlock()

	_, _ = w.Write([]byte(`{"success":true}`))
}

func (g *fakeGraph) sent() []models.WhatsAppSendMessage {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []models.WhatsAppSendMessage
	for _, m := range g.requests {
		// Read receipts carry no recipient.
		if m.To != "" {
			out = append(out, m)
		}
	}
	return out
}

func newWhatsAppController(t *testing.T) (*WhatsAppController, *fakeGraph, *database.MemoryStore) {
	t.Helper()
	graph := &fakeGraph{}
	srv := httptest.NewServer(graph)
	t.Cleanup(srv.Close)

	ws := services.NewWhatsAppService(config.WhatsAppConfig{
		APIURL:        srv.URL,
		APIVersion:    "v18.0",
		AccessToken:   "token",
		PhoneNumberID: "12345",
	})
	svc, store := newTestChatbot(t)
	return NewWhatsAppController(ws, svc, "verify-me"), graph, store
}

func webhookWith(messages ...models.WhatsAppMessage) models.WhatsAppWebhookData {
	return models.WhatsAppWebhookData{
		Object: "whatsapp_business_account",
		Entry: []models.WhatsAppEntry{{
			Changes: []models.WhatsAppChange{{
				Field: "messages",
				Value: models.WhatsAppValue{Messages: messages},
			}},
		}},
	}
}

func TestVerifyWebhook(t *testing.T) {
	wc, _, _ := newWhatsAppController(t)
	r := gin.New()
	r.GET("/webhook", wc.VerifyWebhook)

	w := do(r, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=42", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", w.Body.String())

	w = do(r, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=42", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProcessWebhook_RepliesThroughAssistant(t *testing.T) {
	wc, graph, store := newWhatsAppController(t)

	wc.ProcessWebhook(context.Background(), webhookWith(models.WhatsAppMessage{
		From: "966500000001",
		ID:   "wamid.1",
		Type: "text",
		Text: &models.WhatsAppText{Body: "مرحبا"},
	}))

	sent := graph.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "966500000001", sent[0].To)
	assert.Equal(t, "interactive", sent[0].Type)
	require.NotNil(t, sent[0].Interactive)
	// The greeting offers four options, too many for buttons.
	assert.Equal(t, "list", sent[0].Interactive.Type)

	session, err := store.GetSession(context.Background(), "whatsapp:966500000001")
	require.NoError(t, err)
	assert.Equal(t, models.ChannelWhatsApp, session.Channel)
	assert.Equal(t, models.IntentGreeting, session.Context.LastIntent)
}

func TestProcessWebhook_ButtonReplyContinuesSession(t *testing.T) {
	wc, graph, store := newWhatsAppController(t)

	wc.ProcessWebhook(context.Background(), webhookWith(
		models.WhatsAppMessage{From: "966500000002", ID: "wamid.1", Type: "text", Text: &models.WhatsAppText{Body: "أريد حجز موعد"}},
		models.WhatsAppMessage{From: "966500000002", ID: "wamid.2", Type: "interactive", Interactive: &models.WhatsAppInteractiveReply{
			Type:      "list_reply",
			ListReply: &models.WhatsAppListReply{ID: "suggestion_6", Title: "نساء وتوليد"},
		}},
	))

	require.Len(t, graph.sent(), 2)
	session, err := store.GetSession(context.Background(), "whatsapp:966500000002")
	require.NoError(t, err)
	assert.Equal(t, "نساء وتوليد", session.Context.Specialty)
}

func TestProcessWebhook_UnsupportedMessage(t *testing.T) {
	wc, graph, _ := newWhatsAppController(t)

	wc.ProcessWebhook(context.Background(), webhookWith(models.WhatsAppMessage{
		From: "966500000003",
		ID:   "wamid.1",
		Type: "image",
	}))

	sent := graph.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "text", sent[0].Type)
	assert.Equal(t, unsupportedMessage, sent[0].Text.Body)
}

func TestHandleWebhook_Acknowledges(t *testing.T) {
	wc, _, _ := newWhatsAppController(t)
	r := gin.New()
	r.POST("/webhook", wc.HandleWebhook)

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/webhook", `{"object":"whatsapp_business_account","entry":[]}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/webhook", `not json`).Code)
}

func TestWhatsAppAdmin(t *testing.T) {
	wc, graph, _ := newWhatsAppController(t)
	r := gin.New()
	r.POST("/send", wc.SendMessage)
	r.GET("/status", wc.GetStatus)

	w := do(r, http.MethodPost, "/send", `{"to":"0501234567","message":"تذكير بموعدك"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "966501234567")
	require.Len(t, graph.sent(), 1)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/send", `{"to":"0501234567"}`).Code)

	w = do(r, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	var status models.WhatsAppServiceStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status.Enabled)
	assert.EqualValues(t, 1, status.TotalMessages)
}
