package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"clinic-assistant/middleware"
	"clinic-assistant/models"
	"clinic-assistant/services"
)

type wsInbound struct {
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
}

type wsTyping struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

type WebSocketController struct {
	chatbotService *services.ChatbotService
	upgrader       websocket.Upgrader
	replyDelay     time.Duration
}

func NewWebSocketController(chatbotService *services.ChatbotService, allowedOrigins []string, replyDelay time.Duration) *WebSocketController {
	return &WebSocketController{
		chatbotService: chatbotService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return middleware.OriginAllowed(allowedOrigins, r.Header.Get("Origin"))
			},
		},
		replyDelay: replyDelay,
	}
}

func (wc *WebSocketController) HandleWebSocket(c *gin.Context) {
	conn, err := wc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	sessionID := c.Query("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// The reader cancels ctx when the peer goes away, which also aborts a
	// pending paced reply.
	incoming := make(chan wsInbound)
	go func() {
		defer cancel()
		for {
			var msg wsInbound
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Println("WebSocket read error:", err)
				}
				return
			}
			select {
			case incoming <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-incoming:
			if err := wc.reply(ctx, conn, sessionID, msg); err != nil {
				log.Println("WebSocket write error:", err)
				return
			}
		}
	}
}

func (wc *WebSocketController) reply(ctx context.Context, conn *websocket.Conn, sessionID string, msg wsInbound) error {
	response, err := wc.chatbotService.ProcessMessage(ctx, models.ChatRequest{
		Message:   msg.Message,
		SessionID: sessionID,
		UserID:    msg.UserID,
		Channel:   models.ChannelWebSocket,
	})
	if err != nil {
		return conn.WriteJSON(gin.H{
			"error":   "Failed to process message",
			"details": err.Error(),
		})
	}

	if wc.replyDelay > 0 {
		if err := conn.WriteJSON(wsTyping{Type: "typing", SessionID: sessionID}); err != nil {
			return err
		}
		if err := sleepContext(ctx, wc.replyDelay); err != nil {
			return err
		}
	}

	return conn.WriteJSON(response)
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
