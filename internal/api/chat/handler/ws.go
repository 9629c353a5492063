package chatHandler

import (
	"ExpenseChat/internal/api/chat"
	"ExpenseChat/internal/middleware"
	contextPkg "ExpenseChat/pkg/context"
	"ExpenseChat/pkg/response"
	"time"

	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/net/context"
)

const maxReadTimeout = 5 * time.Minute

// handleChatWebSocket runs one conversation over a socket. Every text frame
// is an utterance and gets exactly one reply frame.
func (h *ChatHandler) handleChatWebSocket(c *websocket.Conn) {
	conversationID := c.Params("conversationId")
	userID, _ := c.Locals(contextPkg.UserIDKey).(string)
	requestID, _ := c.Locals(middleware.RequestIDKey).(string)

	logger := h.log.WithField("request_id", requestID).WithField("conversation_id", conversationID)
	logger.Info("Chat WebSocket client connected")
	defer logger.Info("Chat WebSocket client disconnected")

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			logger.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	base := contextPkg.WithRequestID(context.Background(), requestID)
	if userID != "" {
		base = contextPkg.WithUserID(base, userID)
	} else {
		userID = contextPkg.DefaultUserID
	}

	for {
		if err := c.SetReadDeadline(time.Now().Add(maxReadTimeout)); err != nil {
			logger.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Errorf("Chat WebSocket error: %v", err)
			}
			break
		}

		if messageType != websocket.TextMessage {
			logger.Warnf("Received unexpected message type: %d", messageType)
			continue
		}

		var req chat.SendMessageRequest
		if err := jsoniter.Unmarshal(message, &req); err != nil {
			if !h.writeFrame(c, map[string]string{"error": "invalid message: " + err.Error()}) {
				break
			}
			continue
		}
		if err := h.validator.Struct(req); err != nil {
			if !h.writeFrame(c, map[string]string{"error": "Validation failed: " + err.Error()}) {
				break
			}
			continue
		}

		ctx, cancel := context.WithTimeout(base, 10*time.Second)
		reply, err := h.chatService.SendUtterance(ctx, userID, conversationID, req.Text, h.clock(req.Now))
		cancel()

		if err != nil {
			logger.Errorf("Error handling utterance: %v", err)
			if !h.writeFrame(c, map[string]any{"error": err.Error(), "status": response.Status(err)}) {
				break
			}
			continue
		}

		if !h.writeFrame(c, h.toReplyResponse(reply)) {
			break
		}
	}
}

func (h *ChatHandler) writeFrame(c *websocket.Conn, v any) bool {
	if err := c.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
		h.log.Errorf("Error setting write deadline: %v", err)
		return false
	}
	if err := c.WriteJSON(v); err != nil {
		h.log.Errorf("Error writing JSON response: %v", err)
		return false
	}
	return true
}
