package service

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tieubaoca/pdf-insight-be/types"
	"go.uber.org/zap"
)

// WebSocketService streams chat replies over a completed job's document
// context.
type WebSocketService struct {
	ai       AIService
	jobs     *JobService
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewWebSocketService(ai AIService, jobs *JobService, logger *zap.Logger) *WebSocketService {
	return &WebSocketService{
		ai:   ai,
		jobs: jobs,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
		logger: logger,
	}
}

func (s *WebSocketService) HandleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(512 * 1024) // 512KB max message size
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var req types.WebsocketRequest
		if err := json.Unmarshal(p, &req); err != nil {
			s.writeError(conn, "invalid message")
			continue
		}

		switch req.Type {
		case types.TypeWebsocketChat:
			payloadBytes, err := json.Marshal(req.Payload)
			if err != nil {
				s.writeError(conn, "invalid payload")
				continue
			}
			var payload types.WebSocketChatPayload
			if err := json.Unmarshal(payloadBytes, &payload); err != nil {
				s.writeError(conn, "invalid payload")
				continue
			}
			s.streamChat(ctx, conn, payload)
		case types.TypeWebsocketPing:
			conn.WriteJSON(types.WebSocketResponse{
				Type: types.TypeWebsocketPong,
			})
		default:
			s.writeError(conn, "unknown message type")
		}
	}
}

func (s *WebSocketService) streamChat(ctx context.Context, conn *websocket.Conn, payload types.WebSocketChatPayload) {
	messages, err := s.jobs.ChatMessages(ctx, payload.JobID, payload.Messages)
	if err != nil {
		s.writeError(conn, err.Error())
		return
	}

	err = s.ai.ChatStream(ctx, messages, func(delta string) {
		conn.WriteJSON(types.WebSocketResponse{
			Type:    types.TypeWebsocketChat,
			Payload: types.WebSocketChatResponse{Delta: delta},
		})
	})
	if err != nil {
		s.writeError(conn, err.Error())
		return
	}
	conn.WriteJSON(types.WebSocketResponse{
		Type:    types.TypeWebsocketChat,
		Payload: types.WebSocketChatResponse{Done: true},
	})
}

func (s *WebSocketService) writeError(conn *websocket.Conn, message string) {
	conn.WriteJSON(types.WebSocketResponse{
		Type:    types.TypeWebsocketError,
		Payload: message,
	})
}
