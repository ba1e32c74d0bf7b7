package types

const (
	TypeWebsocketPing       = "ping"
	TypeWebsocketPong       = "pong"
	TypeWebsocketChat       = "chat"
	TypeWebsocketProcessing = "processing"
	TypeWebsocketError      = "error"
)

type WebsocketRequest struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebSocketChatPayload struct {
	JobID    string    `json:"job_id"`
	Messages []Message `json:"messages"`
}

type WebSocketResponse struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebSocketChatResponse struct {
	Delta string `json:"delta,omitempty"`
	Done  bool   `json:"done,omitempty"`
}

// Message represents a single message in the conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Handle stream responses
type StreamHandler func(response string)
