package reload

import (
	"time"

	"github.com/coder/websocket"
)

// Message types understood by the reload script.
const (
	TypeFullReload = "full_reload"
	TypeStyles     = "styles"
)

// Message is the JSON payload sent to browsers.
type Message struct {
	Type      string    `json:"type"`
	Target    string    `json:"target,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// OriginValidator decides whether a websocket origin may connect.
type OriginValidator interface {
	IsAllowedOrigin(origin string) bool
}

// client is a single browser connection.
type client struct {
	conn *websocket.Conn
	send chan []byte
}
